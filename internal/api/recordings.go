package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lslview/lslview/internal/api/models"
	"github.com/lslview/lslview/internal/events"
	"github.com/lslview/lslview/internal/record"
)

// registerRecordingRoutes registers recording session control endpoints.
func (s *Server) registerRecordingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-recordings",
		Method:      http.MethodGet,
		Path:        "/api/recordings",
		Summary:     "List Recordings",
		Description: "List all recording sessions, active and stopped",
		Tags:        []string{"recordings"},
	}, func(ctx context.Context, input *struct{}) (*models.RecordingListResponse, error) {
		infos := s.recorder.List()
		return &models.RecordingListResponse{
			Body: models.RecordingListData{
				Recordings: infos,
				Count:      len(infos),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-recording",
		Method:      http.MethodPost,
		Path:        "/api/recordings/start/{uid}",
		Summary:     "Start Recording",
		Description: "Start recording a resolved stream to disk",
		Tags:        []string{"recordings"},
		Errors:      []int{404, 500},
	}, func(ctx context.Context, input *struct {
		UID        string `path:"uid" example:"sim-eeg-001" doc:"Stream unique identifier"`
		Label      string `query:"label" doc:"Optional label used in the session directory name"`
		Downsample int    `query:"downsample" default:"1" minimum:"1" doc:"Keep every Nth sample"`
	}) (*models.RecordingResponse, error) {
		desc, ok := s.resolver.Descriptor(input.UID)
		if !ok {
			return nil, huma.Error404NotFound("Stream not found. Resolve streams first.")
		}
		src, ok := s.resolver.Source(input.UID)
		if !ok {
			return nil, huma.Error404NotFound("Stream not found. Resolve streams first.")
		}

		info, err := s.recorder.Start(ctx, src, desc, input.Label, input.Downsample)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to start recording", err)
		}

		s.eventBus.Publish(events.RecordingStartedEvent{
			Recording: info,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return &models.RecordingResponse{Body: info}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-recording",
		Method:      http.MethodPost,
		Path:        "/api/recordings/stop/{id}",
		Summary:     "Stop Recording",
		Description: "Stop a recording session; stopping an already stopped session is a no-op",
		Tags:        []string{"recordings"},
		Errors:      []int{404, 500},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id" example:"a1b2c3d4e5f6" doc:"Recording session identifier"`
	}) (*models.RecordingResponse, error) {
		info, err := s.recorder.Stop(input.ID)
		if err != nil {
			if errors.Is(err, record.ErrNotFound) {
				return nil, huma.Error404NotFound("Recording not found")
			}
			return nil, huma.Error500InternalServerError("Failed to stop recording", err)
		}

		s.eventBus.Publish(events.RecordingStoppedEvent{
			Recording: info,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return &models.RecordingResponse{Body: info}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-recording",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}",
		Summary:     "Get Recording",
		Description: "Get the state of a recording session",
		Tags:        []string{"recordings"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id" example:"a1b2c3d4e5f6" doc:"Recording session identifier"`
	}) (*models.RecordingResponse, error) {
		info, err := s.recorder.Get(input.ID)
		if err != nil {
			return nil, huma.Error404NotFound("Recording not found")
		}
		return &models.RecordingResponse{Body: info}, nil
	})
}

// handleArchiveDownload serves a session's zip archive.
func (s *Server) handleArchiveDownload(w http.ResponseWriter, r *http.Request) {
	info, err := s.recorder.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Recording not found", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(info.Archive); err != nil {
		http.Error(w, "Archive not available", http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("lslview_%s_%s.zip", record.Slug(info.StreamName), info.ID)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, info.Archive)
}
