package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lslview/lslview/internal/api/models"
	"github.com/lslview/lslview/internal/events"
)

// registerStreamRoutes registers the discovery endpoints.
func (s *Server) registerStreamRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-streams",
		Method:      http.MethodGet,
		Path:        "/api/streams",
		Summary:     "Resolve Streams",
		Description: "Resolve and list all streams currently discoverable on the network",
		Tags:        []string{"streams"},
		Errors:      []int{500},
	}, func(ctx context.Context, input *struct {
		Timeout float64 `query:"timeout" default:"2" minimum:"0.1" maximum:"30" doc:"Discovery timeout in seconds"`
	}) (*models.StreamListResponse, error) {
		timeout := time.Duration(input.Timeout * float64(time.Second))
		if timeout <= 0 {
			timeout = DefaultResolveTimeout
		}

		descriptors, err := s.resolver.Resolve(ctx, timeout)
		if err != nil {
			return nil, huma.Error500InternalServerError("Stream resolution failed", err)
		}

		s.eventBus.Publish(events.StreamsResolvedEvent{
			Count:     len(descriptors),
			Timestamp: time.Now().Format(time.RFC3339),
		})

		return &models.StreamListResponse{
			Body: models.StreamListData{
				Streams: descriptors,
				Count:   len(descriptors),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-stream",
		Method:      http.MethodGet,
		Path:        "/api/streams/{uid}",
		Summary:     "Get Stream",
		Description: "Get metadata for a specific stream by uid",
		Tags:        []string{"streams"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *struct {
		UID string `path:"uid" example:"sim-eeg-001" doc:"Stream unique identifier"`
	}) (*models.StreamResponse, error) {
		desc, ok := s.resolver.Descriptor(input.UID)
		if !ok {
			return nil, huma.Error404NotFound("Stream not found")
		}
		return &models.StreamResponse{Body: desc}, nil
	})
}
