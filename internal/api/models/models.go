// Package models defines the API request and response envelopes.
package models

import (
	"github.com/lslview/lslview/internal/record"
	"github.com/lslview/lslview/internal/streams"
	"github.com/lslview/lslview/internal/version"
)

// HealthData is the health check payload.
type HealthData struct {
	Status string  `json:"status" example:"ok" doc:"Health status"`
	Time   float64 `json:"time" doc:"Server time in epoch seconds"`
}

// HealthResponse wraps the health check payload.
type HealthResponse struct {
	Body HealthData
}

// VersionResponse wraps build information.
type VersionResponse struct {
	Body version.Info
}

// StreamListData is the payload of the stream listing.
type StreamListData struct {
	Streams []streams.Descriptor `json:"streams" doc:"Discovered streams"`
	Count   int                  `json:"count" example:"3" doc:"Number of streams"`
}

// StreamListResponse wraps the stream listing.
type StreamListResponse struct {
	Body StreamListData
}

// StreamResponse wraps a single stream descriptor.
type StreamResponse struct {
	Body streams.Descriptor
}

// RecordingResponse wraps a single recording session snapshot.
type RecordingResponse struct {
	Body record.SessionInfo
}

// RecordingListData is the payload of the recording listing.
type RecordingListData struct {
	Recordings []record.SessionInfo `json:"recordings" doc:"All recording sessions"`
	Count      int           `json:"count" doc:"Number of sessions"`
}

// RecordingListResponse wraps the recording listing.
type RecordingListResponse struct {
	Body RecordingListData
}
