package record

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lslview/lslview/internal/relay"
	"github.com/lslview/lslview/internal/streams"
)

// Session is one recording of one stream. The write loop mutates the
// sample count, Stop sets the stop time; everything else is fixed at
// start. After Stop the session is read-only.
type Session struct {
	id         string
	streamUID  string
	streamName string
	label      string
	descriptor streams.Descriptor
	downsample int

	dir      string
	metaPath string
	dataPath string
	zipPath  string

	startedAt   time.Time
	sampleCount atomic.Int64

	sub    *relay.Subscription
	cancel context.CancelFunc
	done   chan struct{}

	// stoppedAt is written only under the manager mutex; zero means the
	// session is still active.
	stoppedAt time.Time
}

// SessionInfo is an immutable snapshot of a session, shaped like the
// recording objects served by the API.
type SessionInfo struct {
	ID           string   `json:"id" example:"a1b2c3d4e5f6" doc:"Recording session identifier"`
	StreamUID    string   `json:"streamUid" doc:"Recorded stream uid"`
	StreamName   string   `json:"streamName" example:"MockEEG" doc:"Recorded stream name"`
	StartedAt    float64  `json:"startedAt" doc:"Start time in epoch seconds"`
	StartedAtISO string   `json:"startedAtIso" doc:"Start time in RFC 3339 UTC"`
	StoppedAt    *float64 `json:"stoppedAt,omitempty" doc:"Stop time in epoch seconds"`
	StoppedAtISO string   `json:"stoppedAtIso,omitempty" doc:"Stop time in RFC 3339 UTC"`
	SampleCount  int64    `json:"sampleCount" doc:"Samples written so far"`
	Downsample   int      `json:"downsample" example:"1" doc:"Keep-every-Nth decimation factor"`
	Dir          string   `json:"dir" doc:"Session directory"`
	Metadata     string   `json:"metadata" doc:"Metadata file path"`
	Data         string   `json:"data" doc:"Sample log path"`
	Archive      string   `json:"archive" doc:"Archive path"`
	Active       bool     `json:"active" doc:"True while the session is recording"`
}

// Info returns a snapshot of the session state. Safe to call while the
// write loop is running.
func (s *Session) Info() SessionInfo {
	info := SessionInfo{
		ID:           s.id,
		StreamUID:    s.streamUID,
		StreamName:   s.streamName,
		StartedAt:    epochSeconds(s.startedAt),
		StartedAtISO: isoUTC(s.startedAt),
		SampleCount:  s.sampleCount.Load(),
		Downsample:   s.downsample,
		Dir:          s.dir,
		Metadata:     s.metaPath,
		Data:         s.dataPath,
		Archive:      s.zipPath,
		Active:       s.stoppedAt.IsZero(),
	}
	if !s.stoppedAt.IsZero() {
		stopped := epochSeconds(s.stoppedAt)
		info.StoppedAt = &stopped
		info.StoppedAtISO = isoUTC(s.stoppedAt)
	}
	return info
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func isoUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999Z07:00")
}
