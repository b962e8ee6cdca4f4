package events

import "github.com/lslview/lslview/internal/record"

// Event type constants for kelindar/event.
const (
	TypeStreamsResolved uint32 = iota + 1
	TypeInletOpened
	TypeInletClosed
	TypeRecordingStarted
	TypeRecordingStopped
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// StreamsResolvedEvent is published after each discovery pass.
type StreamsResolvedEvent struct {
	Count     int    `json:"count" example:"3" doc:"Number of streams discovered"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Resolve timestamp"`
}

// Type returns the event type identifier for StreamsResolvedEvent.
func (e StreamsResolvedEvent) Type() uint32 { return TypeStreamsResolved }

// InletOpenedEvent is published when a shared inlet gains its first
// subscriber.
type InletOpenedEvent struct {
	UID       string `json:"uid" example:"sim-eeg-001" doc:"Stream uid"`
	Name      string `json:"name" example:"MockEEG" doc:"Stream name"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for InletOpenedEvent.
func (e InletOpenedEvent) Type() uint32 { return TypeInletOpened }

// InletClosedEvent is published when the last subscriber leaves a stream.
type InletClosedEvent struct {
	UID       string `json:"uid" example:"sim-eeg-001" doc:"Stream uid"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for InletClosedEvent.
func (e InletClosedEvent) Type() uint32 { return TypeInletClosed }

// RecordingStartedEvent is published when a recording session starts.
type RecordingStartedEvent struct {
	Recording record.SessionInfo `json:"recording" doc:"Started session"`
	Timestamp string             `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for RecordingStartedEvent.
func (e RecordingStartedEvent) Type() uint32 { return TypeRecordingStarted }

// RecordingStoppedEvent is published when a recording session stops.
type RecordingStoppedEvent struct {
	Recording record.SessionInfo `json:"recording" doc:"Stopped session"`
	Timestamp string             `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for RecordingStoppedEvent.
func (e RecordingStoppedEvent) Type() uint32 { return TypeRecordingStopped }
