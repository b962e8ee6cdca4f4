// Package lsl defines the contract between the backend and the Lab
// Streaming Layer discovery/transport implementation.
//
// The discovery protocol and its wire format are deliberately opaque: a
// Provider returns discovered Sources, a Source opens an Inlet, and an
// Inlet delivers timestamped samples. The sim subpackage implements this
// contract with generated signals so the backend runs without liblsl.
package lsl

import (
	"context"
	"time"
)

// Channel format names as reported by stream metadata.
const (
	FormatFloat32  = "float32"
	FormatDouble64 = "float64"
	FormatString   = "string"
	FormatInt8     = "int8"
	FormatInt16    = "int16"
	FormatInt32    = "int32"
	FormatInt64    = "int64"
)

// StreamInfo is the immutable metadata of a discovered stream.
type StreamInfo struct {
	UID           string
	Name          string
	Type          string
	ChannelCount  int
	NominalSrate  float64
	ChannelFormat string
	SourceID      string
	Hostname      string
	CreatedAt     float64
	// XMLDesc is the raw descriptor document as delivered by discovery.
	XMLDesc      string
	ChannelNames []string
}

// Sample is one timestamped multi-channel observation. Data holds one value
// per channel, numeric for signal streams or string for marker streams.
// Samples are immutable once produced.
type Sample struct {
	Timestamp float64
	Data      []any
}

// Provider discovers streams on the local network.
type Provider interface {
	// Resolve blocks for up to timeout and returns all currently
	// discoverable streams.
	Resolve(ctx context.Context, timeout time.Duration) ([]Source, error)
}

// Source is one discovered stream: its metadata plus the ability to open
// an inlet for it. A Source stays valid only as long as the upstream
// outlet exists; liveness is not checked before reuse.
type Source interface {
	Info() StreamInfo

	// Open connects an inlet to the stream. The call may block for
	// hardware or network reasons; it honors ctx cancellation and
	// deadline. On error no inlet resources are retained.
	Open(ctx context.Context) (Inlet, error)
}

// Inlet is an open connection pulling samples from one stream.
// An Inlet has exactly one owner and exactly one puller.
type Inlet interface {
	// Pull returns up to max buffered samples, waiting at most timeout
	// for data. An empty slice with nil error means no data arrived
	// within the timeout.
	Pull(timeout time.Duration, max int) ([]Sample, error)

	// Close disconnects the inlet. Pull must not be called after Close.
	Close() error
}
