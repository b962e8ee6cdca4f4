// Package sim implements the lsl contract with generated signals, mirroring
// the mock streams used for development and testing: a 4-channel EEG stream
// at 256 Hz (sine waves plus noise), an irregular event-marker stream, and a
// 3-axis accelerometer stream at 50 Hz.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/lslview/lslview/internal/lsl"
)

// ErrClosed is returned by Pull after the inlet has been closed.
var ErrClosed = errors.New("sim: inlet closed")

// generator produces the channel values for sample index idx at stream
// time t (seconds since the inlet opened).
type generator func(idx int64, t float64) []any

// Provider exposes a fixed set of simulated sources.
type Provider struct {
	sources []lsl.Source
}

// New returns a provider with the default mock stream set.
func New() *Provider {
	created := float64(time.Now().UnixNano()) / float64(time.Second)
	return &Provider{sources: []lsl.Source{
		newEEGSource(created),
		newMarkerSource(created),
		newAccelSource(created),
	}}
}

// Resolve waits out the discovery window and returns every simulated source.
func (p *Provider) Resolve(ctx context.Context, timeout time.Duration) ([]lsl.Source, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
	}
	out := make([]lsl.Source, len(p.sources))
	copy(out, p.sources)
	return out, nil
}

// Source is a simulated stream outlet.
type Source struct {
	info lsl.StreamInfo
	gen  generator
	// markerEvery returns the gap until the next marker for irregular
	// streams; nil for regular-rate streams.
	markerEvery func() time.Duration
}

// Info returns the stream metadata.
func (s *Source) Info() lsl.StreamInfo { return s.info }

// Open connects an inlet. The simulated open is immediate but still honors
// a cancelled context so manager open-timeout paths stay testable.
func (s *Source) Open(ctx context.Context) (lsl.Inlet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in := &Inlet{src: s, start: time.Now()}
	if s.markerEvery != nil {
		in.nextMarker = in.start.Add(s.markerEvery())
	}
	return in, nil
}

// Inlet generates samples on demand at the source's nominal rate.
type Inlet struct {
	src   *Source
	start time.Time

	mu         sync.Mutex
	idx        int64
	nextMarker time.Time
	closed     bool
}

// Pull returns up to max samples, waiting at most timeout for the next one
// to become due.
func (in *Inlet) Pull(timeout time.Duration, max int) ([]lsl.Sample, error) {
	deadline := time.Now().Add(timeout)
	for {
		in.mu.Lock()
		if in.closed {
			in.mu.Unlock()
			return nil, ErrClosed
		}
		samples := in.due(max)
		in.mu.Unlock()
		if len(samples) > 0 {
			return samples, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		wait := time.Millisecond
		if remaining < wait {
			wait = remaining
		}
		time.Sleep(wait)
	}
}

// due produces every sample whose nominal time has passed, up to max.
// Caller holds in.mu.
func (in *Inlet) due(max int) []lsl.Sample {
	var out []lsl.Sample
	now := time.Now()
	base := float64(in.start.UnixNano()) / float64(time.Second)

	if in.src.markerEvery != nil {
		for len(out) < max && !in.nextMarker.After(now) {
			t := in.nextMarker.Sub(in.start).Seconds()
			out = append(out, lsl.Sample{
				Timestamp: base + t,
				Data:      in.src.gen(in.idx, t),
			})
			in.idx++
			in.nextMarker = in.nextMarker.Add(in.src.markerEvery())
		}
		return out
	}

	rate := in.src.info.NominalSrate
	elapsed := now.Sub(in.start).Seconds()
	produced := int64(elapsed * rate)
	for len(out) < max && in.idx < produced {
		t := float64(in.idx) / rate
		out = append(out, lsl.Sample{
			Timestamp: base + t,
			Data:      in.src.gen(in.idx, t),
		})
		in.idx++
	}
	return out
}

// Close marks the inlet closed. Subsequent Pull calls fail with ErrClosed.
func (in *Inlet) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	return nil
}

func newEEGSource(created float64) *Source {
	channels := []string{"Fp1", "Fp2", "O1", "O2"}
	return &Source{
		info: lsl.StreamInfo{
			UID:           "sim-eeg-001",
			Name:          "MockEEG",
			Type:          "EEG",
			ChannelCount:  len(channels),
			NominalSrate:  256,
			ChannelFormat: lsl.FormatFloat32,
			SourceID:      "mock-eeg-001",
			Hostname:      "localhost",
			CreatedAt:     created,
			XMLDesc:       describe("MockEEG", "EEG", channels, "microvolts"),
			ChannelNames:  channels,
		},
		gen: func(_ int64, t float64) []any {
			return []any{
				50*math.Sin(2*math.Pi*10*t) + rand.NormFloat64()*5,
				30*math.Sin(2*math.Pi*12*t) + rand.NormFloat64()*4,
				40*math.Sin(2*math.Pi*8*t) + rand.NormFloat64()*6,
				25*math.Sin(2*math.Pi*20*t) + rand.NormFloat64()*3,
			}
		},
	}
}

func newMarkerSource(created float64) *Source {
	markers := []string{
		"trial_start", "stimulus_on", "response",
		"stimulus_off", "trial_end", "rest_begin", "rest_end",
	}
	return &Source{
		info: lsl.StreamInfo{
			UID:           "sim-markers-001",
			Name:          "MockMarkers",
			Type:          "Markers",
			ChannelCount:  1,
			NominalSrate:  0,
			ChannelFormat: lsl.FormatString,
			SourceID:      "mock-markers-001",
			Hostname:      "localhost",
			CreatedAt:     created,
			XMLDesc:       describe("MockMarkers", "Markers", []string{"marker"}, ""),
			ChannelNames:  []string{"marker"},
		},
		gen: func(idx int64, _ float64) []any {
			return []any{markers[idx%int64(len(markers))]}
		},
		markerEvery: func() time.Duration {
			return 2*time.Second + time.Duration(rand.Int63n(int64(3*time.Second)))
		},
	}
}

func newAccelSource(created float64) *Source {
	channels := []string{"X", "Y", "Z"}
	return &Source{
		info: lsl.StreamInfo{
			UID:           "sim-accel-001",
			Name:          "MockAccel",
			Type:          "Accelerometer",
			ChannelCount:  len(channels),
			NominalSrate:  50,
			ChannelFormat: lsl.FormatFloat32,
			SourceID:      "mock-accel-001",
			Hostname:      "localhost",
			CreatedAt:     created,
			XMLDesc:       describe("MockAccel", "Accelerometer", channels, "g"),
			ChannelNames:  channels,
		},
		gen: func(_ int64, t float64) []any {
			return []any{
				0.02 * math.Sin(2*math.Pi*1.2*t),
				0.02 * math.Cos(2*math.Pi*0.8*t),
				1.0 + rand.NormFloat64()*0.005,
			}
		},
	}
}

// describe renders a minimal descriptor document in the shape discovery
// would deliver.
func describe(name, typ string, channels []string, unit string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<info><name>%s</name><type>%s</type><channels>", name, typ)
	for _, ch := range channels {
		fmt.Fprintf(&b, "<channel><label>%s</label>", ch)
		if unit != "" {
			fmt.Fprintf(&b, "<unit>%s</unit>", unit)
		}
		b.WriteString("</channel>")
	}
	b.WriteString("</channels></info>")
	return b.String()
}
