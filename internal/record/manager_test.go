package record

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/lslview/lslview/internal/lsl"
	"github.com/lslview/lslview/internal/relay"
	"github.com/lslview/lslview/internal/streams"
)

type recInlet struct {
	samples chan lsl.Sample

	mu     sync.Mutex
	closed bool
}

func (f *recInlet) Pull(timeout time.Duration, max int) ([]lsl.Sample, error) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return nil, errors.New("inlet closed")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var out []lsl.Sample
	select {
	case s := <-f.samples:
		out = append(out, s)
	case <-timer.C:
		return nil, nil
	}
	for len(out) < max {
		select {
		case s := <-f.samples:
			out = append(out, s)
		default:
			return out, nil
		}
	}
	return out, nil
}

func (f *recInlet) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type recSource struct {
	info  lsl.StreamInfo
	inlet *recInlet
}

func (f *recSource) Info() lsl.StreamInfo { return f.info }

func (f *recSource) Open(ctx context.Context) (lsl.Inlet, error) {
	return f.inlet, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSetup(t *testing.T) (*Manager, *recSource) {
	t.Helper()
	src := &recSource{
		info: lsl.StreamInfo{
			UID:           "rec-stream-001",
			Name:          "Mock EEG",
			Type:          "EEG",
			ChannelCount:  2,
			NominalSrate:  256,
			ChannelFormat: lsl.FormatFloat32,
		},
		inlet: &recInlet{samples: make(chan lsl.Sample, 256)},
	}
	relayMgr := relay.NewManager(testLogger())
	return NewManager(relayMgr, t.TempDir(), testLogger()), src
}

func feed(src *recSource, n int) {
	for i := 0; i < n; i++ {
		src.inlet.samples <- lsl.Sample{
			Timestamp: float64(i) / 256,
			Data:      []any{float64(i), float64(-i)},
		}
	}
}

func waitForCount(t *testing.T, m *Manager, id string, want int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		info, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if info.SampleCount >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d samples", want)
}

func TestRecordingLifecycle(t *testing.T) {
	m, src := newTestSetup(t)
	desc := streams.NewDescriptor(src.info)

	info, err := m.Start(context.Background(), src, desc, "Test Session", 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !info.Active {
		t.Error("new session should be active")
	}
	if len(info.ID) != 12 {
		t.Errorf("session id %q, want 12 hex chars", info.ID)
	}
	if !strings.Contains(info.Dir, "Test-Session") {
		t.Errorf("session dir %q should contain the label slug", info.Dir)
	}

	feed(src, 10)
	waitForCount(t, m, info.ID, 10)

	final, err := m.Stop(info.ID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if final.Active {
		t.Error("stopped session reported active")
	}
	if final.SampleCount != 10 {
		t.Errorf("SampleCount = %d, want 10", final.SampleCount)
	}
	if final.StoppedAt == nil {
		t.Error("StoppedAt not set after Stop")
	}

	// Every accepted sample must be on disk as one JSON line.
	data, err := os.ReadFile(final.Data)
	if err != nil {
		t.Fatalf("read sample log: %v", err)
	}
	lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	if len(lines) != 10 {
		t.Fatalf("sample log has %d lines, want 10", len(lines))
	}
	for i, line := range lines {
		var row struct {
			T float64 `json:"t"`
			D []any   `json:"d"`
		}
		if err := json.Unmarshal(line, &row); err != nil {
			t.Fatalf("line %d not valid JSON: %v", i, err)
		}
		if len(row.D) != 2 {
			t.Errorf("line %d has %d channels, want 2", i, len(row.D))
		}
	}

	// Metadata must be finalized.
	metaRaw, err := os.ReadFile(final.Metadata)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var meta metadataDoc
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		t.Fatalf("parse metadata: %v", err)
	}
	if meta.Recording.StoppedAt == nil {
		t.Error("metadata missing stoppedAt")
	}
	if meta.Recording.SampleCount == nil || *meta.Recording.SampleCount != 10 {
		t.Error("metadata sampleCount missing or wrong")
	}
	if meta.Recording.Format == nil || meta.Recording.Format.Data != "ndjson" {
		t.Error("metadata missing ndjson format stamp")
	}
	if meta.Stream.UID != "rec-stream-001" {
		t.Errorf("metadata stream uid = %q", meta.Stream.UID)
	}

	// Archive holds exactly the metadata document and the sample log.
	zr, err := zip.OpenReader(final.Archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != "metadata.json" || names[1] != "samples.ndjson" {
		t.Errorf("archive members = %v, want [metadata.json samples.ndjson]", names)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m, src := newTestSetup(t)
	desc := streams.NewDescriptor(src.info)

	info, err := m.Start(context.Background(), src, desc, "", 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	first, err := m.Stop(info.ID)
	if err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	second, err := m.Stop(info.ID)
	if err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if first.StoppedAt == nil || second.StoppedAt == nil {
		t.Fatal("StoppedAt not set")
	}
	if *first.StoppedAt != *second.StoppedAt {
		t.Error("second Stop changed the stop time")
	}
}

func TestStopUnknownSession(t *testing.T) {
	m, _ := newTestSetup(t)
	if _, err := m.Stop("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stop unknown id: err = %v, want ErrNotFound", err)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestDownsampleKeepsEveryNth(t *testing.T) {
	m, src := newTestSetup(t)
	desc := streams.NewDescriptor(src.info)

	info, err := m.Start(context.Background(), src, desc, "", 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	feed(src, 9)
	waitForCount(t, m, info.ID, 3)

	final, err := m.Stop(info.ID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if final.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3 of 9 kept", final.SampleCount)
	}
	if final.Downsample != 3 {
		t.Errorf("Downsample = %d, want 3", final.Downsample)
	}
}

func TestIntervalFlush(t *testing.T) {
	m, src := newTestSetup(t)
	desc := streams.NewDescriptor(src.info)
	mock := clock.NewMock()
	m.SetClock(mock)

	info, err := m.Start(context.Background(), src, desc, "", 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop(info.ID)

	feed(src, 1)
	waitForCount(t, m, info.ID, 1)
	time.Sleep(50 * time.Millisecond)

	// Mock time has not advanced, so the line is still buffered.
	if data, err := os.ReadFile(info.Data); err == nil && len(data) != 0 {
		t.Fatalf("sample log has %d bytes before the flush interval", len(data))
	}

	mock.Add(flushInterval + 100*time.Millisecond)
	feed(src, 1)
	waitForCount(t, m, info.ID, 2)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(info.Data)
		if err == nil && bytes.Count(data, []byte("\n")) == 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("interval flush did not write the buffered lines")
}

func TestListAndStopAll(t *testing.T) {
	m, src := newTestSetup(t)
	desc := streams.NewDescriptor(src.info)

	a, err := m.Start(context.Background(), src, desc, "a", 1)
	if err != nil {
		t.Fatalf("Start a: %v", err)
	}
	b, err := m.Start(context.Background(), src, desc, "b", 1)
	if err != nil {
		t.Fatalf("Start b: %v", err)
	}

	if got := len(m.List()); got != 2 {
		t.Fatalf("List = %d sessions, want 2", got)
	}

	m.StopAll()
	for _, id := range []string{a.ID, b.ID} {
		info, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
		if info.Active {
			t.Errorf("session %s still active after StopAll", id)
		}
	}
}
