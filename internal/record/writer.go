package record

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/lslview/lslview/internal/metrics"
)

const (
	flushInterval    = 500 * time.Millisecond
	maxBufferedLines = 2048
)

// sampleLine is the on-disk shape of one sample: one JSON object per line.
type sampleLine struct {
	T float64 `json:"t"`
	D []any   `json:"d"`
}

// writeLoop consumes the session's queue and appends kept samples to the
// data file. Lines accumulate in memory and are flushed when the buffer
// reaches maxBufferedLines or flushInterval has elapsed since the last
// flush, whichever comes first. Cancellation performs exactly one final
// flush before done is signalled, so a graceful stop loses nothing the
// loop accepted. An I/O failure terminates the loop; the session stays
// nominally active until an explicit Stop.
func (m *Manager) writeLoop(ctx context.Context, s *Session) {
	defer close(s.done)

	f, err := os.OpenFile(s.dataPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		m.logger.Error("Failed to open recording data file", "id", s.id, "error", err)
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	bufferedLines := 0
	lastFlush := m.clock.Now()

	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		n, err := f.Write(buf.Bytes())
		if err != nil {
			return err
		}
		if err := f.Sync(); err != nil {
			return err
		}
		metrics.AddRecordedBytes(s.id, n)
		buf.Reset()
		bufferedLines = 0
		return nil
	}

	pulled := int64(0)
	for {
		sample, err := s.sub.Next(ctx)
		if err != nil {
			// Cancelled: one final flush of whatever is buffered.
			if flushErr := flush(); flushErr != nil {
				m.logger.Error("Final flush failed", "id", s.id, "error", flushErr)
			}
			return
		}

		pulled++
		if pulled%int64(s.downsample) != 0 {
			continue
		}

		line, err := json.Marshal(sampleLine{T: sample.Timestamp, D: sample.Data})
		if err != nil {
			m.logger.Warn("Dropping unserializable sample", "id", s.id, "error", err)
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
		bufferedLines++
		s.sampleCount.Add(1)
		metrics.AddRecordedSamples(s.id, 1)

		now := m.clock.Now()
		if bufferedLines >= maxBufferedLines || now.Sub(lastFlush) >= flushInterval {
			if err := flush(); err != nil {
				m.logger.Error("Recording write failed", "id", s.id, "error", err)
				return
			}
			lastFlush = now
		}
	}
}
