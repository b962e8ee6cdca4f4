package record

import (
	"encoding/json"
	"os"

	"github.com/lslview/lslview/internal/streams"
	"github.com/lslview/lslview/internal/version"
)

// metadataDoc is the metadata.json document written next to the sample
// log: recording parameters, the full stream descriptor, and a backend
// version stamp.
type metadataDoc struct {
	Recording recordingMeta      `json:"recording"`
	Stream    streams.Descriptor `json:"stream"`
	Backend   backendMeta        `json:"backend"`
}

type recordingMeta struct {
	ID           string      `json:"id"`
	Label        string      `json:"label"`
	StartedAt    float64     `json:"startedAt"`
	StartedAtISO string      `json:"startedAtIso"`
	Downsample   int         `json:"downsample"`
	StoppedAt    *float64    `json:"stoppedAt,omitempty"`
	StoppedAtISO string      `json:"stoppedAtIso,omitempty"`
	Duration     *float64    `json:"durationSeconds,omitempty"`
	SampleCount  *int64      `json:"sampleCount,omitempty"`
	Format       *formatMeta `json:"format,omitempty"`
}

type formatMeta struct {
	Data   string            `json:"data"`
	Schema map[string]string `json:"schema"`
}

type backendMeta struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func newMetadataDoc(s *Session) metadataDoc {
	v := version.Get()
	return metadataDoc{
		Recording: recordingMeta{
			ID:           s.id,
			Label:        s.label,
			StartedAt:    epochSeconds(s.startedAt),
			StartedAtISO: isoUTC(s.startedAt),
			Downsample:   s.downsample,
		},
		Stream: s.descriptor,
		Backend: backendMeta{
			Version:   v.Version,
			GitCommit: v.GitCommit,
			GoVersion: v.GoVersion,
			Platform:  v.Platform,
		},
	}
}

// finalize fills in the stop-time fields written by Stop.
func (d *metadataDoc) finalize(s *Session) {
	stopped := epochSeconds(s.stoppedAt)
	duration := stopped - d.Recording.StartedAt
	if duration < 0 {
		duration = 0
	}
	count := s.sampleCount.Load()
	d.Recording.StoppedAt = &stopped
	d.Recording.StoppedAtISO = isoUTC(s.stoppedAt)
	d.Recording.Duration = &duration
	d.Recording.SampleCount = &count
	d.Recording.Format = &formatMeta{
		Data:   "ndjson",
		Schema: map[string]string{"t": "lsl_timestamp", "d": "channel_data"},
	}
}

func (d *metadataDoc) write(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
