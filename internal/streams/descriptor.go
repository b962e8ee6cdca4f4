package streams

import "github.com/lslview/lslview/internal/lsl"

// Descriptor is an immutable snapshot of a discovered stream's metadata,
// shaped for API responses and recording metadata documents.
type Descriptor struct {
	UID           string   `json:"uid" example:"sim-eeg-001" doc:"Stream unique identifier"`
	Name          string   `json:"name" example:"MockEEG" doc:"Stream name"`
	Type          string   `json:"type" example:"EEG" doc:"Stream content type"`
	ChannelCount  int      `json:"channelCount" example:"4" doc:"Number of channels"`
	NominalSrate  float64  `json:"nominalSrate" example:"256" doc:"Nominal sample rate in Hz (0 = irregular)"`
	ChannelFormat string   `json:"channelFormat" example:"float32" doc:"Per-channel value format"`
	SourceID      string   `json:"sourceId" example:"mock-eeg-001" doc:"Source device identifier"`
	Hostname      string   `json:"hostname" example:"localhost" doc:"Host publishing the stream"`
	CreatedAt     float64  `json:"createdAt" doc:"Stream creation time in seconds"`
	XMLDesc       string   `json:"xmlDesc" doc:"Raw descriptor document"`
	ChannelNames  []string `json:"channelNames" doc:"Ordered channel labels"`
}

// NewDescriptor builds a Descriptor from upstream stream metadata.
func NewDescriptor(info lsl.StreamInfo) Descriptor {
	names := make([]string, len(info.ChannelNames))
	copy(names, info.ChannelNames)
	return Descriptor{
		UID:           info.UID,
		Name:          info.Name,
		Type:          info.Type,
		ChannelCount:  info.ChannelCount,
		NominalSrate:  info.NominalSrate,
		ChannelFormat: info.ChannelFormat,
		SourceID:      info.SourceID,
		Hostname:      info.Hostname,
		CreatedAt:     info.CreatedAt,
		XMLDesc:       info.XMLDesc,
		ChannelNames:  names,
	}
}
