// Package separator wraps the source-separation model.
package separator

import (
	"context"

	"github.com/cesargomez89/strume/internal/audio"
)

// StemNames is the order in which models return stems.
var StemNames = []string{"drums", "bass", "other", "vocals"}

// Model splits a mix into stems ordered as StemNames. Implementations are
// created once at startup and shared by every job.
type Model interface {
	Name() string
	SampleRate() int
	Channels() int
	Separate(ctx context.Context, mix *audio.Waveform) ([]*audio.Waveform, error)
}
