// Package audio holds in-memory PCM and the codecs around it.
package audio

import (
	"errors"
	"fmt"
	"math"

	"github.com/cesargomez89/strume/internal/constants"
)

// Waveform is interleaved float PCM, nominally in [-1, 1].
type Waveform struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of samples per channel.
func (w *Waveform) Frames() int {
	if w.Channels == 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Duration in seconds.
func (w *Waveform) Duration() float64 {
	if w.SampleRate == 0 {
		return 0
	}
	return float64(w.Frames()) / float64(w.SampleRate)
}

// Sum mixes waveforms sample by sample. All inputs must share rate and
// channel count; the result is as long as the shortest input.
func Sum(parts ...*Waveform) (*Waveform, error) {
	if len(parts) == 0 {
		return nil, errors.New("sum: no waveforms")
	}

	first := parts[0]
	n := len(first.Samples)
	for i, p := range parts[1:] {
		if p.SampleRate != first.SampleRate || p.Channels != first.Channels {
			return nil, fmt.Errorf("sum: waveform %d is %dHz/%dch, want %dHz/%dch",
				i+1, p.SampleRate, p.Channels, first.SampleRate, first.Channels)
		}
		if len(p.Samples) < n {
			n = len(p.Samples)
		}
	}

	out := &Waveform{
		Samples:    make([]float32, n),
		SampleRate: first.SampleRate,
		Channels:   first.Channels,
	}
	for _, p := range parts {
		for i := 0; i < n; i++ {
			out.Samples[i] += p.Samples[i]
		}
	}
	return out, nil
}

// Peak returns the largest absolute sample value.
func (w *Waveform) Peak() float64 {
	var peak float64
	for _, s := range w.Samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

// PeakNormalize scales in place by 1/(peak+eps) so the peak ends up just
// under 1. Silence stays silent.
func (w *Waveform) PeakNormalize() {
	scale := 1 / (w.Peak() + constants.NormalizeEpsilon)
	for i, s := range w.Samples {
		w.Samples[i] = float32(float64(s) * scale)
	}
}
