package separator

import (
	"context"
	"sync/atomic"

	"github.com/cesargomez89/strume/internal/audio"
)

// Mock splits a mix into equal scaled copies of itself.
type Mock struct {
	Err   error
	Rate  int
	Chans int
	// Stems is how many stems to return; zero means four.
	Stems int
	Panic bool
	calls atomic.Int32
}

func (m *Mock) Name() string { return "mock" }

// Calls reports how many times Separate ran.
func (m *Mock) Calls() int { return int(m.calls.Load()) }

func (m *Mock) SampleRate() int {
	if m.Rate == 0 {
		return 44100
	}
	return m.Rate
}

func (m *Mock) Channels() int {
	if m.Chans == 0 {
		return 2
	}
	return m.Chans
}

func (m *Mock) Separate(ctx context.Context, mix *audio.Waveform) ([]*audio.Waveform, error) {
	m.calls.Add(1)
	if m.Panic {
		panic("mock model exploded")
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := m.Stems
	if n == 0 {
		n = len(StemNames)
	}

	stems := make([]*audio.Waveform, n)
	for i := range stems {
		s := &audio.Waveform{
			SampleRate: mix.SampleRate,
			Channels:   mix.Channels,
			Samples:    make([]float32, len(mix.Samples)),
		}
		for j, v := range mix.Samples {
			s.Samples[j] = v / float32(n)
		}
		stems[i] = s
	}
	return stems, nil
}
