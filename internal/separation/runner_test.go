package separation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cesargomez89/strume/internal/audio"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/separator"
)

type recordingSink struct {
	values map[string][]domain.Progress
	mu     sync.Mutex
}

func newRecordingSink() *recordingSink {
	return &recordingSink{values: make(map[string][]domain.Progress)}
}

func (s *recordingSink) Set(id string, value domain.Progress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = append(s.values[id], value)
	return true
}

func (s *recordingSink) get(id string) []domain.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Progress(nil), s.values[id]...)
}

// fakeDecoder returns a fixed-length sine at whatever layout is asked for.
type fakeDecoder struct {
	err     error
	seconds float64
}

func (d *fakeDecoder) Decode(_ context.Context, _ string, rate, channels int) (*audio.Waveform, error) {
	if d.err != nil {
		return nil, d.err
	}
	frames := int(float64(rate) * d.seconds)
	w := &audio.Waveform{SampleRate: rate, Channels: channels, Samples: make([]float32, frames*channels)}
	for i := 0; i < frames; i++ {
		v := float32(0.9 * math.Sin(2*math.Pi*220*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			w.Samples[i*channels+c] = v
		}
	}
	return w, nil
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake mp3 bytes"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func equalProgress(a, b []domain.Progress) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.mp3")
	sink := newRecordingSink()
	model := &separator.Mock{Rate: 44100, Chans: 2}
	r := NewRunner(model, &fakeDecoder{seconds: 10}, sink, logger.Discard())

	out, err := r.Run(context.Background(), "task-1", input, dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if filepath.Base(out) != "song_instrumental.wav" {
		t.Errorf("Expected song_instrumental.wav, got %s", filepath.Base(out))
	}

	want := []domain.Progress{10, 30, 70, 95}
	if got := sink.get("task-1"); !equalProgress(got, want) {
		t.Errorf("Expected checkpoints %v, got %v", want, got)
	}

	mix, err := audio.ReadWAV(out)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if mix.SampleRate != 44100 || mix.Channels != 2 {
		t.Errorf("Expected 44100Hz stereo, got %dHz/%dch", mix.SampleRate, mix.Channels)
	}
	if math.Abs(mix.Duration()-10) > 0.01 {
		t.Errorf("Expected ~10s, got %f", mix.Duration())
	}
	if peak := mix.Peak(); peak > 1 || peak < 0.99 {
		t.Errorf("Expected normalized peak just under 1, got %f", peak)
	}
}

func TestRunTooFewStems(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.mp3")
	sink := newRecordingSink()
	r := NewRunner(&separator.Mock{Stems: 3}, &fakeDecoder{seconds: 1}, sink, logger.Discard())

	out, err := r.Run(context.Background(), "task-2", input, dir)
	if !errors.Is(err, domain.ErrModelOutput) {
		t.Fatalf("Expected ErrModelOutput, got %v", err)
	}

	var sepErr *domain.SeparationError
	if !errors.As(err, &sepErr) || sepErr.TaskID != "task-2" {
		t.Errorf("Expected SeparationError for task-2, got %v", err)
	}

	if out != "" {
		t.Errorf("Expected no output path, got %s", out)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "song_instrumental.wav")); !os.IsNotExist(statErr) {
		t.Error("Expected no artifact on disk")
	}

	got := sink.get("task-2")
	if got[len(got)-1] != domain.ProgressFailed {
		t.Errorf("Expected last value -1, got %v", got)
	}
}

func TestRunMissingInput(t *testing.T) {
	sink := newRecordingSink()
	r := NewRunner(&separator.Mock{}, &fakeDecoder{seconds: 1}, sink, logger.Discard())

	_, err := r.Run(context.Background(), "t", filepath.Join(t.TempDir(), "gone.wav"), t.TempDir())
	if !errors.Is(err, domain.ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}

	want := []domain.Progress{-1}
	if got := sink.get("t"); !equalProgress(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRunDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "corrupt.mp3")
	sink := newRecordingSink()
	model := &separator.Mock{}
	r := NewRunner(model, &fakeDecoder{err: errors.New("invalid data")}, sink, logger.Discard())

	_, err := r.Run(context.Background(), "t", input, dir)
	if !errors.Is(err, domain.ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}

	want := []domain.Progress{10, -1}
	if got := sink.get("t"); !equalProgress(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if model.Calls() != 0 {
		t.Errorf("Model should not run after a decode failure")
	}
}

func TestRunRecoversModelPanic(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.wav")
	sink := newRecordingSink()
	r := NewRunner(&separator.Mock{Panic: true}, &fakeDecoder{seconds: 1}, sink, logger.Discard())

	_, err := r.Run(context.Background(), "t", input, dir)
	if !errors.Is(err, domain.ErrModelOutput) {
		t.Errorf("Expected ErrModelOutput, got %v", err)
	}

	got := sink.get("t")
	if got[len(got)-1] != domain.ProgressFailed {
		t.Errorf("Expected -1 after panic, got %v", got)
	}
}

func TestRunUnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.wav")
	sink := newRecordingSink()
	r := NewRunner(&separator.Mock{}, &fakeDecoder{seconds: 1}, sink, logger.Discard())

	_, err := r.Run(context.Background(), "t", input, filepath.Join(dir, "missing-dir"))
	if !errors.Is(err, domain.ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}

	want := []domain.Progress{10, 30, 70, -1}
	if got := sink.get("t"); !equalProgress(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"/tmp/abc.mp3":        "abc_instrumental.wav",
		"song.name.flac":      "song.name_instrumental.wav",
		"outputs/noextension": "noextension_instrumental.wav",
	}
	for in, want := range tests {
		if got := OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %s, want %s", in, got, want)
		}
	}
}
