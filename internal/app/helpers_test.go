package app

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/cesargomez89/strume/internal/audio"
	"github.com/cesargomez89/strume/internal/config"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/metadata"
	"github.com/cesargomez89/strume/internal/progress"
	"github.com/cesargomez89/strume/internal/separation"
	"github.com/cesargomez89/strume/internal/separator"
	"github.com/cesargomez89/strume/internal/store"
	"github.com/cesargomez89/strume/internal/worker"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test_app.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type sineDecoder struct {
	err     error
	seconds float64
}

func (d *sineDecoder) Decode(_ context.Context, _ string, rate, channels int) (*audio.Waveform, error) {
	if d.err != nil {
		return nil, d.err
	}
	frames := int(float64(rate) * d.seconds)
	w := &audio.Waveform{SampleRate: rate, Channels: channels, Samples: make([]float32, frames*channels)}
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			w.Samples[i*channels+c] = v
		}
	}
	return w, nil
}

type testEnv struct {
	cfg      *config.Config
	db       *store.DB
	registry *progress.Registry
	library  *metadata.Store
	model    *separator.Mock
	svc      *SeparationService
}

func newTestEnv(t *testing.T, model *separator.Mock) *testEnv {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.WorkDir = filepath.Join(root, "work")
	cfg.StoredDir = filepath.Join(root, "stored")
	cfg.MetadataPath = filepath.Join(root, "stored", "metadata.json")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	log := logger.Discard()
	db := setupTestDB(t)
	registry := progress.NewRegistry(time.Minute, log)
	library := metadata.NewStore(cfg.MetadataPath, log)
	pool := worker.NewPool(1, log)
	runner := separation.NewRunner(model, &sineDecoder{seconds: 0.05}, registry, log)

	return &testEnv{
		cfg:      cfg,
		db:       db,
		registry: registry,
		library:  library,
		model:    model,
		svc:      NewSeparationService(cfg, runner, pool, registry, db, library, nil, log),
	}
}
