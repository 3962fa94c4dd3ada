package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cesargomez89/strume/internal/acoustid"
	"github.com/cesargomez89/strume/internal/audio"
	"github.com/cesargomez89/strume/internal/config"
	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/fingerprint"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/metadata"
	"github.com/cesargomez89/strume/internal/musicbrainz"
	"github.com/cesargomez89/strume/internal/progress"
	"github.com/cesargomez89/strume/internal/separation"
	"github.com/cesargomez89/strume/internal/separator"
	"github.com/cesargomez89/strume/internal/store"
	"github.com/cesargomez89/strume/internal/worker"
)

// Services is everything a strume process needs, built once from config.
type Services struct {
	DB          *store.DB
	Registry    *progress.Registry
	Pool        *worker.Pool
	Model       separator.Model
	FFmpeg      *audio.FFmpeg
	Library     *metadata.Store
	Separations *SeparationService
	Files       *LibraryService
	Detector    *MetadataDetector
	Jobs        *JobService
}

// NewServices opens the database and wires the services. A nil model
// means the demucs command configured in cfg.
func NewServices(cfg *config.Config, model separator.Model, log *logger.Logger) (*Services, error) {
	if log == nil {
		log = logger.Default()
	}

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if model == nil {
		model = separator.NewDemucs(separator.DemucsConfig{
			Binary:     cfg.DemucsPath,
			Model:      cfg.DemucsModel,
			Device:     cfg.DemucsDevice,
			SampleRate: cfg.ModelSampleRate,
			Channels:   cfg.ModelChannels,
		})
	}

	ffmpeg := audio.NewFFmpeg(cfg.FFmpegPath)
	registry := progress.NewRegistry(cfg.ProgressRetention(), log)
	pool := worker.NewPool(cfg.MaxConcurrentJobs, log)
	library := metadata.NewStore(cfg.MetadataPath, log)
	runner := separation.NewRunner(model, ffmpeg, registry, log)

	httpClient := &http.Client{Timeout: constants.DefaultHTTPTimeout}
	var lookup acoustid.Lookup = acoustid.NewCachedClient(
		acoustid.NewClient(cfg.AcoustIDURL, cfg.AcoustIDAPIKey, httpClient), db, cfg.LookupCacheTTL())

	var genres musicbrainz.GenreLookup
	if cfg.MusicBrainzURL != "" {
		genres = musicbrainz.NewCachedClient(
			musicbrainz.NewClient(cfg.MusicBrainzURL, httpClient), db, cfg.LookupCacheTTL())
	}

	return &Services{
		DB:          db,
		Registry:    registry,
		Pool:        pool,
		Model:       model,
		FFmpeg:      ffmpeg,
		Library:     library,
		Separations: NewSeparationService(cfg, runner, pool, registry, db, library, ffmpeg, log),
		Files:       NewLibraryService(library, cfg.StoredDir, log),
		Detector:    NewMetadataDetector(fingerprint.NewFPCalc(cfg.FpcalcPath), lookup, genres, cfg.WorkDir, log),
		Jobs:        NewJobService(db, log),
	}, nil
}

// Close stops the pool, waiting for running jobs until ctx ends, and
// closes the database.
func (s *Services) Close(ctx context.Context) error {
	stopErr := s.Pool.Stop(ctx)
	if err := s.DB.Close(); err != nil {
		return err
	}
	return stopErr
}
