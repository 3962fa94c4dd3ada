package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cesargomez89/strume/internal/acoustid"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/fingerprint"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/musicbrainz"
	"github.com/cesargomez89/strume/internal/storage"
)

// MetadataDetector identifies an uploaded clip by its fingerprint.
type MetadataDetector struct {
	Fingerprinter fingerprint.Fingerprinter
	Lookup        acoustid.Lookup
	// Genres is optional; without it the genre stays Unknown.
	Genres  musicbrainz.GenreLookup
	Logger  *logger.Logger
	WorkDir string
}

func NewMetadataDetector(fp fingerprint.Fingerprinter, lookup acoustid.Lookup, genres musicbrainz.GenreLookup, workDir string, log *logger.Logger) *MetadataDetector {
	if log == nil {
		log = logger.Default()
	}
	return &MetadataDetector{
		Fingerprinter: fp,
		Lookup:        lookup,
		Genres:        genres,
		WorkDir:       workDir,
		Logger:        log.WithComponent("detector"),
	}
}

// Detect returns all Unknown when nothing matches. Fingerprint and lookup
// failures wrap domain.ErrRemoteService; genre failures are only logged.
func (d *MetadataDetector) Detect(ctx context.Context, upload io.Reader, filename string) (domain.TrackInfo, error) {
	tmp := filepath.Join(d.WorkDir, storage.UploadName(filename))
	defer func() {
		if err := storage.RemoveFile(tmp); err != nil {
			d.Logger.Warn("Failed to remove detection upload", "path", tmp, "error", err)
		}
	}()

	if _, err := storage.WriteStream(tmp, upload); err != nil {
		return domain.TrackInfo{}, fmt.Errorf("%w: save upload: %v", domain.ErrIO, err)
	}

	fp, err := d.Fingerprinter.Fingerprint(ctx, tmp)
	if err != nil {
		return domain.TrackInfo{}, fmt.Errorf("%w: fingerprinting failed: %v", domain.ErrRemoteService, err)
	}

	match, err := d.Lookup.Lookup(ctx, fp)
	if err != nil {
		return domain.TrackInfo{}, fmt.Errorf("%w: acoustid lookup failed: %v", domain.ErrRemoteService, err)
	}
	if match == nil {
		d.Logger.Info("No AcoustID match", "file", filename, "duration", fp.Duration)
		return domain.UnknownTrack(), nil
	}

	info := domain.TrackInfo{Title: match.Title, Artist: match.Artist}
	if d.Genres != nil && match.RecordingID != "" {
		genres, err := d.Genres.GetGenres(ctx, match.RecordingID)
		if err != nil {
			d.Logger.Warn("Genre lookup failed", "recording_id", match.RecordingID, "error", err)
		} else {
			info.Genre = genres.MainGenre
		}
	}
	info.Normalize()

	d.Logger.Info("Detected track", "title", info.Title, "artist", info.Artist, "genre", info.Genre)
	return info, nil
}
