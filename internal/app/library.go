package app

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cesargomez89/strume/internal/audio"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/metadata"
	"github.com/cesargomez89/strume/internal/storage"
)

// LibraryFile is a record plus the URL it can be fetched from.
type LibraryFile struct {
	domain.FileRecord
	DownloadURL string `json:"download_url"`
}

// LibraryService serves an owner's kept instrumentals.
type LibraryService struct {
	Library   *metadata.Store
	Logger    *logger.Logger
	StoredDir string
}

func NewLibraryService(library *metadata.Store, storedDir string, log *logger.Logger) *LibraryService {
	if log == nil {
		log = logger.Default()
	}
	return &LibraryService{
		Library:   library,
		StoredDir: storedDir,
		Logger:    log.WithComponent("library"),
	}
}

// List returns owner's files with download URLs rooted at baseURL.
func (s *LibraryService) List(owner, baseURL string) ([]LibraryFile, error) {
	records, err := s.Library.List(owner)
	if err != nil {
		return nil, err
	}

	files := make([]LibraryFile, 0, len(records))
	for _, r := range records {
		files = append(files, LibraryFile{FileRecord: r, DownloadURL: DownloadURL(baseURL, r.Filename)})
	}
	return files, nil
}

// DownloadURL builds `<base>/download?file=<name>`.
func DownloadURL(baseURL, filename string) string {
	return strings.TrimRight(baseURL, "/") + "/download?file=" + url.QueryEscape(filename)
}

// Open resolves a stored file for download and returns its path and MIME
// type.
func (s *LibraryService) Open(name string) (path, mimeType string, err error) {
	path, err = storage.Resolve(s.StoredDir, name)
	if err != nil {
		return "", "", err
	}
	if !storage.Exists(path) {
		return "", "", fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return path, audio.MimeType(ext), nil
}

// Delete removes a stored file and then its records under owner. A file
// that is not on disk is domain.ErrNotFound and the records are left alone.
func (s *LibraryService) Delete(owner, name string) error {
	path, err := storage.Resolve(s.StoredDir, name)
	if err != nil {
		return err
	}
	if !storage.Exists(path) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	if err := storage.RemoveFile(path); err != nil {
		return fmt.Errorf("%w: remove %s: %v", domain.ErrIO, name, err)
	}

	removed, err := s.Library.Delete(owner, name)
	if err != nil {
		return err
	}
	s.Logger.WithOwner(owner).Info("Deleted stored file", "file", name, "records", removed)
	return nil
}
