// Package metadata persists the per-owner library of kept instrumentals as
// a single pretty-printed JSON document.
//
// Every mutation is a whole-document read-modify-write. Writers are
// serialized inside the process by a mutex and across processes by an
// exclusive flock on "<path>.lock", so the server and strumectl can share
// one document. The new document is written to a temp file and renamed
// into place.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
)

// Document maps an owner identifier to its records in insertion order.
type Document map[string][]domain.FileRecord

type Store struct {
	logger *logger.Logger
	path   string
	mu     sync.RWMutex
}

func NewStore(path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		path:   path,
		logger: log.WithComponent("metadata"),
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Append adds record to the end of owner's list. The owner string is used
// verbatim.
func (s *Store) Append(owner string, record domain.FileRecord) error {
	return s.update(func(doc Document) error {
		doc[owner] = append(doc[owner], record)
		return nil
	})
}

// List returns owner's records, or an empty slice for unknown owners.
func (s *Store) List(owner string) ([]domain.FileRecord, error) {
	doc, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	records := doc[owner]
	if records == nil {
		records = []domain.FileRecord{}
	}
	return records, nil
}

// Delete removes every record of owner whose filename matches and returns
// how many were removed. Other owners are untouched.
func (s *Store) Delete(owner, filename string) (int, error) {
	removed := 0
	err := s.update(func(doc Document) error {
		records, ok := doc[owner]
		if !ok {
			return nil
		}
		kept := make([]domain.FileRecord, 0, len(records))
		for _, r := range records {
			if r.Filename == filename {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		doc[owner] = kept
		return nil
	})
	return removed, err
}

// Snapshot reads the whole document under a shared lock.
func (s *Store) Snapshot() (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return Document{}, nil
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("%w: lock metadata: %v", domain.ErrIO, err)
	}
	defer func() { _ = lock.Unlock() }()

	return s.load()
}

func (s *Store) update(mutate func(Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPermissions); err != nil {
		return fmt.Errorf("%w: create metadata dir: %v", domain.ErrIO, err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock metadata: %v", domain.ErrIO, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("Failed to release metadata lock", "error", err)
		}
	}()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *Store) load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("%w: read metadata: %v", domain.ErrIO, err)
	}

	doc := Document{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse metadata %s: %v", domain.ErrIO, s.path, err)
	}
	return doc, nil
}

func (s *Store) save(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp metadata: %v", domain.ErrIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write metadata: %v", domain.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close metadata: %v", domain.ErrIO, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		s.logger.Debug("Could not chmod metadata temp file", "error", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replace metadata: %v", domain.ErrIO, err)
	}
	return nil
}
