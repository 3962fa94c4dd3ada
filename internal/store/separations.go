package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/cesargomez89/strume/internal/domain"
)

const separationColumns = `id, status, progress, input_name, output_name, stored_name, owner, created_at, updated_at, error`

func (db *DB) CreateSeparation(s *domain.Separation) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = domain.JobStatusRunning
	}

	// a reclaimed task id replaces the old history row
	query := `INSERT OR REPLACE INTO separations (id, status, progress, input_name, output_name, stored_name, owner, created_at, updated_at, error)
		VALUES (:id, :status, :progress, :input_name, :output_name, :stored_name, :owner, :created_at, :updated_at, :error)`

	_, err := db.NamedExec(query, s)
	return err
}

// GetSeparation returns domain.ErrNotFound for unknown ids.
func (db *DB) GetSeparation(id string) (*domain.Separation, error) {
	s := &domain.Separation{}
	err := db.Get(s, `SELECT `+separationColumns+` FROM separations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) UpdateSeparationProgress(id string, progress domain.Progress) error {
	_, err := db.Exec(`UPDATE separations SET progress = ?, updated_at = ? WHERE id = ?`, progress, time.Now(), id)
	return err
}

func (db *DB) SetSeparationOutput(id, outputName, storedName string) error {
	_, err := db.Exec(`UPDATE separations SET output_name = ?, stored_name = ?, updated_at = ? WHERE id = ?`,
		outputName, storedName, time.Now(), id)
	return err
}

func (db *DB) CompleteSeparation(id string) error {
	_, err := db.Exec(`UPDATE separations SET status = ?, progress = ?, error = NULL, updated_at = ? WHERE id = ?`,
		domain.JobStatusCompleted, domain.ProgressComplete, time.Now(), id)
	return err
}

func (db *DB) FailSeparation(id, errorMsg string) error {
	_, err := db.Exec(`UPDATE separations SET status = ?, progress = ?, error = ?, updated_at = ? WHERE id = ?`,
		domain.JobStatusFailed, domain.ProgressFailed, errorMsg, time.Now(), id)
	return err
}

func (db *DB) ListSeparations(limit int) ([]*domain.Separation, error) {
	var out []*domain.Separation
	err := db.Select(&out, `SELECT `+separationColumns+` FROM separations ORDER BY created_at DESC LIMIT ?`, limit)
	return out, err
}

// ResetStuckJobs marks jobs interrupted by a restart as failed and returns
// how many there were.
func (db *DB) ResetStuckJobs() (int64, error) {
	res, err := db.Exec(`UPDATE separations SET status = ?, progress = ?, error = ?, updated_at = ? WHERE status = ?`,
		domain.JobStatusFailed, domain.ProgressFailed, "interrupted by restart", time.Now(), domain.JobStatusRunning)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type JobStats struct {
	Total     int `db:"total" json:"total"`
	Running   int `db:"running" json:"running"`
	Completed int `db:"completed" json:"completed"`
	Failed    int `db:"failed" json:"failed"`
}

func (db *DB) GetJobStats() (*JobStats, error) {
	query := `SELECT
		COUNT(*) as total,
		COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0) as running,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) as completed,
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed
	FROM separations`

	stats := &JobStats{}
	err := db.Get(stats, query)
	return stats, err
}
