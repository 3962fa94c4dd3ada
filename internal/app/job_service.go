package app

import (
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/store"
)

const (
	DefaultJobListLimit = 50
	MaxJobListLimit     = 500
)

// JobService reads the separation history.
type JobService struct {
	Repo   *store.DB
	Logger *logger.Logger
}

func NewJobService(repo *store.DB, log *logger.Logger) *JobService {
	if log == nil {
		log = logger.Default()
	}
	return &JobService{Repo: repo, Logger: log.WithComponent("jobs")}
}

func (s *JobService) GetJob(id string) (*domain.Separation, error) {
	return s.Repo.GetSeparation(id)
}

// ListJobs returns the newest jobs first. limit is clamped to
// [1, MaxJobListLimit]; zero or less means DefaultJobListLimit.
func (s *JobService) ListJobs(limit int) ([]*domain.Separation, error) {
	if limit <= 0 {
		limit = DefaultJobListLimit
	}
	if limit > MaxJobListLimit {
		limit = MaxJobListLimit
	}
	jobs, err := s.Repo.ListSeparations(limit)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*domain.Separation{}
	}
	return jobs, nil
}

func (s *JobService) GetJobStats() (*store.JobStats, error) {
	return s.Repo.GetJobStats()
}

// RecoverInterrupted fails jobs left running by a previous process.
func (s *JobService) RecoverInterrupted() (int64, error) {
	n, err := s.Repo.ResetStuckJobs()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Warn("Marked interrupted jobs as failed", "count", n)
	}
	return n, nil
}
