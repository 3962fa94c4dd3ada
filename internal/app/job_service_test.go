package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
)

func TestJobService_GetJob(t *testing.T) {
	db := setupTestDB(t)
	svc := NewJobService(db, logger.Discard())

	if err := db.CreateSeparation(&domain.Separation{ID: "j1", InputName: "a.mp3"}); err != nil {
		t.Fatalf("CreateSeparation failed: %v", err)
	}

	job, err := svc.GetJob("j1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Status != domain.JobStatusRunning {
		t.Errorf("Expected status running, got %s", job.Status)
	}

	if _, err := svc.GetJob("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestJobService_ListJobs(t *testing.T) {
	db := setupTestDB(t)
	svc := NewJobService(db, logger.Discard())

	empty, err := svc.ListJobs(0)
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if empty == nil {
		t.Error("Expected empty non-nil list")
	}

	for i := 0; i < 3; i++ {
		_ = db.CreateSeparation(&domain.Separation{ID: fmt.Sprintf("j%d", i)})
	}

	jobs, err := svc.ListJobs(2)
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}

	all, _ := svc.ListJobs(MaxJobListLimit + 100)
	if len(all) != 3 {
		t.Errorf("Expected 3 jobs, got %d", len(all))
	}
}

func TestJobService_RecoverInterrupted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewJobService(db, logger.Discard())

	_ = db.CreateSeparation(&domain.Separation{ID: "stuck"})
	_ = db.CreateSeparation(&domain.Separation{ID: "done"})
	_ = db.CompleteSeparation("done")

	n, err := svc.RecoverInterrupted()
	if err != nil {
		t.Fatalf("RecoverInterrupted failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 recovered job, got %d", n)
	}

	stats, err := svc.GetJobStats()
	if err != nil {
		t.Fatalf("GetJobStats failed: %v", err)
	}
	if stats.Failed != 1 || stats.Completed != 1 || stats.Running != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
