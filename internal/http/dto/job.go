package dto

import (
	"time"

	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/store"
)

type JobResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	InputName  string `json:"input_name"`
	OutputName string `json:"output_name,omitempty"`
	StoredName string `json:"stored_name,omitempty"`
	Owner      string `json:"owner,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	Error      string `json:"error,omitempty"`
	Progress   int    `json:"progress"`
}

func NewJobResponse(j *domain.Separation) JobResponse {
	resp := JobResponse{
		ID:         j.ID,
		Status:     string(j.Status),
		Progress:   int(j.Progress),
		InputName:  j.InputName,
		OutputName: j.OutputName,
		StoredName: j.StoredName,
		Owner:      j.Owner,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
	if j.Error != nil {
		resp.Error = *j.Error
	}
	return resp
}

type JobListResponse struct {
	Stats *store.JobStats `json:"stats,omitempty"`
	Jobs  []JobResponse   `json:"jobs"`
}

func NewJobListResponse(jobs []*domain.Separation, stats *store.JobStats) JobListResponse {
	resp := JobListResponse{Stats: stats, Jobs: make([]JobResponse, 0, len(jobs))}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, NewJobResponse(j))
	}
	return resp
}
