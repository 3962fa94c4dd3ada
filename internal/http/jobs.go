package httpapp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/strume/internal/deps"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/http/dto"
)

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "task_id")
	job, err := h.Jobs.GetJob(id)
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Job not found.")
		return
	}
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit: must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := h.Jobs.ListJobs(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := h.Jobs.GetJobStats()
	if err != nil {
		h.Logger.Error("Failed to get job stats", "error", err)
		stats = nil
	}
	h.writeJSON(w, http.StatusOK, dto.NewJobListResponse(jobs, stats))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := dto.HealthResponse{
		Status:   "ok",
		Binaries: h.Binaries,
		Pool:     dto.PoolStatus{Size: h.Pool.Size(), Active: h.Pool.Active()},
		Tasks:    h.Registry.Len(),
	}
	if resp.Binaries == nil {
		resp.Binaries = []deps.Status{}
	}
	if len(deps.MissingRequired(h.Binaries)) > 0 {
		resp.Status = "degraded"
	}
	h.writeJSON(w, http.StatusOK, resp)
}
