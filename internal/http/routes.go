package httpapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/separate", h.Separate)
	r.Get("/progress/{task_id}", h.ProgressStream)
	r.Get("/ws/progress/{task_id}", h.ProgressSocket)

	r.Get("/files", h.ListFiles)
	r.Get("/download", h.Download)
	r.Delete("/delete", h.DeleteFile)
	r.Post("/detect-metadata", h.DetectMetadata)

	r.Get("/jobs", h.ListJobs)
	r.Get("/jobs/{task_id}", h.GetJob)
	r.Get("/healthz", h.Health)
}

// NewRouter wires the handler behind request ids, access logs, panic
// recovery and CORS.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Task-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h.RegisterRoutes(r)
	return r
}
