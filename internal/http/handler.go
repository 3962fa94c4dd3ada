// Package httpapp exposes the separation, progress and library services
// over HTTP.
package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cesargomez89/strume/internal/app"
	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/deps"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/http/dto"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/progress"
	"github.com/cesargomez89/strume/internal/worker"
)

type Options struct {
	Separations    *app.SeparationService
	Library        *app.LibraryService
	Detector       *app.MetadataDetector
	Jobs           *app.JobService
	Registry       *progress.Registry
	Pool           *worker.Pool
	Logger         *logger.Logger
	PublicBaseURL  string
	CORSOrigins    []string
	Binaries       []deps.Status
	PollInterval   time.Duration
	MaxUploadBytes int64
}

type Handler struct {
	Separations    *app.SeparationService
	Library        *app.LibraryService
	Detector       *app.MetadataDetector
	Jobs           *app.JobService
	Registry       *progress.Registry
	Pool           *worker.Pool
	Logger         *logger.Logger
	PublicBaseURL  string
	CORSOrigins    []string
	OriginPatterns []string
	Binaries       []deps.Status
	PollInterval   time.Duration
	MaxUploadBytes int64
}

func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = constants.DefaultPollInterval
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = constants.DefaultMaxUploadMB << 20
	}
	return &Handler{
		Separations:    opts.Separations,
		Library:        opts.Library,
		Detector:       opts.Detector,
		Jobs:           opts.Jobs,
		Registry:       opts.Registry,
		Pool:           opts.Pool,
		Logger:         log.WithComponent("http"),
		PublicBaseURL:  opts.PublicBaseURL,
		CORSOrigins:    opts.CORSOrigins,
		OriginPatterns: originPatterns(opts.CORSOrigins),
		Binaries:       opts.Binaries,
		PollInterval:   poll,
		MaxUploadBytes: maxUpload,
	}
}

// originPatterns turns CORS origins into the host patterns the websocket
// origin check expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}

// baseURL is where download links point: the configured public URL, or
// the scheme and host the request came in on.
func (h *Handler) baseURL(r *http.Request) string {
	if h.PublicBaseURL != "" {
		return strings.TrimRight(h.PublicBaseURL, "/") + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host + "/"
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", constants.MimeTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Debug("Failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, dto.ErrorResponse{Detail: detail})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidFilename):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTaskInUse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
