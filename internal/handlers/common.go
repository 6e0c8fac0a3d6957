package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
	"github.com/lehigh-university-libraries/recordmatcher/internal/storage"
)

// maxBodyBytes bounds an uploaded record.
const maxBodyBytes = 4 << 20

type Handler struct {
	jobStore *storage.JobStore
	searcher candidates.Searcher
	defaults matcher.Options
	logger   *slog.Logger
}

// New creates a handler that runs jobs against searcher. defaults carries the
// job limits; the search spec and strategy come from the requested preset.
func New(searcher candidates.Searcher, defaults matcher.Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		jobStore: storage.New(),
		searcher: searcher,
		defaults: defaults,
		logger:   logger,
	}
}

// Routes mounts the API on a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", h.HandleHealthcheck)
	r.Route("/api", func(r chi.Router) {
		r.Post("/match", h.HandleMatch)
		r.Get("/jobs", h.HandleJobs)
		r.Get("/jobs/{id}", h.HandleJobDetail)
		r.Delete("/jobs/{id}", h.HandleDeleteJob)
	})
	return r
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("Unable to write healthcheck", "err", err)
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		h.logger.Error(message)
	} else {
		h.logger.Debug(message, "status", code)
	}
	http.Error(w, message, code)
}

// Job helpers
func (h *Handler) getJobOrError(w http.ResponseWriter, jobID string) (*matcher.Result, bool) {
	job, exists := h.jobStore.Get(jobID)
	if !exists {
		h.writeError(w, "Job not found", http.StatusNotFound)
		return nil, false
	}
	return job, true
}
