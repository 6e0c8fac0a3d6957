package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.jobStore.GetAll())
}

func (h *Handler) HandleJobDetail(w http.ResponseWriter, r *http.Request) {
	job, ok := h.getJobOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

func (h *Handler) HandleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if !h.jobStore.Delete(chi.URLParam(r, "id")) {
		h.writeError(w, "Job not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
