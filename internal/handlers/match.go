package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
	"github.com/lehigh-university-libraries/recordmatcher/internal/presets"
)

// HandleMatch runs one job for the MARC-in-JSON record in the request body.
//
// Query parameters: preset (default IDS), maxMatches, maxCandidates,
// threshold, returnStrategy, returnQuery, returnNonMatches, returnFailures.
func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	opts, err := h.jobOptions(r.URL.Query())
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, "Unable to read request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := marc.ParseJSON(body)
	if err != nil {
		h.writeError(w, "Invalid record: "+err.Error(), http.StatusBadRequest)
		return
	}

	m, err := matcher.New(opts, h.searcher, matcher.WithLogger(h.logger))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := m.Match(r.Context(), rec)
	if err != nil {
		code := http.StatusInternalServerError
		var searchErr *candidates.SearchError
		switch {
		case errors.Is(err, candidates.ErrEmptyQueryList):
			code = http.StatusUnprocessableEntity
		case errors.As(err, &searchErr):
			code = http.StatusBadGateway
		}
		h.writeError(w, "Match failed: "+err.Error(), code)
		return
	}

	h.jobStore.Set(result.JobID, result)
	h.logger.Info("Job stored", "job_id", result.JobID, "matches", len(result.Matches), "status", result.Status.Status)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) jobOptions(q url.Values) (matcher.Options, error) {
	name := q.Get("preset")
	if name == "" {
		name = presets.IDs
	}
	preset, err := presets.Get(name)
	if err != nil {
		return matcher.Options{}, err
	}
	opts := preset.Apply(h.defaults)

	ints := map[string]*int{
		"maxMatches":    &opts.MaxMatches,
		"maxCandidates": &opts.MaxCandidates,
	}
	for key, dst := range ints {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return matcher.Options{}, errors.New("invalid " + key + ": " + v)
			}
			*dst = n
		}
	}

	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return matcher.Options{}, errors.New("invalid threshold: " + v)
		}
		opts.Threshold = f
	}

	bools := map[string]*bool{
		"returnStrategy":   &opts.ReturnStrategy,
		"returnQuery":      &opts.ReturnQuery,
		"returnNonMatches": &opts.ReturnNonMatches,
		"returnFailures":   &opts.ReturnFailures,
	}
	for key, dst := range bools {
		if v := q.Get(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return matcher.Options{}, errors.New("invalid " + key + ": " + v)
			}
			*dst = b
		}
	}

	return opts, nil
}
