// Package matcher runs matching jobs: it generates queries for an input
// record, pages through the candidates and scores each of them.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
	"github.com/lehigh-university-libraries/recordmatcher/internal/detection"
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/lehigh-university-libraries/recordmatcher/internal/querylist"
)

var (
	// ErrSearcherRequired is returned when a matcher is created without a searcher.
	ErrSearcherRequired = errors.New("searcher is required")
	// ErrNothingToResume is returned by Resume when the previous result has no queries.
	ErrNothingToResume = errors.New("previous result has no queries to resume")
)

// Matcher runs jobs with fixed options. It is safe for concurrent use.
type Matcher struct {
	opts     Options
	searcher candidates.Searcher
	detector *detection.Detector
	convert  candidates.Converter
	logger   *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithConverter replaces the MARCXML converter for search hits.
func WithConverter(convert candidates.Converter) Option {
	return func(m *Matcher) error {
		if convert != nil {
			m.convert = convert
		}
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// New validates opts and builds the job's strategy.
func New(opts Options, searcher candidates.Searcher, options ...Option) (*Matcher, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid match options: %w", err)
	}
	if _, err := querylist.ParseSearchTypes(searchTypeNames(opts.SearchSpec)); err != nil {
		return nil, err
	}

	m := &Matcher{
		opts:     opts,
		searcher: searcher,
		convert:  candidates.ConvertMARCXML,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	detector, err := detection.NewFromNames(opts.Strategy,
		detection.WithThreshold(opts.Threshold),
		detection.WithLogger(m.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy: %w", err)
	}
	m.detector = detector
	return m, nil
}

// Options returns the job options.
func (m *Matcher) Options() Options { return m.opts }

// Detector returns the job's detector.
func (m *Matcher) Detector() *detection.Detector { return m.detector }

// Queries generates the query list for rec, one search type at a time.
// Alternative queries are reduced to the one chosen by their hit counts.
func (m *Matcher) Queries(ctx context.Context, rec *marc.Record) ([]string, error) {
	gen := querylist.New(
		querylist.WithResolver(candidates.NewHostResolver(m.searcher, m.convert)),
		querylist.WithLogger(m.logger),
	)

	var queries []string
	for _, t := range m.opts.SearchSpec {
		res, err := gen.Generate(ctx, rec, []querylist.SearchType{t})
		if err != nil {
			return nil, err
		}
		if !res.Alternates || len(res.Queries) == 0 {
			queries = append(queries, res.Queries...)
			continue
		}
		chosen, err := candidates.ChooseQueries(ctx, m.searcher, res.Queries, m.opts.MaxCandidates)
		if err != nil {
			return nil, err
		}
		queries = append(queries, chosen)
	}
	return queries, nil
}

// Match runs one job for rec. Configuration and transport failures are
// returned as errors; everything else is reported in the result.
func (m *Matcher) Match(ctx context.Context, rec *marc.Record) (*Result, error) {
	queries, err := m.Queries(ctx, rec)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, rec, uuid.NewString(), queries, candidates.InitialState(), nil)
}

// Resume continues a job that stopped before its queries were exhausted. It
// reuses the queries, retrieval state and evaluated IDs of prev, so candidates
// scored in the earlier run are counted as duplicates. The counters and limits
// of the returned result cover the resumed run only.
func (m *Matcher) Resume(ctx context.Context, rec *marc.Record, prev *Result) (*Result, error) {
	if prev == nil || len(prev.Queries) == 0 {
		return nil, ErrNothingToResume
	}
	jobID := prev.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	return m.run(ctx, rec, jobID, prev.Queries, prev.State, prev.Evaluated)
}

func (m *Matcher) run(ctx context.Context, rec *marc.Record, jobID string, queries []string, state candidates.State, evaluated []string) (*Result, error) {
	logger := m.logger.With("job_id", jobID)

	search, err := candidates.NewSearch(queries, m.searcher,
		candidates.WithMaxRecordsPerRequest(m.opts.pageSize()),
		candidates.WithServerMaxResult(m.opts.ServerMaxResult),
		candidates.WithConverter(m.convert),
		candidates.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	defer search.Release()

	input, err := m.detector.Prepare(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to extract input features: %w", err)
	}

	logger.Info("Starting match job",
		"record", rec.ID(),
		"queries", len(queries),
		"query_index", state.QueryIndex,
		"offset", state.ResultOffset,
	)

	job := &job{
		matcher: m,
		logger:  logger,
		input:   input,
		inputID: rec.ID(),
		seen:    make(map[string]bool, len(evaluated)),
		result: &Result{
			JobID:     jobID,
			Queries:   queries,
			Matches:   []Match{},
			Evaluated: slices.Clone(evaluated),
		},
	}
	for _, id := range evaluated {
		job.seen[id] = true
	}

	for {
		batch, err := search.RetrieveNextBatch(ctx, state)
		if err != nil {
			logger.Error("Candidate search failed", "error", err)
			return nil, err
		}
		state = batch.State

		if job.evaluate(batch) {
			break
		}
		if batch.Done {
			break
		}
		if job.result.CandidateCount >= m.opts.MaxCandidates {
			job.stop = StopMaxCandidates
			break
		}
	}

	res := job.finish(state)
	logger.Info("Match job finished",
		"matches", len(res.Matches),
		"candidates", res.CandidateCount,
		"status", res.Status.Status,
		"stop_reason", res.Status.StopReason,
	)
	return res, nil
}

// job is the mutable accounting of one Match or Resume call.
type job struct {
	matcher *Matcher
	logger  *slog.Logger
	input   detection.FeatureVector
	inputID string
	seen    map[string]bool
	stop    StopReason
	result  *Result
}

// evaluate scores a page and reports whether the job reached its match limit.
func (j *job) evaluate(batch candidates.Batch) bool {
	opts := j.matcher.opts
	res := j.result

	res.CandidateCount += len(batch.Candidates) + len(batch.Failures)
	res.ConversionFailures = append(res.ConversionFailures, batch.Failures...)

	for _, c := range batch.Candidates {
		if c.ID != "" && (j.seen[c.ID] || c.ID == j.inputID) {
			j.logger.Debug("Skipping duplicate candidate", "id", c.ID)
			res.DuplicateCount++
			continue
		}
		if c.ID != "" {
			j.seen[c.ID] = true
			res.Evaluated = append(res.Evaluated, c.ID)
		}

		det, err := j.matcher.detector.Compare(j.input, c.Record)
		if err != nil {
			j.logger.Warn("Candidate comparison failed", "id", c.ID, "error", err)
			res.MatchErrors = append(res.MatchErrors, MatchError{
				Status:  http.StatusInternalServerError,
				ID:      c.ID,
				Message: err.Error(),
			})
			continue
		}

		match := j.annotate(Match{Probability: det.Probability, Candidate: c}, det, batch.Query)
		j.logger.Debug("Candidate scored", "id", c.ID, "probability", det.Probability, "match", det.Match)

		if !det.Match {
			res.NonMatchCount++
			if opts.ReturnNonMatches {
				res.NonMatches = append(res.NonMatches, match)
			}
			continue
		}

		res.Matches = append(res.Matches, match)
		if len(res.Matches) >= opts.MaxMatches {
			j.stop = StopMaxMatches
			return true
		}
	}
	return false
}

func (j *job) annotate(m Match, det detection.Result, query string) Match {
	opts := j.matcher.opts
	if opts.ReturnStrategy {
		threshold := j.matcher.detector.Threshold()
		m.Strategy = j.matcher.detector.Names()
		m.Threshold = &threshold
		m.Scores = det.Scores
	}
	if opts.ReturnQuery {
		m.MatchQuery = query
	}
	return m
}

func (j *job) finish(state candidates.State) *Result {
	res := j.result
	res.State = state
	res.Status = j.status(state)

	if j.matcher.opts.ReturnFailures {
		for _, f := range res.ConversionFailures {
			res.Failures = append(res.Failures, Failure{Status: f.Status, ID: f.ID, Message: f.Message, Payload: f.Payload})
		}
		for _, e := range res.MatchErrors {
			res.Failures = append(res.Failures, Failure{Status: e.Status, ID: e.ID, Message: e.Message})
		}
	}
	return res
}

// status applies the stop reason precedence: an explicit limit first, then
// unretrieved candidates, maxed queries, conversion failures and match errors.
func (j *job) status(state candidates.State) Status {
	res := j.result
	suppress := j.matcher.opts.SuppressFailureStatus

	switch {
	case j.stop != StopNone:
		return Status{StopReason: j.stop}
	case state.QueriesLeft > 0 || state.Unretrieved():
		return Status{StopReason: StopMaxCandidates}
	case len(state.MaxedQueries) > 0:
		return Status{StopReason: StopMaxedQueries}
	case len(res.ConversionFailures) > 0 && !suppress:
		return Status{StopReason: StopConversionFailures}
	case len(res.MatchErrors) > 0 && !suppress:
		return Status{StopReason: StopMatchErrors}
	}
	return Status{Status: true}
}

func searchTypeNames(types []querylist.SearchType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
