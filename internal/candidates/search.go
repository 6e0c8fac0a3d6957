package candidates

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync"

	"github.com/panjf2000/ants/v2"
)

const unknownID = "unknown"

var controlNumberPattern = regexp.MustCompile(`<(?:\w+:)?controlfield[^>]*tag="001"[^>]*>([^<]*)<`)

// Search retrieves candidates for a fixed list of queries, one page per call.
type Search struct {
	queries         []string
	searcher        Searcher
	maxRecords      int
	serverMaxResult int
	convert         Converter
	pool            *ants.Pool
	logger          *slog.Logger
}

// Option configures a Search.
type Option func(*Search) error

// WithMaxRecordsPerRequest sets the page size.
func WithMaxRecordsPerRequest(n int) Option {
	return func(s *Search) error {
		if n < 1 {
			return fmt.Errorf("max records per request must be positive, got %d", n)
		}
		s.maxRecords = n
		return nil
	}
}

// WithServerMaxResult sets the hit count at which a query is flagged as maxed.
func WithServerMaxResult(n int) Option {
	return func(s *Search) error {
		if n < 1 {
			return fmt.Errorf("server max result must be positive, got %d", n)
		}
		s.serverMaxResult = n
		return nil
	}
}

// WithPoolSize sets the number of concurrent conversions per page.
// Default is the page size.
func WithPoolSize(size int) Option {
	return func(s *Search) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithConverter replaces the MARCXML converter.
func WithConverter(convert Converter) Option {
	return func(s *Search) error {
		if convert != nil {
			s.convert = convert
		}
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Search) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearch creates a search over queries. The list must not be empty.
func NewSearch(queries []string, searcher Searcher, opts ...Option) (*Search, error) {
	if len(queries) == 0 {
		return nil, ErrEmptyQueryList
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	s := &Search{
		queries:         queries,
		searcher:        searcher,
		maxRecords:      DefaultMaxRecordsPerRequest,
		serverMaxResult: DefaultServerMaxResult,
		convert:         ConvertMARCXML,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}
	if s.pool == nil {
		pool, err := ants.NewPool(s.maxRecords)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}
	return s, nil
}

// Release frees the conversion pool. The search must not be used afterwards.
func (s *Search) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Queries returns the query list.
func (s *Search) Queries() []string { return s.queries }

// RetrieveNextBatch fetches the page state points at and returns the state
// for the following page.
func (s *Search) RetrieveNextBatch(ctx context.Context, state State) (Batch, error) {
	state.MaxedQueries = append([]string(nil), state.MaxedQueries...)
	if state.ResultOffset < 1 {
		state.ResultOffset = 1
	}
	if state.QueryIndex < 0 || state.QueryIndex >= len(s.queries) {
		state.QueriesLeft = 0
		return Batch{State: state, Done: true}, nil
	}

	query := s.queries[state.QueryIndex]
	s.logger.Debug("Searching candidates", "query", query, "query_index", state.QueryIndex, "offset", state.ResultOffset)

	stream, err := s.searcher.Search(ctx, query, state.ResultOffset, s.maxRecords)
	if err != nil {
		return Batch{}, &SearchError{Query: query, Err: err}
	}

	candidates, failures := s.convertAll(stream)
	if err := stream.Err(); err != nil {
		return Batch{}, &SearchError{Query: query, Err: err}
	}

	if state.ResultOffset == 1 {
		state.TotalForQuery = stream.Total()
		state.QueryCounter++
		if state.TotalForQuery >= s.serverMaxResult {
			s.logger.Warn("Query result set is truncated", "query", query, "total", state.TotalForQuery, "server_max_result", s.serverMaxResult)
			state.MaxedQueries = append(state.MaxedQueries, query)
		}
	}
	state.QueryAttempts++
	state.CandidatesForQuery += len(candidates) + len(failures)

	if next, ok := stream.NextOffset(); ok && next > state.ResultOffset {
		state.ResultOffset = next
	} else {
		state.QueryIndex++
		state.ResultOffset = 1
		state.TotalForQuery = 0
		state.QueryAttempts = 0
		state.CandidatesForQuery = 0
	}
	state.QueriesLeft = len(s.queries) - state.QueryIndex

	s.logger.Debug("Retrieved candidates", "query", query, "candidates", len(candidates), "failures", len(failures), "queries_left", state.QueriesLeft)

	return Batch{
		Candidates: candidates,
		Failures:   failures,
		State:      state,
		Done:       state.QueriesLeft == 0,
		Query:      query,
	}, nil
}

type conversion struct {
	candidate *Candidate
	failure   *ConversionFailure
}

// convertAll converts the page's hits on the pool and keeps service order.
func (s *Search) convertAll(stream Stream) ([]Candidate, []ConversionFailure) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []conversion
	)

	i := 0
	for raw := range stream.Records() {
		idx := i
		i++
		mu.Lock()
		results = append(results, conversion{})
		mu.Unlock()

		wg.Add(1)
		task := func() {
			defer wg.Done()
			res := s.convertOne(raw)
			mu.Lock()
			results[idx] = res
			mu.Unlock()
		}
		if err := s.pool.Submit(task); err != nil {
			s.logger.Warn("Conversion pool rejected task, converting inline", "error", err)
			task()
		}
	}
	wg.Wait()

	var (
		candidates []Candidate
		failures   []ConversionFailure
	)
	for _, r := range results {
		switch {
		case r.candidate != nil:
			candidates = append(candidates, *r.candidate)
		case r.failure != nil:
			failures = append(failures, *r.failure)
		}
	}
	return candidates, failures
}

func (s *Search) convertOne(raw RawRecord) (res conversion) {
	defer func() {
		if r := recover(); r != nil {
			res = conversion{failure: newConversionFailure(raw, fmt.Errorf("%v", r))}
		}
	}()

	rec, err := s.convert(raw)
	if err != nil {
		s.logger.Warn("Failed converting record", "error", err)
		return conversion{failure: newConversionFailure(raw, err)}
	}
	return conversion{candidate: &Candidate{ID: rec.ID(), Record: rec}}
}

func newConversionFailure(raw RawRecord, err error) *ConversionFailure {
	return &ConversionFailure{
		Status:  http.StatusUnprocessableEntity,
		ID:      ScrapeID(raw),
		Message: fmt.Sprintf("failed converting record: %v", err),
		Payload: string(raw),
	}
}

// ScrapeID finds the 001 control number in an unparsable payload.
func ScrapeID(raw RawRecord) string {
	if m := controlNumberPattern.FindStringSubmatch(string(raw)); m != nil && m[1] != "" {
		return m[1]
	}
	return unknownID
}
