// Package candidates drives paginated candidate retrieval over a list of
// queries against the union catalog.
package candidates

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

const (
	DefaultMaxRecordsPerRequest = 50
	DefaultServerMaxResult      = 20000
)

// ErrEmptyQueryList is returned when a search is created without queries.
var ErrEmptyQueryList = errors.New("generated query list contains no queries")

// RawRecord is one search hit as returned by the catalog, usually MARCXML.
type RawRecord string

// Stream is a single page of results. It is finite and cannot be restarted.
type Stream interface {
	// Total is the number of hits for the whole query.
	Total() int
	Records() iter.Seq[RawRecord]
	// NextOffset is the start record of the next page, if there is one.
	NextOffset() (int, bool)
	// Err reports a failure that ended the stream early.
	Err() error
}

// Searcher runs one page of a query against the catalog.
type Searcher interface {
	Search(ctx context.Context, query string, startRecord, maxRecords int) (Stream, error)
}

// Converter turns a raw hit into a record.
type Converter func(RawRecord) (*marc.Record, error)

// ConvertMARCXML is the default Converter.
func ConvertMARCXML(raw RawRecord) (*marc.Record, error) {
	return marc.ParseXML([]byte(raw))
}

// SearchError is a transport or protocol failure. It aborts the job.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for query %q: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// State is the retrieval cursor. It is passed by value and every retrieval
// returns a new one.
type State struct {
	QueryIndex         int      `json:"queryIndex" yaml:"query_index"`
	ResultOffset       int      `json:"resultOffset" yaml:"result_offset"`
	TotalForQuery      int      `json:"totalForQuery" yaml:"total_for_query"`
	QueryAttempts      int      `json:"queryAttempts" yaml:"query_attempts"`
	CandidatesForQuery int      `json:"candidatesForQuery" yaml:"candidates_for_query"`
	QueryCounter       int      `json:"queryCounter" yaml:"query_counter"`
	QueriesLeft        int      `json:"queriesLeft" yaml:"queries_left"`
	MaxedQueries       []string `json:"maxedQueries,omitempty" yaml:"maxed_queries,omitempty"`
}

// InitialState is the cursor at the first page of the first query.
func InitialState() State {
	return State{ResultOffset: 1}
}

// Unretrieved reports whether the current query still has hits that were
// never fetched.
func (s State) Unretrieved() bool {
	return s.CandidatesForQuery < s.TotalForQuery
}

// Candidate is a converted search hit.
type Candidate struct {
	ID     string       `json:"id"`
	Record *marc.Record `json:"record"`
}

// ConversionFailure is a hit that could not be converted. ID is "unknown"
// when no control number could be found in the payload.
type ConversionFailure struct {
	Status  int    `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Payload string `json:"payload,omitempty"`
}

// Batch is the outcome of one retrieval step. Done means nothing is left to
// retrieve; the batch itself may still carry candidates.
type Batch struct {
	Candidates []Candidate         `json:"candidates"`
	Failures   []ConversionFailure `json:"failures,omitempty"`
	State      State               `json:"state"`
	Done       bool                `json:"done"`
	Query      string              `json:"query,omitempty"`
}
