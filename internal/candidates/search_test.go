package candidates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(prefix string, n int) []RawRecord {
	out := make([]RawRecord, n)
	for i := range out {
		out[i] = marcXML(fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

func drain(t *testing.T, s *Search) ([]Batch, State) {
	t.Helper()
	var batches []Batch
	state := InitialState()
	for range 100 {
		batch, err := s.RetrieveNextBatch(context.Background(), state)
		require.NoError(t, err)
		batches = append(batches, batch)
		state = batch.State
		if batch.Done {
			return batches, state
		}
	}
	t.Fatal("retrieval did not terminate")
	return nil, State{}
}

func TestNewSearchValidation(t *testing.T) {
	_, err := NewSearch(nil, &fakeSearcher{})
	assert.ErrorIs(t, err, ErrEmptyQueryList)

	_, err = NewSearch([]string{"q"}, nil)
	assert.Error(t, err)

	_, err = NewSearch([]string{"q"}, &fakeSearcher{}, WithMaxRecordsPerRequest(0))
	assert.Error(t, err)
}

func TestRetrievePagesThroughQueries(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]RawRecord{
		"a": ids("a", 5),
		"b": ids("b", 1),
	}}
	s, err := NewSearch([]string{"a", "b"}, searcher, WithMaxRecordsPerRequest(2), WithPoolSize(2))
	require.NoError(t, err)
	defer s.Release()

	batches, final := drain(t, s)
	require.Len(t, batches, 4)

	var got []string
	for _, b := range batches {
		for _, c := range b.Candidates {
			got = append(got, c.ID)
		}
	}
	assert.Equal(t, []string{"a0", "a1", "a2", "a3", "a4", "b0"}, got)

	assert.Equal(t, []searchCall{
		{query: "a", start: 1, max: 2},
		{query: "a", start: 3, max: 2},
		{query: "a", start: 5, max: 2},
		{query: "b", start: 1, max: 2},
	}, searcher.calls)

	first := batches[0].State
	assert.Equal(t, 0, first.QueryIndex)
	assert.Equal(t, 3, first.ResultOffset)
	assert.Equal(t, 5, first.TotalForQuery)
	assert.Equal(t, 2, first.CandidatesForQuery)
	assert.Equal(t, 1, first.QueryCounter)
	assert.Equal(t, 2, first.QueriesLeft)
	assert.True(t, first.Unretrieved())

	third := batches[2].State
	assert.Equal(t, 1, third.QueryIndex)
	assert.Equal(t, 1, third.ResultOffset, "offset restarts with the next query")
	assert.Equal(t, 0, third.TotalForQuery)
	assert.Equal(t, 1, third.QueriesLeft)
	assert.Equal(t, "a", batches[2].Query)

	assert.Equal(t, 2, final.QueryIndex)
	assert.Equal(t, 2, final.QueryCounter)
	assert.Equal(t, 0, final.QueriesLeft)
	assert.True(t, batches[3].Done)
	assert.Len(t, batches[3].Candidates, 1)
}

func TestRetrieveOutOfRangeIsDone(t *testing.T) {
	searcher := &fakeSearcher{}
	s, err := NewSearch([]string{"a"}, searcher)
	require.NoError(t, err)
	defer s.Release()

	batch, err := s.RetrieveNextBatch(context.Background(), State{QueryIndex: 1, ResultOffset: 1})
	require.NoError(t, err)
	assert.True(t, batch.Done)
	assert.Empty(t, batch.Candidates)
	assert.Empty(t, searcher.calls)
}

func TestStatePassedByValue(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]RawRecord{"a": ids("a", 1)},
		totals:  map[string]int{"a": 30000},
	}
	s, err := NewSearch([]string{"a"}, searcher)
	require.NoError(t, err)
	defer s.Release()

	in := InitialState()
	in.MaxedQueries = make([]string, 0, 4)
	batch, err := s.RetrieveNextBatch(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, batch.State.MaxedQueries)
	assert.Empty(t, in.MaxedQueries)
	assert.Equal(t, 1, in.ResultOffset)
}

func TestMaxedQueries(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]RawRecord{"big": ids("x", 2), "small": ids("y", 2)},
		totals:  map[string]int{"big": 100},
	}
	s, err := NewSearch([]string{"big", "small"}, searcher, WithServerMaxResult(100))
	require.NoError(t, err)
	defer s.Release()

	_, final := drain(t, s)
	assert.Equal(t, []string{"big"}, final.MaxedQueries)
}

func TestConversionFailuresAreCollected(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]RawRecord{"a": {
		marcXML("ok1"),
		RawRecord(`<record><controlfield tag="001">000000123</controlfield><datafield`),
		RawRecord(`garbage`),
		marcXML("ok2"),
	}}}
	s, err := NewSearch([]string{"a"}, searcher)
	require.NoError(t, err)
	defer s.Release()

	batch, err := s.RetrieveNextBatch(context.Background(), InitialState())
	require.NoError(t, err)

	require.Len(t, batch.Candidates, 2)
	assert.Equal(t, "ok1", batch.Candidates[0].ID)
	assert.Equal(t, "ok2", batch.Candidates[1].ID)

	require.Len(t, batch.Failures, 2)
	assert.Equal(t, "000000123", batch.Failures[0].ID)
	assert.Equal(t, "unknown", batch.Failures[1].ID)
	for _, f := range batch.Failures {
		assert.Equal(t, http.StatusUnprocessableEntity, f.Status)
		assert.NotEmpty(t, f.Message)
		assert.NotEmpty(t, f.Payload)
	}
	assert.True(t, batch.Done)
}

func TestConverterPanicIsAFailure(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]RawRecord{"a": ids("a", 3)}}
	var calls atomic.Int32
	convert := func(raw RawRecord) (*marc.Record, error) {
		if calls.Add(1) == 2 {
			panic("bad record")
		}
		return ConvertMARCXML(raw)
	}
	s, err := NewSearch([]string{"a"}, searcher, WithConverter(convert), WithPoolSize(1))
	require.NoError(t, err)
	defer s.Release()

	batch, err := s.RetrieveNextBatch(context.Background(), InitialState())
	require.NoError(t, err)
	assert.Len(t, batch.Candidates, 2)
	require.Len(t, batch.Failures, 1)
	assert.Contains(t, batch.Failures[0].Message, "bad record")
}

func TestTransportErrorsAbort(t *testing.T) {
	tests := []struct {
		name     string
		searcher *fakeSearcher
	}{
		{
			name:     "search fails",
			searcher: &fakeSearcher{errs: map[string]error{"a": errors.New("connection refused")}},
		},
		{
			name: "stream fails",
			searcher: &fakeSearcher{
				results:   map[string][]RawRecord{"a": ids("a", 1)},
				streamErr: map[string]error{"a": errors.New("diagnostic: query syntax error")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSearch([]string{"a"}, tt.searcher)
			require.NoError(t, err)
			defer s.Release()

			_, err = s.RetrieveNextBatch(context.Background(), InitialState())
			var searchErr *SearchError
			require.ErrorAs(t, err, &searchErr)
			assert.Equal(t, "a", searchErr.Query)
		})
	}
}

func TestRetrievalTerminates(t *testing.T) {
	for _, sizes := range [][]int{{0}, {0, 0, 0}, {1, 49, 50, 51}, {120, 0, 7}} {
		t.Run(fmt.Sprint(sizes), func(t *testing.T) {
			searcher := &fakeSearcher{results: map[string][]RawRecord{}}
			var queries []string
			want := 0
			for i, n := range sizes {
				q := fmt.Sprintf("q%d", i)
				queries = append(queries, q)
				searcher.results[q] = ids(q+"-", n)
				want += n
			}
			s, err := NewSearch(queries, searcher)
			require.NoError(t, err)
			defer s.Release()

			batches, final := drain(t, s)
			got := 0
			for _, b := range batches {
				got += len(b.Candidates)
			}
			assert.Equal(t, want, got)
			assert.Equal(t, len(queries), final.QueryIndex)
		})
	}
}

func TestScrapeID(t *testing.T) {
	assert.Equal(t, "123", ScrapeID(`<marc:controlfield tag="001">123</marc:controlfield>`))
	assert.Equal(t, "unknown", ScrapeID(`<controlfield tag="008">x</controlfield>`))
	assert.Equal(t, "unknown", ScrapeID(""))
}
