package candidates

import (
	"context"
	"fmt"
	"iter"
	"slices"
)

func marcXML(id string) RawRecord {
	return RawRecord(fmt.Sprintf(`<record xmlns="http://www.loc.gov/MARC21/slim"><leader>00000cam a2200000 i 4500</leader><controlfield tag="001">%s</controlfield><datafield tag="245" ind1="1" ind2="0"><subfield code="a">Title %s</subfield></datafield></record>`, id, id))
}

type fakeStream struct {
	total   int
	records []RawRecord
	next    int
	err     error
}

func (s *fakeStream) Total() int { return s.total }

func (s *fakeStream) Records() iter.Seq[RawRecord] { return slices.Values(s.records) }

func (s *fakeStream) NextOffset() (int, bool) { return s.next, s.next > 0 }

func (s *fakeStream) Err() error { return s.err }

type searchCall struct {
	query string
	start int
	max   int
}

// fakeSearcher serves fixed result sets, paged like an SRU server.
type fakeSearcher struct {
	results   map[string][]RawRecord
	totals    map[string]int
	errs      map[string]error
	streamErr map[string]error
	calls     []searchCall
}

func (f *fakeSearcher) Search(_ context.Context, query string, start, max int) (Stream, error) {
	f.calls = append(f.calls, searchCall{query: query, start: start, max: max})
	if err := f.errs[query]; err != nil {
		return nil, err
	}

	all := f.results[query]
	total := len(all)
	if t, ok := f.totals[query]; ok {
		total = t
	}

	from := min(start-1, len(all))
	to := min(from+max, len(all))
	stream := &fakeStream{total: total, records: all[from:to], err: f.streamErr[query]}
	if max > 0 && to < len(all) {
		stream.next = to + 1
	}
	return stream, nil
}
