package matcher

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
)

// hit renders a MARCXML candidate with a control number, an ISBN and a title.
func hit(id, isbn, title string) candidates.RawRecord {
	var b strings.Builder
	b.WriteString(`<record xmlns="http://www.loc.gov/MARC21/slim"><leader>00000cam a2200000 i 4500</leader>`)
	fmt.Fprintf(&b, `<controlfield tag="001">%s</controlfield>`, id)
	if isbn != "" {
		fmt.Fprintf(&b, `<datafield tag="020" ind1=" " ind2=" "><subfield code="a">%s</subfield></datafield>`, isbn)
	}
	if title != "" {
		fmt.Fprintf(&b, `<datafield tag="245" ind1="1" ind2="0"><subfield code="a">%s</subfield></datafield>`, title)
	}
	b.WriteString(`</record>`)
	return candidates.RawRecord(b.String())
}

type page struct {
	total   int
	records []candidates.RawRecord
	next    int
}

func (p *page) Total() int { return p.total }

func (p *page) Records() iter.Seq[candidates.RawRecord] { return slices.Values(p.records) }

func (p *page) NextOffset() (int, bool) { return p.next, p.next > 0 }

func (p *page) Err() error { return nil }

type call struct {
	query string
	start int
	max   int
}

type fakeSearcher struct {
	results map[string][]candidates.RawRecord
	totals  map[string]int
	errs    map[string]error
	calls   []call
}

func (f *fakeSearcher) Search(_ context.Context, query string, start, max int) (candidates.Stream, error) {
	f.calls = append(f.calls, call{query: query, start: start, max: max})
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
	p := &page{total: total, records: all[from:to]}
	if max > 0 && to < len(all) {
		p.next = to + 1
	}
	return p, nil
}

func (f *fakeSearcher) queries() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c.query)
	}
	return out
}
