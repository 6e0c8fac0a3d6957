package features

import (
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/lehigh-university-libraries/recordmatcher/internal/textnorm"
)

// Author is one 100/700 entry: folded $a name and the $0 authority id.
type Author struct {
	Name string
	ID   string
}

// AuthorList is the extracted value of the authors feature.
type AuthorList []Author

func (l AuthorList) Empty() bool { return len(l) == 0 }

type authorsFeature struct {
	threshold float64
}

// NewAuthors compares personal names from 100 and 700 fields.
func NewAuthors(threshold float64) Feature { return authorsFeature{threshold: threshold} }

func (authorsFeature) Name() string { return Authors }

func (authorsFeature) Extract(rec *marc.Record, _ string) Value {
	var authors AuthorList
	for _, f := range rec.Fields {
		if f.Tag != "100" && f.Tag != "700" {
			continue
		}
		var a Author
		if name, ok := f.FirstSubfield("a"); ok {
			a.Name = textnorm.Compact(name)
		}
		if id, ok := f.FirstSubfield("0"); ok {
			a.ID = id
		}
		if a.Name != "" || a.ID != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

func (f authorsFeature) Compare(a, b Value) float64 {
	la, lb, ok := values[AuthorList](a, b)
	if !ok {
		return 0
	}
	maxAuthors := float64(max(len(la), len(lb)))

	matchingIDs := countMatches(la.ids(), lb.ids(), func(x, y string) bool { return x == y })
	if maxAuthors >= 3 && matchingIDs >= 3 {
		return 0.3
	}
	matchingNames := countMatches(la.names(), lb.names(), func(x, y string) bool {
		return x == y || textnorm.DistancePercentage(x, y) <= f.threshold
	})

	points := float64(matchingIDs)/maxAuthors*0.3 + float64(matchingNames)/maxAuthors*0.2
	return min(points, 0.2)
}

func (l AuthorList) ids() []string {
	var ids []string
	for _, a := range l {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (l AuthorList) names() []string {
	var names []string
	for _, a := range l {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// countMatches pairs values one to one, so a repeated name cannot be counted twice.
// The three-ID rule in Compare therefore needs three distinct shared IDs.
func countMatches(a, b []string, equal func(x, y string) bool) int {
	used := make([]bool, len(b))
	matches := 0
	for _, x := range a {
		for j, y := range b {
			if !used[j] && equal(x, y) {
				used[j] = true
				matches++
				break
			}
		}
	}
	return matches
}
