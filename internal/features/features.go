// Package features holds the record comparison features a matching strategy
// is built from. Every feature extracts a value from each record and compares
// the two values into a score in [-1.0, 1.0]; 0 means no evidence either way.
package features

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

// ErrUnknownFeature is returned when a strategy names a feature that is not registered.
var ErrUnknownFeature = errors.New("unknown feature")

// Value is the feature-specific data extracted from one record.
type Value interface {
	Empty() bool
}

// Feature is a named extract/compare pair.
type Feature interface {
	Name() string
	Extract(rec *marc.Record, label string) Value
	Compare(a, b Value) float64
}

// Feature names accepted by New and NewStrategy.
const (
	HostComponent                      = "hostComponent"
	ISBN                               = "isbn"
	ISSN                               = "issn"
	OtherStandardIdentifier            = "otherStandardIdentifier"
	Title                              = "title"
	TitleVersionOriginal               = "titleVersionOriginal"
	Authors                            = "authors"
	Publisher                          = "publisher"
	RecordType                         = "recordType"
	BibliographicLevel                 = "bibliographicLevel"
	PublicationTime                    = "publicationTime"
	PublicationTimeAllowConsYears      = "publicationTimeAllowConsYears"
	PublicationTimeAllowConsYearsMulti = "publicationTimeAllowConsYearsMulti"
	Language                           = "language"
	MediaType                          = "mediaType"
	MelindaID                          = "melindaId"
	AllSourceIDs                       = "allSourceIds"
	KVID                               = "kvId"
)

var registry = map[string]func() Feature{
	HostComponent:                      NewHostComponent,
	ISBN:                               NewISBN,
	ISSN:                               NewISSN,
	OtherStandardIdentifier:            NewOtherStandardIdentifier,
	Title:                              func() Feature { return NewTitle(DefaultTitleThreshold) },
	TitleVersionOriginal:               func() Feature { return NewTitleVersionOriginal(DefaultTitleThreshold) },
	Authors:                            func() Feature { return NewAuthors(DefaultNameThreshold) },
	Publisher:                          NewPublisher,
	RecordType:                         NewRecordType,
	BibliographicLevel:                 NewBibliographicLevel,
	PublicationTime:                    NewPublicationTime,
	PublicationTimeAllowConsYears:      NewPublicationTimeAllowConsYears,
	PublicationTimeAllowConsYearsMulti: NewPublicationTimeAllowConsYearsMulti,
	Language:                           NewLanguage,
	MediaType:                          NewMediaType,
	MelindaID:                          NewMelindaID,
	AllSourceIDs:                       NewAllSourceIDs,
	KVID:                               NewKVID,
}

// New builds the named feature.
func New(name string) (Feature, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, name)
	}
	return ctor(), nil
}

// NewStrategy builds features in the given order, failing on the first unknown name.
func NewStrategy(names []string) ([]Feature, error) {
	strategy := make([]Feature, 0, len(names))
	for _, name := range names {
		f, err := New(name)
		if err != nil {
			return nil, err
		}
		strategy = append(strategy, f)
	}
	return strategy, nil
}

// Names lists every registered feature, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Strings is a plain list of extracted values.
type Strings []string

func (s Strings) Empty() bool { return len(s) == 0 }

// values unwraps both sides as T, reporting false when either is absent,
// of another type, or empty.
func values[T Value](a, b Value) (T, T, bool) {
	va, okA := a.(T)
	vb, okB := b.(T)
	if !okA || !okB || va.Empty() || vb.Empty() {
		var zero T
		return zero, zero, false
	}
	return va, vb, true
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func intersect(a, b []string) []string {
	var shared []string
	for _, v := range a {
		if slices.Contains(b, v) && !slices.Contains(shared, v) {
			shared = append(shared, v)
		}
	}
	return shared
}

func subset(a, b []string) bool {
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	return true
}

// round2 trims float noise from additive penalties.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
