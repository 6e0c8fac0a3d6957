package features

import (
	"math"
	"slices"

	"github.com/lehigh-university-libraries/recordmatcher/internal/identifier"
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

const (
	identifierMatchScore = 0.75
	identifierDecay      = 0.8
	looseISBNScore       = 0.5
	invalidMatchScore    = 0.2
)

// Identifiers splits extracted identifiers by whether they came from a
// valid position and passed the normalizer.
type Identifiers struct {
	Valid   []string
	Invalid []string
}

func (i Identifiers) Empty() bool { return len(i.Valid) == 0 && len(i.Invalid) == 0 }

// decayedMatch credits a valid match and discounts it once per comparable
// identifier pair that did not match.
func decayedMatch(a, b []string) float64 {
	shared := len(intersect(a, b))
	unmatched := min(len(a), len(b)) - shared
	if unmatched < 0 {
		unmatched = 0
	}
	return identifierMatchScore * math.Pow(identifierDecay, float64(unmatched))
}

func crossMatch(a, b Identifiers) bool {
	return len(intersect(a.Valid, b.Invalid)) > 0 || len(intersect(b.Valid, a.Invalid)) > 0
}

type isbnFeature struct{}

// NewISBN compares 020 ISBNs of host records, or the 773 $z ISBN of the host
// item for component parts.
func NewISBN() Feature { return isbnFeature{} }

func (isbnFeature) Name() string { return ISBN }

func (isbnFeature) Extract(rec *marc.Record, _ string) Value {
	var ids Identifiers
	if links := rec.GetFields("773"); len(links) > 0 {
		for _, f := range links {
			for _, raw := range f.SubfieldValues("z") {
				addIdentifier(&ids, raw, true, identifier.ISBN)
			}
		}
		return ids.dedupe()
	}
	for _, f := range rec.GetFields("020") {
		for _, sf := range f.Subfields {
			switch sf.Code {
			case "a":
				addIdentifier(&ids, sf.Value, true, identifier.ISBN)
			case "z":
				addIdentifier(&ids, sf.Value, false, identifier.ISBN)
			}
		}
	}
	return ids.dedupe()
}

func (isbnFeature) Compare(a, b Value) float64 {
	ia, ib, ok := values[Identifiers](a, b)
	if !ok {
		return 0
	}
	if len(intersect(ia.Valid, ib.Valid)) > 0 {
		return decayedMatch(ia.Valid, ib.Valid)
	}
	if crossMatch(ia, ib) {
		return identifierMatchScore
	}
	for _, v := range intersect(ia.Invalid, ib.Invalid) {
		if identifier.LooksLikeISBN(v) {
			return looseISBNScore
		}
	}
	if len(ia.Valid) == 0 || len(ib.Valid) == 0 {
		return 0
	}
	return -identifierMatchScore
}

// standardIdentifier compares identifiers whose subfield code tells whether
// they are valid (e.g. $a) or cancelled/incorrect (e.g. $z, $y).
type standardIdentifier struct {
	name         string
	tag          string
	validCodes   []string
	invalidCodes []string
	normalize    identifier.Normalizer
}

// NewISSN compares 022 ISSNs.
func NewISSN() Feature {
	return standardIdentifier{
		name:         ISSN,
		tag:          "022",
		validCodes:   []string{"a"},
		invalidCodes: []string{"z", "y"},
		normalize:    identifier.ISSN,
	}
}

// NewOtherStandardIdentifier compares 024 identifiers (ISMN, EAN, UPC and so on).
func NewOtherStandardIdentifier() Feature {
	return standardIdentifier{
		name:         OtherStandardIdentifier,
		tag:          "024",
		validCodes:   []string{"a"},
		invalidCodes: []string{"z"},
		normalize:    identifier.StripHyphens,
	}
}

func (s standardIdentifier) Name() string { return s.name }

func (s standardIdentifier) Extract(rec *marc.Record, _ string) Value {
	var ids Identifiers
	for _, f := range rec.GetFields(s.tag) {
		for _, sf := range f.Subfields {
			switch {
			case slices.Contains(s.validCodes, sf.Code):
				addIdentifier(&ids, sf.Value, true, s.normalize)
			case slices.Contains(s.invalidCodes, sf.Code):
				addIdentifier(&ids, sf.Value, false, s.normalize)
			}
		}
	}
	return ids.dedupe()
}

func (s standardIdentifier) Compare(a, b Value) float64 {
	ia, ib, ok := values[Identifiers](a, b)
	if !ok {
		return 0
	}
	if len(intersect(ia.Valid, ib.Valid)) > 0 {
		return decayedMatch(ia.Valid, ib.Valid)
	}
	if len(ia.Valid) > 0 && len(ib.Valid) > 0 {
		return -identifierMatchScore
	}
	if crossMatch(ia, ib) || len(intersect(ia.Invalid, ib.Invalid)) > 0 {
		return invalidMatchScore
	}
	return 0
}

func addIdentifier(ids *Identifiers, raw string, validPosition bool, normalize identifier.Normalizer) {
	value, valid := normalize(raw)
	if value == "" {
		return
	}
	if validPosition && valid {
		ids.Valid = append(ids.Valid, value)
		return
	}
	ids.Invalid = append(ids.Invalid, value)
}

func (i Identifiers) dedupe() Identifiers {
	return Identifiers{Valid: unique(i.Valid), Invalid: unique(i.Invalid)}
}
