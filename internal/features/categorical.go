package features

import (
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

// categorical compares a single coded value: equal scores match, anything else mismatch.
type categorical struct {
	name     string
	extract  func(*marc.Record) string
	match    float64
	mismatch float64
}

func (c categorical) Name() string { return c.name }

func (c categorical) Extract(rec *marc.Record, _ string) Value {
	if v := c.extract(rec); v != "" && v != " " {
		return Strings{v}
	}
	return Strings{}
}

func (c categorical) Compare(a, b Value) float64 {
	va, vb, ok := values[Strings](a, b)
	if !ok {
		return 0
	}
	if va[0] == vb[0] {
		return c.match
	}
	return c.mismatch
}

// NewRecordType compares leader/06.
func NewRecordType() Feature {
	return categorical{
		name:     RecordType,
		extract:  func(r *marc.Record) string { return r.LeaderAt(6) },
		match:    0.1,
		mismatch: -0.5,
	}
}

// NewBibliographicLevel compares leader/07.
func NewBibliographicLevel() Feature {
	return categorical{
		name:     BibliographicLevel,
		extract:  func(r *marc.Record) string { return r.LeaderAt(7) },
		match:    0.1,
		mismatch: -0.2,
	}
}

// NewHostComponent tells host records from component parts (records with a 773 link).
// Agreement carries no weight; disagreement rules the candidate out.
func NewHostComponent() Feature {
	return categorical{
		name:     HostComponent,
		extract:  RecordKind,
		match:    0.0,
		mismatch: -1.0,
	}
}

// RecordKind returns "component" for records linking to a host item, otherwise "host".
func RecordKind(r *marc.Record) string {
	if len(r.GetFields("773")) > 0 {
		return "component"
	}
	return "host"
}

type mediaTypeFeature struct{}

// NewMediaType compares RDA media type codes (337 $b with $2 rdamedia).
func NewMediaType() Feature { return mediaTypeFeature{} }

func (mediaTypeFeature) Name() string { return MediaType }

func (mediaTypeFeature) Extract(rec *marc.Record, _ string) Value {
	var codes []string
	for _, f := range rec.GetFields("337", marc.Subfield{Code: "2", Value: "rdamedia"}) {
		codes = append(codes, f.SubfieldValues("b")...)
	}
	return Strings(unique(codes))
}

func (mediaTypeFeature) Compare(a, b Value) float64 {
	ma, mb, ok := values[Strings](a, b)
	if !ok {
		return 0
	}
	if subset(ma, mb) || subset(mb, ma) {
		return 0.1
	}
	return -1.0
}
