package features

import (
	"regexp"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

// MelindaPrefix is the source code the union catalog uses for its own record ids.
const MelindaPrefix = "FI-MELINDA"

var melindaIDPattern = regexp.MustCompile(`^(\(FI-MELINDA\)|FCC)([0-9]{9})$`)

// MelindaIDs returns the unique union catalog ids found in 035 $a and $z.
func MelindaIDs(rec *marc.Record) []string {
	var ids []string
	for _, f := range rec.GetFields("035") {
		for _, value := range f.SubfieldValues("a", "z") {
			if m := melindaIDPattern.FindStringSubmatch(strings.TrimSpace(value)); m != nil {
				ids = append(ids, m[2])
			}
		}
	}
	return unique(ids)
}

// CatalogIDs is the union catalog identity of a record.
type CatalogIDs struct {
	Native     bool
	ID         string
	Historical []string
}

func (c CatalogIDs) Empty() bool { return !c.Native && len(c.Historical) == 0 }

type melindaIDFeature struct{}

// NewMelindaID matches records sharing a union catalog id, directly (003+001)
// or through ids of merged records kept in 035.
func NewMelindaID() Feature { return melindaIDFeature{} }

func (melindaIDFeature) Name() string { return MelindaID }

func (melindaIDFeature) Extract(rec *marc.Record, _ string) Value {
	ids := CatalogIDs{Historical: MelindaIDs(rec)}
	if strings.TrimSpace(rec.ControlValue("003")) == MelindaPrefix && rec.ID() != "" {
		ids.Native = true
		ids.ID = rec.ID()
	}
	return ids
}

func (melindaIDFeature) Compare(a, b Value) float64 {
	ca, cb, ok := values[CatalogIDs](a, b)
	if !ok {
		return 0
	}
	switch {
	case ca.Native && cb.Native && ca.ID == cb.ID:
		return 1.0
	case ca.Native && slices.Contains(cb.Historical, ca.ID):
		return 1.0
	case cb.Native && slices.Contains(ca.Historical, cb.ID):
		return 1.0
	case len(intersect(ca.Historical, cb.Historical)) > 0:
		return 1.0
	}
	return 0
}

// SourceID is a local system record id (SID $c) and the code of its database (SID $b).
type SourceID struct {
	DB string
	ID string
}

// SourceIDList is the extracted value of the source id features.
type SourceIDList []SourceID

func (l SourceIDList) Empty() bool { return len(l) == 0 }

// SourceIDs returns SID fields carrying exactly one $b and one $c.
func SourceIDs(rec *marc.Record) SourceIDList {
	var ids SourceIDList
	for _, f := range rec.GetFields("SID") {
		if f.CountSubfields("b") != 1 || f.CountSubfields("c") != 1 {
			continue
		}
		db, okB := f.FirstSubfield("b")
		id, okC := f.FirstSubfield("c")
		if okB && okC {
			ids = append(ids, SourceID{DB: db, ID: id})
		}
	}
	return ids
}

type allSourceIDsFeature struct{}

// NewAllSourceIDs compares local system ids. Two ids from the same database
// that disagree are conclusive against a match.
func NewAllSourceIDs() Feature { return allSourceIDsFeature{} }

func (allSourceIDsFeature) Name() string { return AllSourceIDs }

func (allSourceIDsFeature) Extract(rec *marc.Record, _ string) Value {
	return SourceIDs(rec)
}

func (allSourceIDsFeature) Compare(a, b Value) float64 {
	sa, sb, ok := values[SourceIDList](a, b)
	if !ok {
		return 0
	}
	matched := false
	for _, x := range sa {
		for _, y := range sb {
			if x.DB != y.DB {
				continue
			}
			if x.ID != y.ID {
				return -1.0
			}
			matched = true
		}
	}
	if matched {
		return 1.0
	}
	return 0
}

type sourceDBFeature struct {
	name string
	db   string
}

// NewKVID compares the id from the national repository database (SID $b FI-KV).
func NewKVID() Feature { return sourceDBFeature{name: KVID, db: "FI-KV"} }

func (s sourceDBFeature) Name() string { return s.name }

func (s sourceDBFeature) Extract(rec *marc.Record, _ string) Value {
	fields := rec.GetFields("SID", marc.Subfield{Code: "b", Value: s.db})
	if len(fields) == 0 {
		return Strings{}
	}
	return Strings(fields[0].SubfieldValues("c"))
}

func (s sourceDBFeature) Compare(a, b Value) float64 {
	va, vb, ok := values[Strings](a, b)
	if !ok {
		return 0
	}
	if va[0] == vb[0] {
		return 1.0
	}
	return -1.0
}
