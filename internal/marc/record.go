// Package marc is a small read-only model of MARC 21 bibliographic records.
package marc

import (
	"regexp"
	"slices"
	"strings"
)

// Subfield is a single coded value inside a data field.
type Subfield struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

// Field is either a control field (Value set) or a data field (indicators and subfields).
type Field struct {
	Tag       string     `json:"tag"`
	Ind1      string     `json:"ind1,omitempty"`
	Ind2      string     `json:"ind2,omitempty"`
	Value     string     `json:"value,omitempty"`
	Subfields []Subfield `json:"subfields,omitempty"`
}

// Record is an ordered list of tagged fields plus the leader.
type Record struct {
	Leader string  `json:"leader"`
	Fields []Field `json:"fields"`
}

// IsControl reports whether the field is a control field (00X).
func (f Field) IsControl() bool {
	return strings.HasPrefix(f.Tag, "00")
}

// SubfieldValues returns the non-empty values of the given codes in field order.
// With no codes every subfield value is returned.
func (f Field) SubfieldValues(codes ...string) []string {
	var values []string
	for _, sf := range f.Subfields {
		if sf.Value == "" {
			continue
		}
		if len(codes) == 0 || slices.Contains(codes, sf.Code) {
			values = append(values, sf.Value)
		}
	}
	return values
}

// FirstSubfield returns the first non-empty value of the given code.
func (f Field) FirstSubfield(code string) (string, bool) {
	for _, sf := range f.Subfields {
		if sf.Code == code && sf.Value != "" {
			return sf.Value, true
		}
	}
	return "", false
}

// CountSubfields counts subfields with the given code, empty ones included.
func (f Field) CountSubfields(code string) int {
	n := 0
	for _, sf := range f.Subfields {
		if sf.Code == code {
			n++
		}
	}
	return n
}

// Indicator returns ind1 (1) or ind2 (2) with blank normalized to a single space.
func (f Field) Indicator(n int) string {
	ind := f.Ind1
	if n == 2 {
		ind = f.Ind2
	}
	if ind == "" || ind == "#" || ind == "\\" {
		return " "
	}
	return ind
}

// Get returns every field whose tag matches the pattern, in record order.
func (r *Record) Get(pattern *regexp.Regexp) []Field {
	if r == nil {
		return nil
	}
	var fields []Field
	for _, f := range r.Fields {
		if pattern.MatchString(f.Tag) {
			fields = append(fields, f)
		}
	}
	return fields
}

// GetFields returns every field with exactly the given tag. Optional filters
// keep only fields carrying a subfield with the same code and value.
func (r *Record) GetFields(tag string, filters ...Subfield) []Field {
	if r == nil {
		return nil
	}
	var fields []Field
	for _, f := range r.Fields {
		if f.Tag != tag || !hasSubfields(f, filters) {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// ControlValue returns the value of the first control field with the tag.
func (r *Record) ControlValue(tag string) string {
	if r == nil {
		return ""
	}
	for _, f := range r.Fields {
		if f.Tag == tag {
			return f.Value
		}
	}
	return ""
}

// ControlSlice returns runes [start, end) of a control field, or "" when the
// field is missing or too short.
func (r *Record) ControlSlice(tag string, start, end int) string {
	value := []rune(r.ControlValue(tag))
	if start < 0 || end > len(value) || start >= end {
		return ""
	}
	return string(value[start:end])
}

// LeaderAt returns the leader character at position i, or "" if out of range.
func (r *Record) LeaderAt(i int) string {
	if r == nil || i < 0 || i >= len(r.Leader) {
		return ""
	}
	return r.Leader[i : i+1]
}

// ID returns the record's own control number (001).
func (r *Record) ID() string {
	return strings.TrimSpace(r.ControlValue("001"))
}

func hasSubfields(f Field, filters []Subfield) bool {
	for _, want := range filters {
		found := false
		for _, sf := range f.Subfields {
			if sf.Code == want.Code && sf.Value == want.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
