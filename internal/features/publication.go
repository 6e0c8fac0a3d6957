package features

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

var (
	yearPattern      = regexp.MustCompile(`[0-9]{4}`)
	copyrightPattern = regexp.MustCompile(`^(cop\.?|c|©|p|℗)`)
	reprintPattern   = regexp.MustCompile(`Lisäpainokset:|Lisäpainos:`)
)

// Date1 returns 008/07-10 when it holds a usable year.
func Date1(rec *marc.Record) string {
	date := rec.ControlSlice("008", 7, 11)
	if strings.TrimSpace(date) == "" || date == "||||" {
		return ""
	}
	return date
}

type publicationTimeFeature struct {
	name             string
	allowConsecutive bool
}

// NewPublicationTime compares 008 Date1 exactly.
func NewPublicationTime() Feature {
	return publicationTimeFeature{name: PublicationTime}
}

// NewPublicationTimeAllowConsYears compares 008 Date1, accepting a one year difference.
func NewPublicationTimeAllowConsYears() Feature {
	return publicationTimeFeature{name: PublicationTimeAllowConsYears, allowConsecutive: true}
}

func (p publicationTimeFeature) Name() string { return p.name }

func (p publicationTimeFeature) Extract(rec *marc.Record, _ string) Value {
	if date := Date1(rec); date != "" {
		return Strings{date}
	}
	return Strings{}
}

func (p publicationTimeFeature) Compare(a, b Value) float64 {
	ya, yb, ok := values[Strings](a, b)
	if !ok {
		return 0
	}
	if ya[0] == yb[0] {
		return 0.1
	}
	if p.allowConsecutive && consecutive(ya[0], yb[0]) {
		return 0.1
	}
	return -1.0
}

// Years groups the publication years found in a record.
type Years struct {
	Normal    []string
	Copyright []string
	Reprint   []string
}

func (y Years) Empty() bool {
	return len(y.Normal) == 0 && len(y.Copyright) == 0 && len(y.Reprint) == 0
}

type publicationYearsFeature struct{}

// NewPublicationTimeAllowConsYearsMulti compares publication years gathered from
// 008, 260/264 $c and reprint notes in 500 $a.
func NewPublicationTimeAllowConsYearsMulti() Feature { return publicationYearsFeature{} }

func (publicationYearsFeature) Name() string { return PublicationTimeAllowConsYearsMulti }

func (publicationYearsFeature) Extract(rec *marc.Record, _ string) Value {
	var years Years
	if date := Date1(rec); date != "" {
		years.Normal = append(years.Normal, date)
	}

	for _, f := range rec.Fields {
		if f.Tag != "260" && f.Tag != "264" {
			continue
		}
		copyrightField := f.Tag == "264" && f.Indicator(2) == "4"
		for _, value := range f.SubfieldValues("c") {
			isCopyright := copyrightField || copyrightPattern.MatchString(value)
			year := yearPattern.FindString(value)
			if year == "" {
				continue
			}
			if isCopyright {
				years.Copyright = append(years.Copyright, year)
			} else {
				years.Normal = append(years.Normal, year)
			}
		}
	}

	for _, f := range rec.GetFields("500") {
		for _, note := range f.SubfieldValues("a") {
			if reprintPattern.MatchString(note) {
				years.Reprint = append(years.Reprint, yearPattern.FindAllString(note, -1)...)
			}
		}
	}

	return Years{
		Normal:    sortedUnique(years.Normal),
		Copyright: sortedUnique(years.Copyright),
		Reprint:   sortedUnique(years.Reprint),
	}
}

func (publicationYearsFeature) Compare(a, b Value) float64 {
	ya, yb, ok := values[Years](a, b)
	if !ok || len(ya.Normal) == 0 || len(yb.Normal) == 0 {
		return 0
	}
	firstA, firstB := ya.Normal[0], yb.Normal[0]
	if firstA == firstB || consecutive(firstA, firstB) {
		return 0.1
	}
	if len(intersect(ya.Normal, yb.Normal)) > 0 {
		return 0
	}
	if len(intersect(ya.Reprint, yb.Normal)) > 0 || len(intersect(yb.Reprint, ya.Normal)) > 0 {
		return 0
	}
	return -1.0
}

func consecutive(a, b string) bool {
	ya, errA := strconv.Atoi(a)
	yb, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return false
	}
	return ya-yb == 1 || yb-ya == 1
}

func sortedUnique(values []string) []string {
	out := unique(values)
	slices.Sort(out)
	return out
}
