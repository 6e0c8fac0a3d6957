package features

import (
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/lehigh-university-libraries/recordmatcher/internal/textnorm"
)

// Default edit-distance thresholds, as a percentage of the longer string.
const (
	DefaultTitleThreshold = 10.0
	DefaultNameThreshold  = 10.0
)

type titleFeature struct {
	name      string
	codes     []string
	threshold float64
}

// NewTitle compares 245 $a $b $n $p after folding away case, diacritics and punctuation.
func NewTitle(threshold float64) Feature {
	return titleFeature{name: Title, codes: []string{"a", "b", "n", "p"}, threshold: threshold}
}

// NewTitleVersionOriginal compares only the 245 $a $b part of the title.
func NewTitleVersionOriginal(threshold float64) Feature {
	return titleFeature{name: TitleVersionOriginal, codes: []string{"a", "b"}, threshold: threshold}
}

func (t titleFeature) Name() string { return t.name }

func (t titleFeature) Extract(rec *marc.Record, label string) Value {
	fields := rec.GetFields("245")
	if len(fields) == 0 {
		return Strings{}
	}
	title := textnorm.Compact(strings.Join(fields[0].SubfieldValues(t.codes...), ""))
	slog.Debug("Extracted title", "feature", t.name, "label", label, "title", title)
	if title == "" {
		return Strings{}
	}
	return Strings{title}
}

func (t titleFeature) Compare(a, b Value) float64 {
	ta, tb, ok := values[Strings](a, b)
	if !ok {
		return 0
	}
	if ta[0] == tb[0] {
		return 0.5
	}
	if textnorm.DistancePercentage(ta[0], tb[0]) <= t.threshold {
		return 0.3
	}
	return -0.5
}

type publisherFeature struct{}

// NewPublisher compares the first publisher name from 260 $b or 264 (ind2=1) $b.
func NewPublisher() Feature { return publisherFeature{} }

func (publisherFeature) Name() string { return Publisher }

func (publisherFeature) Extract(rec *marc.Record, _ string) Value {
	if name := FirstPublisher(rec); name != "" {
		if compact := textnorm.Compact(name); compact != "" {
			return Strings{compact}
		}
	}
	return Strings{}
}

func (publisherFeature) Compare(a, b Value) float64 {
	pa, pb, ok := values[Strings](a, b)
	if !ok {
		return 0
	}
	if pa[0] == pb[0] {
		return 0.1
	}
	if textnorm.DistancePercentage(pa[0], pb[0]) <= DefaultNameThreshold {
		return 0.05
	}
	return -0.1
}

// FirstPublisher returns the raw first publisher name of the record.
func FirstPublisher(rec *marc.Record) string {
	for _, f := range rec.Fields {
		if f.Tag != "260" && !(f.Tag == "264" && f.Indicator(2) == "1") {
			continue
		}
		if name, ok := f.FirstSubfield("b"); ok {
			return name
		}
	}
	return ""
}
