package features

import (
	"regexp"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

var languageCodePattern = regexp.MustCompile(`^[a-z]{3}$`)

// individual Sami languages; "smi" is the collective code
var samiLanguages = []string{"sma", "sme", "smj", "smn", "sms"}

// LanguageField is one 041 field reduced to what the comparison needs.
type LanguageField struct {
	Ind1   string
	Source string
	Codes  []string
}

// LanguageData holds 008/35-37 and the coded 041 languages of a record.
type LanguageData struct {
	Code008 string
	Fields  []LanguageField
}

func (l LanguageData) Empty() bool {
	return noLanguageData(l.Code008) && len(l.Fields) == 0
}

type languageFeature struct{}

// NewLanguage compares 008 and 041 language codes. The result is kept within [-1.0, 0.1].
func NewLanguage() Feature { return languageFeature{} }

func (languageFeature) Name() string { return Language }

func (languageFeature) Extract(rec *marc.Record, _ string) Value {
	data := LanguageData{Code008: rec.ControlSlice("008", 35, 38)}
	for _, f := range rec.GetFields("041") {
		lf := LanguageField{Ind1: f.Indicator(1), Source: languageSource(f)}
		for _, value := range f.SubfieldValues("a", "d") {
			code := strings.ToLower(strings.TrimSpace(value))
			if !languageCodePattern.MatchString(code) || code == "zxx" {
				continue
			}
			lf.Codes = append(lf.Codes, code)
		}
		lf.Codes = withCollectiveSami(sortedUnique(lf.Codes))
		data.Fields = append(data.Fields, lf)
	}
	return data
}

func (languageFeature) Compare(a, b Value) float64 {
	la, lb, ok := values[LanguageData](a, b)
	if !ok {
		return 0
	}
	score := compare008(la.Code008, lb.Code008) + compare041(la.Fields, lb.Fields)
	return max(-1.0, min(0.1, round2(score)))
}

func compare008(a, b string) float64 {
	if noLanguageData(a) || noLanguageData(b) {
		return 0
	}
	if a == b {
		return 0.05
	}
	return -0.2
}

func compare041(a, b []LanguageField) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) == 1 && len(b) == 1 {
		if a[0].Source != b[0].Source {
			return -1.0
		}
		return indicatorPenalty(a[0].Ind1, b[0].Ind1) + compareLanguageCodes(a[0].Codes, b[0].Codes)
	}
	return compareLanguageCodes(allCodes(a), allCodes(b))
}

func compareLanguageCodes(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	if slices.Contains(a, "smi") && slices.Contains(b, "smi") {
		aSami, bSami := hasAny(a, samiLanguages), hasAny(b, samiLanguages)
		switch {
		case aSami && !bSami:
			a = without(a, samiLanguages)
		case bSami && !aSami:
			b = without(b, samiLanguages)
		}
	}

	if slices.Equal(a, b) {
		return 0.1
	}
	if len(a) == 1 && a[0] == "mul" && len(b) > 1 {
		return 0
	}
	if len(b) == 1 && b[0] == "mul" && len(a) > 1 {
		return 0
	}

	shared := intersect(a, b)
	if len(shared) == 0 {
		aOnly, bOnly := without(a, shared), without(b, shared)
		if len(aOnly) == 1 && len(bOnly) == 1 && (aOnly[0] == "und" || bOnly[0] == "und") {
			return 0
		}
		return -1.0
	}

	maxValues := max(len(a), len(b))
	possible := min(len(a), len(b))
	missing := maxValues - possible
	mismatches := possible - len(shared)
	return round2(0.1 - 0.05*float64(mismatches) - 0.02*float64(missing))
}

func indicatorPenalty(a, b string) float64 {
	if a == " " || b == " " || a == b {
		return 0
	}
	return -0.1
}

func languageSource(f marc.Field) string {
	source, ok := f.FirstSubfield("2")
	if !ok {
		return ""
	}
	switch {
	case strings.Contains(source, "639-2"), strings.Contains(source, "639 2"):
		return "ISO 639-2"
	case strings.Contains(source, "639-3"), strings.Contains(source, "639 3"):
		return "ISO 639-3"
	}
	return source
}

func noLanguageData(code string) bool {
	return code == "" || code == "   " || code == "|||" || code == "und"
}

// withCollectiveSami adds "smi" next to any individual Sami language code.
func withCollectiveSami(codes []string) []string {
	if hasAny(codes, samiLanguages) && !slices.Contains(codes, "smi") {
		codes = append(codes, "smi")
		slices.Sort(codes)
	}
	return codes
}

func allCodes(fields []LanguageField) []string {
	var codes []string
	for _, f := range fields {
		codes = append(codes, f.Codes...)
	}
	return sortedUnique(codes)
}

func hasAny(values, candidates []string) bool {
	return slices.ContainsFunc(values, func(v string) bool { return slices.Contains(candidates, v) })
}

func without(values, drop []string) []string {
	var out []string
	for _, v := range values {
		if !slices.Contains(drop, v) {
			out = append(out, v)
		}
	}
	return out
}
