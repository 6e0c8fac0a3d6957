// Package identifier normalizes standard identifiers (ISBN, ISSN and friends)
// before they are compared or queried.
package identifier

import (
	"regexp"
	"strings"
)

// Normalizer returns the canonical form of a raw identifier and whether it is
// well formed for its scheme.
type Normalizer func(raw string) (value string, valid bool)

var (
	isbn10Pattern    = regexp.MustCompile(`^[0-9]{9}[0-9X]$`)
	isbn13Pattern    = regexp.MustCompile(`^97[89][0-9]{10}$`)
	issnPattern      = regexp.MustCompile(`^[0-9]{7}[0-9X]$`)
	looksLikeISBN    = regexp.MustCompile(`^(([0-9]-?){9}[0-9X]|([0-9]-?){12}[0-9])$`)
	queryablePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// Clean takes the leading token of a raw subfield value (dropping qualifiers
// such as "(nid.)"), removes hyphens and upper-cases it.
func Clean(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(fields[0], "-", ""))
}

// StripHyphens is the normalizer for schemes without a format check.
func StripHyphens(raw string) (string, bool) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), "-", "")
	return value, value != ""
}

// ISBN normalizes to the 13-digit form. ISBN-10 values are converted when
// their check digit is correct and reported invalid otherwise. ISBN-13 values
// are accepted on layout alone.
func ISBN(raw string) (string, bool) {
	value := Clean(raw)
	switch {
	case isbn13Pattern.MatchString(value):
		return value, true
	case isbn10Pattern.MatchString(value):
		if isbn10CheckDigit(value[:9]) == value[9] {
			return toISBN13(value[:9]), true
		}
		return value, false
	default:
		return strings.ReplaceAll(strings.TrimSpace(raw), "-", ""), false
	}
}

// ISSN normalizes to eight characters without the hyphen.
func ISSN(raw string) (string, bool) {
	value := Clean(raw)
	if issnPattern.MatchString(value) {
		return value, true
	}
	return strings.ReplaceAll(strings.TrimSpace(raw), "-", ""), false
}

// LooksLikeISBN reports whether value has the digit layout of an ISBN-10 or ISBN-13.
func LooksLikeISBN(value string) bool {
	return looksLikeISBN.MatchString(strings.ToUpper(value))
}

// Queryable reports whether value only contains letters, digits and hyphens,
// which is all the search service accepts for identifier indexes.
func Queryable(value string) bool {
	return queryablePattern.MatchString(value)
}

func isbn10CheckDigit(digits string) byte {
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return 'X'
	}
	return byte('0' + check)
}

func isbn13CheckDigit(digits string) byte {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(digits[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return byte('0' + (10-sum%10)%10)
}

func toISBN13(nine string) string {
	body := "978" + nine
	return body + string(isbn13CheckDigit(body))
}
