package querylist

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/recordmatcher/internal/features"
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/lehigh-university-libraries/recordmatcher/internal/textnorm"
)

const (
	maxPhraseLength = 30
	minQueryLength  = 5
)

var (
	authorTags   = regexp.MustCompile(`^(100|110|111|700|710|711)$`)
	yearPattern  = regexp.MustCompile(`[0-9]{4}`)
	fourDigits   = regexp.MustCompile(`^[0-9]{4}$`)
	booleanWords = []string{"and", "or", "not", "prox"}
)

// clause is one index=value part of a conjunctive query.
type clause struct {
	value string
	text  string
}

func (c clause) String() string { return c.text }

type clauses []clause

func (cs clauses) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// okAlone reports whether the clauses are selective enough to be sent.
func (cs clauses) okAlone() bool {
	length := 0
	for _, c := range cs {
		length += utf8.RuneCountInString(c.value)
	}
	return length >= minQueryLength
}

// phraseClause searches value as a heading prefix, or as plain words when
// the phrase starts with a boolean operator the search service would parse.
func phraseClause(index, value string) (clause, bool) {
	phrase := textnorm.Truncate(textnorm.Phrase(value), maxPhraseLength)
	if phrase == "" {
		return clause{}, false
	}
	first, _, _ := strings.Cut(strings.ToLower(phrase), " ")
	text := index + `="^` + phrase + `*"`
	if slices.Contains(booleanWords, first) {
		text = index + `="` + phrase + `"`
	}
	return clause{value: phrase, text: text}, true
}

func titleClause(rec *marc.Record) (clause, bool) {
	fields := rec.GetFields("245")
	if len(fields) == 0 {
		return clause{}, false
	}
	return phraseClause("dc.title", strings.Join(fields[0].SubfieldValues("a", "b"), ""))
}

// authorOrPublisherClause uses the first author, or the first publisher when
// the record has no author.
func authorOrPublisherClause(rec *marc.Record) (clause, bool) {
	for _, f := range rec.Get(authorTags) {
		if name, ok := f.FirstSubfield("a"); ok {
			if c, ok := phraseClause("dc.author", name); ok {
				return c, true
			}
		}
	}
	if publisher := features.FirstPublisher(rec); publisher != "" {
		return phraseClause("dc.publisher", publisher)
	}
	return clause{}, false
}

func yearClause(rec *marc.Record) (clause, bool) {
	year := features.Date1(rec)
	if !fourDigits.MatchString(year) {
		year = ""
		for _, f := range rec.Fields {
			if f.Tag != "260" && f.Tag != "264" {
				continue
			}
			for _, value := range f.SubfieldValues("c") {
				if year = yearPattern.FindString(value); year != "" {
					break
				}
			}
			if year != "" {
				break
			}
		}
	}
	if year == "" {
		return clause{}, false
	}
	return clause{value: year, text: "dc.date=" + year}, true
}

// titleChain returns the title clause followed by the optional author (or
// publisher) and year clauses. It is empty when the record has no usable title.
func titleChain(rec *marc.Record, withYear bool) clauses {
	title, ok := titleClause(rec)
	if !ok {
		return nil
	}
	chain := clauses{title}
	if c, ok := authorOrPublisherClause(rec); ok {
		chain = append(chain, c)
	}
	if withYear {
		if c, ok := yearClause(rec); ok {
			chain = append(chain, c)
		}
	}
	return chain
}

// Title searches by title alone when it is selective enough, otherwise adds
// the first author or publisher and then the year until it is.
func Title(rec *marc.Record) []string {
	chain := titleChain(rec, true)
	for i := 1; i <= len(chain); i++ {
		if chain[:i].okAlone() {
			return []string{chain[:i].String()}
		}
	}
	return nil
}

// TitleAuthor searches by title and first author (or publisher).
func TitleAuthor(rec *marc.Record) []string {
	return single(titleChain(rec, false))
}

// TitleAuthorYear searches by title, first author (or publisher) and year.
func TitleAuthorYear(rec *marc.Record) []string {
	return single(titleChain(rec, true))
}

// TitleAuthorYearAlternates keeps every intermediate clause combination,
// most specific first.
func TitleAuthorYearAlternates(rec *marc.Record) []string {
	chain := titleChain(rec, true)
	var queries []string
	for i := 1; i <= len(chain); i++ {
		if chain[:i].okAlone() {
			queries = append(queries, chain[:i].String())
		}
	}
	slices.Reverse(queries)
	return queries
}

func single(chain clauses) []string {
	if len(chain) == 0 || !chain.okAlone() {
		return nil
	}
	return []string{chain.String()}
}
