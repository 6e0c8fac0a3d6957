// Package querylist turns a bibliographic record into search queries for the
// union catalog's SRU interface.
package querylist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

// SearchType names one query extractor.
type SearchType string

const (
	BibStandardIdentifiers       SearchType = "bibStandardIdentifiers"
	BibHostComponents            SearchType = "bibHostComponents"
	BibTitle                     SearchType = "bibTitle"
	BibTitleAuthor               SearchType = "bibTitleAuthor"
	BibTitleAuthorYear           SearchType = "bibTitleAuthorYear"
	BibTitleAuthorYearAlternates SearchType = "bibTitleAuthorYearAlternates"
	BibMelindaIDs                SearchType = "bibMelindaIds"
	BibSourceIDs                 SearchType = "bibSourceIds"
	ComponentHostIDMelinda       SearchType = "componentHostIdMelinda"
	ComponentHostIDOtherSource   SearchType = "componentHostIdOtherSource"
)

var (
	// ErrUnknownSearchType is returned for a search type missing from the registry.
	ErrUnknownSearchType = errors.New("unknown search type")
	// ErrResolverRequired is returned when a search type needs catalog lookups
	// and the generator has no resolver.
	ErrResolverRequired = errors.New("search type needs a host resolver")
)

// HostResolver looks up the id of the record a query finds in the union catalog.
// An empty id with a nil error means nothing was found.
type HostResolver interface {
	ResolveID(ctx context.Context, query string) (string, error)
}

// Result is the query list for one record.
// Alternates lists are ordered from the most specific query to the least
// specific; callers pick one of them instead of running all.
type Result struct {
	Queries    []string `json:"queries"`
	Alternates bool     `json:"alternates,omitempty"`
}

type extractor func(ctx context.Context, g *Generator, rec *marc.Record) ([]string, error)

func pure(fn func(*marc.Record) []string) extractor {
	return func(_ context.Context, _ *Generator, rec *marc.Record) ([]string, error) {
		return fn(rec), nil
	}
}

var registry = map[SearchType]extractor{
	BibStandardIdentifiers:       pure(StandardIdentifiers),
	BibHostComponents:            pure(HostComponents),
	BibTitle:                     pure(Title),
	BibTitleAuthor:               pure(TitleAuthor),
	BibTitleAuthorYear:           pure(TitleAuthorYear),
	BibTitleAuthorYearAlternates: pure(TitleAuthorYearAlternates),
	BibMelindaIDs:                pure(MelindaIDs),
	BibSourceIDs:                 pure(SourceIDs),
	ComponentHostIDMelinda:       pure(HostIDMelinda),
	ComponentHostIDOtherSource: func(ctx context.Context, g *Generator, rec *marc.Record) ([]string, error) {
		return g.hostIDOtherSource(ctx, rec)
	},
}

// ParseSearchTypes validates names against the registry.
func ParseSearchTypes(names []string) ([]SearchType, error) {
	types := make([]SearchType, 0, len(names))
	for _, name := range names {
		t := SearchType(strings.TrimSpace(name))
		if _, ok := registry[t]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSearchType, name)
		}
		types = append(types, t)
	}
	return types, nil
}

// IsAlternates reports whether the search type yields alternative queries.
func (t SearchType) IsAlternates() bool {
	return t == BibTitleAuthorYearAlternates
}

// Generator builds query lists. The zero value has no resolver.
type Generator struct {
	resolver HostResolver
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithResolver enables search types that need catalog lookups.
func WithResolver(r HostResolver) Option {
	return func(g *Generator) { g.resolver = r }
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs every search type in order and concatenates their queries.
// The result is marked as alternates when any of the types is.
func (g *Generator) Generate(ctx context.Context, rec *marc.Record, types []SearchType) (Result, error) {
	var res Result
	for _, t := range types {
		extract, ok := registry[t]
		if !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownSearchType, t)
		}
		queries, err := extract(ctx, g, rec)
		if err != nil {
			return Result{}, fmt.Errorf("failed to generate %s queries: %w", t, err)
		}
		g.logger.Debug("Generated queries", "search_type", t, "count", len(queries))
		res.Queries = append(res.Queries, queries...)
		res.Alternates = res.Alternates || t.IsAlternates()
	}
	return res, nil
}

// Generate builds queries for search types that need no catalog lookups.
func Generate(rec *marc.Record, types []SearchType) ([]string, error) {
	res, err := New().Generate(context.Background(), rec, types)
	if err != nil {
		return nil, err
	}
	return res.Queries, nil
}

// GenerateAlternates builds the title, author and year alternatives for rec.
func GenerateAlternates(rec *marc.Record) Result {
	return Result{Queries: TitleAuthorYearAlternates(rec), Alternates: true}
}

// ToQueries combines identifiers two at a time with OR. Identifiers holding
// a slash are quoted.
func ToQueries(identifiers []string, index string) []string {
	queries := make([]string, 0, (len(identifiers)+1)/2)
	for i := 0; i < len(identifiers); i += 2 {
		q := index + "=" + quote(identifiers[i])
		if i+1 < len(identifiers) {
			q += " or " + index + "=" + quote(identifiers[i+1])
		}
		queries = append(queries, q)
	}
	return queries
}

func quote(value string) string {
	if strings.Contains(value, "/") {
		return `"` + value + `"`
	}
	return value
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
