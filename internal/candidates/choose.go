package candidates

import (
	"context"
	"log/slog"
)

// QueryTotal is the hit count of one query.
type QueryTotal struct {
	Query string `json:"query"`
	Total int    `json:"total"`
}

// CountTotals runs each query for its hit count only, one after another.
func CountTotals(ctx context.Context, searcher Searcher, queries []string) ([]QueryTotal, error) {
	totals := make([]QueryTotal, 0, len(queries))
	for _, q := range queries {
		stream, err := searcher.Search(ctx, q, 1, 0)
		if err != nil {
			return nil, &SearchError{Query: q, Err: err}
		}
		for range stream.Records() {
		}
		if err := stream.Err(); err != nil {
			return nil, &SearchError{Query: q, Err: err}
		}
		totals = append(totals, QueryTotal{Query: q, Total: stream.Total()})
	}
	return totals, nil
}

// ChooseQueries picks one of the alternative queries: the first with fewer
// hits than maxCandidates, else the first with any hits, else the first.
func ChooseQueries(ctx context.Context, searcher Searcher, queries []string, maxCandidates int) (string, error) {
	if len(queries) == 0 {
		return "", ErrEmptyQueryList
	}
	totals, err := CountTotals(ctx, searcher, queries)
	if err != nil {
		return "", err
	}

	for _, qt := range totals {
		if qt.Total > 0 && qt.Total < maxCandidates {
			slog.Debug("Chose alternate query", "query", qt.Query, "total", qt.Total)
			return qt.Query, nil
		}
	}
	for _, qt := range totals {
		if qt.Total > 0 {
			slog.Debug("No alternate query under the candidate limit", "query", qt.Query, "total", qt.Total)
			return qt.Query, nil
		}
	}
	return queries[0], nil
}

// HostResolver finds the union catalog id of the record a query finds.
type HostResolver struct {
	searcher Searcher
	convert  Converter
}

// NewHostResolver creates a resolver. A nil converter means MARCXML.
func NewHostResolver(searcher Searcher, convert Converter) *HostResolver {
	if convert == nil {
		convert = ConvertMARCXML
	}
	return &HostResolver{searcher: searcher, convert: convert}
}

// ResolveID returns the 001 of the last record found, or "" when the query
// finds nothing usable.
func (r *HostResolver) ResolveID(ctx context.Context, query string) (string, error) {
	stream, err := r.searcher.Search(ctx, query, 1, DefaultMaxRecordsPerRequest)
	if err != nil {
		return "", &SearchError{Query: query, Err: err}
	}
	id := ""
	for raw := range stream.Records() {
		rec, err := r.convert(raw)
		if err != nil {
			slog.Warn("Skipping unconvertible host record", "query", query, "error", err)
			continue
		}
		if recID := rec.ID(); recID != "" {
			id = recID
		}
	}
	if err := stream.Err(); err != nil {
		return "", &SearchError{Query: query, Err: err}
	}
	return id, nil
}
