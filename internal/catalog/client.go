// Package catalog is an SRU client for the union catalog's search interface.
package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultVersion      = "2.0"
	DefaultRecordSchema = "marcxml"
)

// Client runs searchRetrieve requests. It implements candidates.Searcher.
type Client struct {
	BaseURL      string
	Version      string
	RecordSchema string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRecordSchema sets the requested record schema.
func WithRecordSchema(schema string) Option {
	return func(c *Client) {
		if schema != "" {
			c.RecordSchema = schema
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new SRU client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:      strings.TrimRight(baseURL, "?"),
		Version:      DefaultVersion,
		RecordSchema: DefaultRecordSchema,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Diagnostic is an SRU diagnostic returned instead of results.
type Diagnostic struct {
	URI     string `xml:"uri"`
	Details string `xml:"details"`
	Message string `xml:"message"`
}

func (d *Diagnostic) Error() string {
	msg := fmt.Sprintf("SRU diagnostic %s", d.URI)
	if d.Message != "" {
		msg += ": " + d.Message
	}
	if d.Details != "" {
		msg += " (" + d.Details + ")"
	}
	return msg
}

type searchRetrieveResponse struct {
	XMLName            xml.Name     `xml:"searchRetrieveResponse"`
	NumberOfRecords    int          `xml:"numberOfRecords"`
	Records            []sruRecord  `xml:"records>record"`
	NextRecordPosition int          `xml:"nextRecordPosition"`
	Diagnostics        []Diagnostic `xml:"diagnostics>diagnostic"`
}

type sruRecord struct {
	Escaping string  `xml:"recordXMLEscaping"`
	Packing  string  `xml:"recordPacking"`
	Data     sruData `xml:"recordData"`
}

type sruData struct {
	Inner string `xml:",innerxml"`
	Text  string `xml:",chardata"`
}

func (r sruRecord) payload() candidates.RawRecord {
	if r.Escaping == "string" || r.Packing == "string" {
		return candidates.RawRecord(strings.TrimSpace(r.Data.Text))
	}
	return candidates.RawRecord(strings.TrimSpace(r.Data.Inner))
}

// page is one searchRetrieve response.
type page struct {
	total   int
	records []candidates.RawRecord
	next    int
}

func (p *page) Total() int { return p.total }

func (p *page) Records() iter.Seq[candidates.RawRecord] { return slices.Values(p.records) }

func (p *page) NextOffset() (int, bool) { return p.next, p.next > 0 }

func (p *page) Err() error { return nil }

// Search fetches one page of results for query starting at startRecord.
// A maxRecords of 0 asks for the hit count only.
func (c *Client) Search(ctx context.Context, query string, startRecord, maxRecords int) (candidates.Stream, error) {
	params := url.Values{}
	params.Set("operation", "searchRetrieve")
	params.Set("version", c.Version)
	params.Set("query", query)
	params.Set("startRecord", strconv.Itoa(max(startRecord, 1)))
	params.Set("maximumRecords", strconv.Itoa(max(maxRecords, 0)))
	params.Set("recordSchema", c.RecordSchema)

	searchURL := c.BaseURL + "?" + params.Encode()
	c.logger.Debug("SRU request", "url", searchURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRU request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query SRU server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("SRU server returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchRetrieveResponse
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode SRU response: %w", err)
	}
	if len(parsed.Diagnostics) > 0 {
		return nil, &parsed.Diagnostics[0]
	}

	p := &page{total: parsed.NumberOfRecords, next: parsed.NextRecordPosition}
	for _, r := range parsed.Records {
		p.records = append(p.records, r.payload())
	}
	c.logger.Debug("SRU response", "query", query, "total", p.total, "records", len(p.records), "next", p.next)
	return p, nil
}
