package matcher

import (
	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
	"github.com/lehigh-university-libraries/recordmatcher/internal/config"
	"github.com/lehigh-university-libraries/recordmatcher/internal/detection"
	"github.com/lehigh-university-libraries/recordmatcher/internal/querylist"
)

const (
	DefaultMaxMatches    = 1
	DefaultMaxCandidates = 25
)

// Options configures one matching job.
type Options struct {
	SearchSpec []querylist.SearchType `yaml:"search_spec" json:"searchSpec" validate:"required,min=1"`
	Strategy   []string               `yaml:"strategy" json:"strategy" validate:"required,min=1"`
	Threshold  float64                `yaml:"threshold" json:"threshold" validate:"gt=0,lte=1"`

	MaxMatches    int `yaml:"max_matches" json:"maxMatches" validate:"gte=1"`
	MaxCandidates int `yaml:"max_candidates" json:"maxCandidates" validate:"gte=1"`

	ReturnStrategy   bool `yaml:"return_strategy" json:"returnStrategy"`
	ReturnQuery      bool `yaml:"return_query" json:"returnQuery"`
	ReturnNonMatches bool `yaml:"return_non_matches" json:"returnNonMatches"`
	ReturnFailures   bool `yaml:"return_failures" json:"returnFailures"`

	ServerMaxResult      int `yaml:"server_max_result" json:"serverMaxResult" validate:"gte=1"`
	MaxRecordsPerRequest int `yaml:"max_records_per_request" json:"maxRecordsPerRequest" validate:"gte=1"`

	// SuppressFailureStatus keeps conversion failures and match errors out
	// of the stop reason. They are still reported.
	SuppressFailureStatus bool `yaml:"suppress_failure_status" json:"suppressFailureStatus"`
}

// DefaultOptions returns the job defaults without a search spec or strategy.
func DefaultOptions() Options {
	return Options{
		Threshold:            detection.DefaultThreshold,
		MaxMatches:           DefaultMaxMatches,
		MaxCandidates:        DefaultMaxCandidates,
		ServerMaxResult:      candidates.DefaultServerMaxResult,
		MaxRecordsPerRequest: candidates.DefaultMaxRecordsPerRequest,
	}
}

// Validate checks the options' constraints.
func (o Options) Validate() error {
	return config.Validate(o)
}

// pageSize never asks for more records than the job may examine.
func (o Options) pageSize() int {
	return min(o.MaxRecordsPerRequest, o.MaxCandidates)
}
