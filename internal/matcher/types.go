package matcher

import (
	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
	"github.com/lehigh-university-libraries/recordmatcher/internal/detection"
)

// StopReason tells why a job ended before every candidate was evaluated.
type StopReason string

const (
	StopNone               StopReason = ""
	StopMaxMatches         StopReason = "maxMatches"
	StopMaxCandidates      StopReason = "maxCandidates"
	StopMaxedQueries       StopReason = "maxedQueries"
	StopConversionFailures StopReason = "conversionFailures"
	StopMatchErrors        StopReason = "matchErrors"
)

// Status is true when every retrievable candidate was evaluated.
type Status struct {
	Status     bool       `json:"status" yaml:"status"`
	StopReason StopReason `json:"stopReason" yaml:"stop_reason"`
}

// Match is a scored candidate.
type Match struct {
	Probability float64                  `json:"probability"`
	Candidate   candidates.Candidate     `json:"candidate"`
	Strategy    []string                 `json:"strategy,omitempty"`
	Threshold   *float64                 `json:"threshold,omitempty"`
	MatchQuery  string                   `json:"matchQuery,omitempty"`
	Scores      []detection.FeatureScore `json:"scores,omitempty"`
}

// MatchError is a candidate whose comparison failed.
type MatchError struct {
	Status  int    `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Failure is a conversion failure or a match error in the merged failure list.
type Failure struct {
	Status  int    `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Payload string `json:"payload,omitempty"`
}

// Result is the outcome of one job.
type Result struct {
	JobID              string                         `json:"jobId"`
	Matches            []Match                        `json:"matches"`
	Status             Status                         `json:"matchStatus"`
	NonMatches         []Match                        `json:"nonMatches,omitempty"`
	ConversionFailures []candidates.ConversionFailure `json:"conversionFailures,omitempty"`
	MatchErrors        []MatchError                   `json:"matchErrors,omitempty"`
	Failures           []Failure                      `json:"failures,omitempty"`
	CandidateCount     int                            `json:"candidateCount"`
	DuplicateCount     int                            `json:"duplicateCount"`
	NonMatchCount      int                            `json:"nonMatchCount"`
	Queries            []string                       `json:"queries,omitempty"`
	State              candidates.State               `json:"state"`
	Evaluated          []string                       `json:"evaluated,omitempty"`
}

// Accounted is the number of candidates with a recorded outcome.
func (r *Result) Accounted() int {
	return len(r.Matches) + r.NonMatchCount + r.DuplicateCount + len(r.ConversionFailures) + len(r.MatchErrors)
}

// Best returns the most probable match, if any.
func (r *Result) Best() (Match, bool) {
	if len(r.Matches) == 0 {
		return Match{}, false
	}
	best := r.Matches[0]
	for _, m := range r.Matches[1:] {
		if m.Probability > best.Probability {
			best = m
		}
	}
	return best, true
}
