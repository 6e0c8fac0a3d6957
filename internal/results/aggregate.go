package results

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
)

// JobOutcome is the result of matching one batch input record.
type JobOutcome struct {
	ID             string
	Result         *matcher.Result
	Error          string // set when the job failed before producing a result
	ProcessingTime time.Duration
}

// Summary aggregates a batch run.
type Summary struct {
	TotalRecords int `yaml:"total_records"`
	SuccessCount int `yaml:"success_count"`
	FailureCount int `yaml:"failure_count"`

	MatchedRecords   int            `yaml:"matched_records"`
	CompleteRecords  int            `yaml:"complete_records"`
	StopReasons      map[string]int `yaml:"stop_reasons"`
	TotalCandidates  int            `yaml:"total_candidates"`
	TotalMatches     int            `yaml:"total_matches"`
	AverageBestScore float64        `yaml:"average_best_probability"`

	AverageProcessingTime time.Duration `yaml:"average_processing_time"`
	TotalProcessingTime   time.Duration `yaml:"total_processing_time"`

	EvaluationDate time.Time `yaml:"evaluation_date"`
}

// Aggregate summarizes a set of job outcomes.
func Aggregate(outcomes []JobOutcome) *Summary {
	s := &Summary{
		TotalRecords:   len(outcomes),
		StopReasons:    map[string]int{},
		EvaluationDate: time.Now(),
	}

	var bestTotal float64
	var successDuration time.Duration

	for _, o := range outcomes {
		s.TotalProcessingTime += o.ProcessingTime

		if o.Error != "" || o.Result == nil {
			s.FailureCount++
			continue
		}

		s.SuccessCount++
		successDuration += o.ProcessingTime

		r := o.Result
		s.TotalCandidates += r.CandidateCount
		s.TotalMatches += len(r.Matches)
		if r.Status.Status {
			s.CompleteRecords++
		} else {
			s.StopReasons[string(r.Status.StopReason)]++
		}
		if best, ok := r.Best(); ok {
			s.MatchedRecords++
			bestTotal += best.Probability
		}
	}

	if s.MatchedRecords > 0 {
		s.AverageBestScore = bestTotal / float64(s.MatchedRecords)
	}
	if s.SuccessCount > 0 {
		s.AverageProcessingTime = successDuration / time.Duration(s.SuccessCount)
	}

	return s
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// PrintSummary writes a human-readable summary.
func (s *Summary) PrintSummary(w io.Writer) {
	rule := strings.Repeat("=", 70)
	dash := strings.Repeat("-", 70)

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "RECORDMATCHER BATCH SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run Date: %s\n", s.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Total Records: %d\n", s.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", s.SuccessCount, percent(s.SuccessCount, s.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", s.FailureCount, percent(s.FailureCount, s.TotalRecords))
	fmt.Fprintf(w, "Average Processing Time: %s\n", s.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", s.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "MATCHING")
	fmt.Fprintln(w, dash)
	fmt.Fprintf(w, "Records With Matches: %d (%.1f%%)\n", s.MatchedRecords, percent(s.MatchedRecords, s.SuccessCount))
	fmt.Fprintf(w, "Total Matches: %d\n", s.TotalMatches)
	fmt.Fprintf(w, "Candidates Evaluated: %d\n", s.TotalCandidates)
	fmt.Fprintf(w, "Average Best Probability: %.3f\n", s.AverageBestScore)
	fmt.Fprintf(w, "Complete Jobs: %d\n", s.CompleteRecords)
	for _, reason := range sortedKeys(s.StopReasons) {
		fmt.Fprintf(w, "  Stopped (%s): %d\n", reason, s.StopReasons[reason])
	}
	fmt.Fprintln(w, rule)
}
