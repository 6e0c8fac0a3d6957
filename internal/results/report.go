package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// RunConfig is the configuration section of a batch report.
type RunConfig struct {
	Preset        string   `yaml:"preset"`
	SearchSpec    []string `yaml:"searchspec"`
	Strategy      []string `yaml:"strategy"`
	Threshold     float64  `yaml:"threshold"`
	MaxMatches    int      `yaml:"maxmatches"`
	MaxCandidates int      `yaml:"maxcandidates"`
	SRUURL        string   `yaml:"sruurl"`
	DatasetPath   string   `yaml:"datasetpath"`
	SampleSize    int      `yaml:"samplesize"`
	Timestamp     string   `yaml:"timestamp"`
}

// Row is the flattened outcome of one job, shared by the YAML and Parquet outputs.
type Row struct {
	ID                 string  `yaml:"id" parquet:"id"`
	Status             bool    `yaml:"status" parquet:"status"`
	StopReason         string  `yaml:"stopreason,omitempty" parquet:"stop_reason"`
	MatchCount         int64   `yaml:"matchcount" parquet:"match_count"`
	BestMatchID        string  `yaml:"bestmatchid,omitempty" parquet:"best_match_id"`
	BestProbability    float64 `yaml:"bestprobability" parquet:"best_probability"`
	CandidateCount     int64   `yaml:"candidatecount" parquet:"candidate_count"`
	DuplicateCount     int64   `yaml:"duplicatecount" parquet:"duplicate_count"`
	NonMatchCount      int64   `yaml:"nonmatchcount" parquet:"non_match_count"`
	ConversionFailures int64   `yaml:"conversionfailures" parquet:"conversion_failures"`
	MatchErrors        int64   `yaml:"matcherrors" parquet:"match_errors"`
	Error              string  `yaml:"error,omitempty" parquet:"error"`
	ProcessingMillis   int64   `yaml:"processingms" parquet:"processing_ms"`
}

// Report is the complete YAML document of a batch run.
type Report struct {
	Config  RunConfig `yaml:"config"`
	Summary *Summary  `yaml:"summary"`
	Results []Row     `yaml:"results"`
}

// Rows flattens job outcomes in input order.
func Rows(outcomes []JobOutcome) []Row {
	rows := make([]Row, 0, len(outcomes))
	for _, o := range outcomes {
		row := Row{
			ID:               o.ID,
			Error:            o.Error,
			ProcessingMillis: o.ProcessingTime.Milliseconds(),
		}
		if r := o.Result; r != nil && o.Error == "" {
			row.Status = r.Status.Status
			row.StopReason = string(r.Status.StopReason)
			row.MatchCount = int64(len(r.Matches))
			row.CandidateCount = int64(r.CandidateCount)
			row.DuplicateCount = int64(r.DuplicateCount)
			row.NonMatchCount = int64(r.NonMatchCount)
			row.ConversionFailures = int64(len(r.ConversionFailures))
			row.MatchErrors = int64(len(r.MatchErrors))
			if best, ok := r.Best(); ok {
				row.BestMatchID = best.Candidate.ID
				row.BestProbability = best.Probability
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// NewReport builds a report stamped with the current time.
func NewReport(cfg RunConfig, outcomes []JobOutcome) Report {
	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	return Report{
		Config:  cfg,
		Summary: Aggregate(outcomes),
		Results: Rows(outcomes),
	}
}

// SaveToYAML writes the report to path, creating parent directories.
func SaveToYAML(path string, report Report) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// SaveToParquet writes one row per job to path.
func SaveToParquet(path string, rows []Row) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
