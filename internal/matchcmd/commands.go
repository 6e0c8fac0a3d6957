// Package matchcmd holds the cobra commands that run match jobs from the command line.
package matchcmd

import (
	"github.com/spf13/cobra"
)

// NewMatchCmd creates the match command for a single record file.
func NewMatchCmd() *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "match <record.json>",
		Short: "Find duplicates of a MARC-in-JSON record in the union catalog",
		Long: `Generates search queries from the record, retrieves candidates from the SRU
endpoint page by page, scores every candidate and prints the job result as JSON.`,
		Example: `  # Look for duplicates by Melinda and source identifiers
  recordmatcher match record.json

  # Content-based search returning up to 5 matches with feature scores
  recordmatcher match record.json -t CONTENT -m 5 -s

  # Options from a job file, overriding the threshold
  recordmatcher match record.json --config job.yaml --threshold 0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeMatch(cmd, &flags, args[0])
		},
	}

	flags.register(cmd)
	return cmd
}

// NewBatchCmd creates the batch command for JSONL or Parquet datasets.
func NewBatchCmd() *cobra.Command {
	var flags jobFlags
	var batch batchFlags

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run match jobs for every record in a dataset",
		Long: `Runs a match job for each record of a JSONL (one MARC-in-JSON record per line)
or Parquet (rows of id and record) file with bounded concurrency, prints a summary
and optionally writes a YAML report and a Parquet table of per-record outcomes.`,
		Example: `  # Match the first 100 records with the CONTENT preset
  recordmatcher batch --dataset records.jsonl --sample 100 -t CONTENT

  # Full dataset with reports
  recordmatcher batch --dataset records.parquet --output-yaml reports/run.yaml --output-parquet reports/run.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeBatch(cmd, &flags, &batch)
		},
	}

	flags.register(cmd)
	batch.register(cmd)
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewQueriesCmd creates the queries command.
func NewQueriesCmd() *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "queries <record.json>",
		Short: "Print the search queries generated for a record",
		Long: `Prints one query per line. Only presets that resolve host records through
other sources or count hits for alternative queries contact the SRU endpoint.`,
		Example: `  recordmatcher queries record.json -t CONTENT`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeQueries(cmd, &flags, args[0])
		},
	}

	flags.register(cmd)
	return cmd
}

// NewCompareCmd creates the compare command for two local records.
func NewCompareCmd() *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:     "compare <a.json> <b.json>",
		Short:   "Score two MARC-in-JSON records against each other",
		Long:    `Scores the second record as a candidate for the first with the preset's strategy and prints per-feature scores.`,
		Example: `  recordmatcher compare input.json candidate.json -t STANDARD_IDS`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCompare(cmd, &flags, args[0], args[1])
		},
	}

	flags.register(cmd)
	return cmd
}
