package matchcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/recordmatcher/internal/config"
	"github.com/lehigh-university-libraries/recordmatcher/internal/detection"
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// newMatcher loads configuration, resolves job options and builds a matcher against the SRU endpoint.
func newMatcher(cmd *cobra.Command, flags *jobFlags) (*matcher.Matcher, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	opts, err := flags.resolve(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	m, err := matcher.New(opts, flags.client(cfg), matcher.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

func executeMatch(cmd *cobra.Command, flags *jobFlags, path string) error {
	rec, err := marc.ReadJSONFile(path)
	if err != nil {
		return err
	}

	m, _, err := newMatcher(cmd, flags)
	if err != nil {
		return err
	}

	result, err := m.Match(cmd.Context(), rec)
	if err != nil {
		return fmt.Errorf("failed to match %s: %w", path, err)
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func executeQueries(cmd *cobra.Command, flags *jobFlags, path string) error {
	rec, err := marc.ReadJSONFile(path)
	if err != nil {
		return err
	}

	m, _, err := newMatcher(cmd, flags)
	if err != nil {
		return err
	}

	queries, err := m.Queries(cmd.Context(), rec)
	if err != nil {
		return fmt.Errorf("failed to generate queries: %w", err)
	}
	for _, q := range queries {
		fmt.Fprintln(cmd.OutOrStdout(), q)
	}
	return nil
}

func executeCompare(cmd *cobra.Command, flags *jobFlags, inputPath, candidatePath string) error {
	input, err := marc.ReadJSONFile(inputPath)
	if err != nil {
		return err
	}
	candidate, err := marc.ReadJSONFile(candidatePath)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := flags.resolve(cmd, cfg)
	if err != nil {
		return err
	}

	detector, err := detection.NewFromNames(opts.Strategy,
		detection.WithThreshold(opts.Threshold),
		detection.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	result, err := detector.Detect(input, candidate)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
