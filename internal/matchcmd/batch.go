package matchcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/recordmatcher/internal/dataset"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
	"github.com/lehigh-university-libraries/recordmatcher/internal/results"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	datasetPath   string
	sampleSize    int
	concurrency   int
	outputYAML    string
	outputParquet string
}

func (f *batchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.datasetPath, "dataset", "", "Path to a .jsonl or .parquet dataset (required)")
	fs.IntVar(&f.sampleSize, "sample", -1, "Number of records to match (-1 for all)")
	fs.IntVar(&f.concurrency, "concurrency", 0, "Concurrent jobs (default from RECORDMATCHER_BATCH_CONCURRENCY)")
	fs.StringVar(&f.outputYAML, "output-yaml", "", "Path to write the YAML report")
	fs.StringVar(&f.outputParquet, "output-parquet", "", "Path to write per-record outcomes as Parquet")
}

func executeBatch(cmd *cobra.Command, flags *jobFlags, batch *batchFlags) error {
	if _, err := os.Stat(batch.datasetPath); err != nil {
		return fmt.Errorf("dataset file not found: %s", batch.datasetPath)
	}

	m, cfg, err := newMatcher(cmd, flags)
	if err != nil {
		return err
	}

	slog.Info("Loading dataset", "path", batch.datasetPath, "sample_size", batch.sampleSize)
	entries, err := dataset.NewLoader(batch.datasetPath).LoadSample(batch.sampleSize)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "records", len(entries))

	concurrency := cfg.BatchConcurrency
	if batch.concurrency > 0 {
		concurrency = batch.concurrency
	}

	outcomes, err := runBatch(cmd.Context(), m, entries, concurrency)
	if err != nil {
		return err
	}

	summary := results.Aggregate(outcomes)
	summary.PrintSummary(cmd.OutOrStdout())

	if batch.outputYAML != "" {
		opts := m.Options()
		report := results.NewReport(results.RunConfig{
			Preset:        flags.preset,
			SearchSpec:    searchSpecNames(opts),
			Strategy:      opts.Strategy,
			Threshold:     opts.Threshold,
			MaxMatches:    opts.MaxMatches,
			MaxCandidates: opts.MaxCandidates,
			SRUURL:        flags.client(cfg).BaseURL,
			DatasetPath:   batch.datasetPath,
			SampleSize:    batch.sampleSize,
		}, outcomes)
		if err := results.SaveToYAML(batch.outputYAML, report); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nYAML report saved to: %s\n", batch.outputYAML)
	}

	if batch.outputParquet != "" {
		if err := results.SaveToParquet(batch.outputParquet, results.Rows(outcomes)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Parquet results saved to: %s\n", batch.outputParquet)
	}

	return nil
}

// runBatch matches every entry on a bounded pool. Outcomes keep dataset order.
func runBatch(ctx context.Context, m *matcher.Matcher, entries []dataset.Entry, concurrency int) ([]results.JobOutcome, error) {
	pool, err := ants.NewPool(max(concurrency, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]results.JobOutcome, len(entries))
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i, entry := range entries {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = matchEntry(ctx, m, entry)

			mu.Lock()
			done++
			if done%10 == 0 || done == len(entries) {
				slog.Info("Batch progress", "processed", done, "total", len(entries))
			}
			mu.Unlock()
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	return outcomes, nil
}

func matchEntry(ctx context.Context, m *matcher.Matcher, entry dataset.Entry) results.JobOutcome {
	start := time.Now()
	outcome := results.JobOutcome{ID: entry.ID}

	res, err := m.Match(ctx, entry.Record)
	outcome.ProcessingTime = time.Since(start)
	if err != nil {
		slog.Warn("Match job failed", "record", entry.ID, "err", err)
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Result = res
	return outcome
}

func searchSpecNames(opts matcher.Options) []string {
	names := make([]string, 0, len(opts.SearchSpec))
	for _, t := range opts.SearchSpec {
		names = append(names, string(t))
	}
	return names
}
