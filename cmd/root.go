package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/recordmatcher/internal/config"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matchcmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "recordmatcher",
		Short: "Duplicate record detection for a union catalog",
		Long: `Recordmatcher finds existing copies of a bibliographic record in a union catalog.

It derives SRU queries from the record's identifiers, title, authors and publication
year, retrieves candidates page by page and scores each one with a configurable
strategy of feature comparisons.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			setupLogging(verbose)
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(matchcmd.NewMatchCmd())
	cmd.AddCommand(matchcmd.NewBatchCmd())
	cmd.AddCommand(matchcmd.NewQueriesCmd())
	cmd.AddCommand(matchcmd.NewCompareCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setupLogging installs a stderr text handler. --verbose wins over RECORDMATCHER_LOG_LEVEL.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if cfg, err := config.Load(); err == nil {
		level = cfg.SlogLevel()
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
