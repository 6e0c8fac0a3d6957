package matchcmd

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/recordmatcher/internal/catalog"
	"github.com/lehigh-university-libraries/recordmatcher/internal/config"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
	"github.com/lehigh-university-libraries/recordmatcher/internal/presets"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// jobFlags are the job options shared by match, batch, queries and compare.
type jobFlags struct {
	preset           string
	maxMatches       int
	maxCandidates    int
	threshold        float64
	returnStrategy   bool
	returnQuery      bool
	returnNonMatches bool
	returnFailures   bool
	sruURL           string
	configPath       string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.preset, "search-type", "t", presets.IDs, "Search type preset (IDS, STANDARD_IDS, COMPONENT, CONTENT, CONTENTALT)")
	fs.IntVarP(&f.maxMatches, "max-matches", "m", matcher.DefaultMaxMatches, "Stop after this many matches")
	fs.IntVarP(&f.maxCandidates, "max-candidates", "c", matcher.DefaultMaxCandidates, "Stop after this many candidates")
	fs.Float64Var(&f.threshold, "threshold", 0, "Match probability threshold (default from environment)")
	fs.BoolVarP(&f.returnStrategy, "return-strategy", "s", false, "Include strategy, threshold and feature scores in matches")
	fs.BoolVarP(&f.returnQuery, "return-query", "q", false, "Include the query that found each match")
	fs.BoolVarP(&f.returnNonMatches, "return-non-matches", "n", false, "Include evaluated candidates that did not match")
	fs.BoolVar(&f.returnFailures, "return-failures", false, "Include conversion failures and match errors in a merged list")
	fs.StringVar(&f.sruURL, "sru-url", "", "SRU endpoint (default from RECORDMATCHER_SRU_URL)")
	fs.StringVar(&f.configPath, "config", "", "YAML job file with match options")
}

// loadJobFile overlays a YAML job file on opts.
func loadJobFile(path string, opts matcher.Options) (matcher.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read job file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse job file: %w", err)
	}
	return opts, nil
}

// OptionsFromConfig maps environment configuration to job defaults.
func OptionsFromConfig(cfg *config.Config) matcher.Options {
	opts := matcher.DefaultOptions()
	opts.MaxMatches = cfg.MaxMatches
	opts.MaxCandidates = cfg.MaxCandidates
	opts.Threshold = cfg.Threshold
	opts.ServerMaxResult = cfg.ServerMaxResult
	opts.MaxRecordsPerRequest = cfg.MaxRecordsPerRequest
	return opts
}

// resolve builds job options. Precedence, lowest first: environment, job
// file, preset, explicitly set flags. The preset applies when the flag is set
// or the job file names no search spec.
func (f *jobFlags) resolve(cmd *cobra.Command, cfg *config.Config) (matcher.Options, error) {
	opts := OptionsFromConfig(cfg)

	if f.configPath != "" {
		var err error
		if opts, err = loadJobFile(f.configPath, opts); err != nil {
			return opts, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("search-type") || len(opts.SearchSpec) == 0 || len(opts.Strategy) == 0 {
		preset, err := presets.Get(f.preset)
		if err != nil {
			return opts, err
		}
		opts = preset.Apply(opts)
	}

	if flags.Changed("max-matches") {
		opts.MaxMatches = f.maxMatches
	}
	if flags.Changed("max-candidates") {
		opts.MaxCandidates = f.maxCandidates
	}
	if flags.Changed("threshold") {
		opts.Threshold = f.threshold
	}
	if flags.Changed("return-strategy") {
		opts.ReturnStrategy = f.returnStrategy
	}
	if flags.Changed("return-query") {
		opts.ReturnQuery = f.returnQuery
	}
	if flags.Changed("return-non-matches") {
		opts.ReturnNonMatches = f.returnNonMatches
	}
	if flags.Changed("return-failures") {
		opts.ReturnFailures = f.returnFailures
	}

	return opts, opts.Validate()
}

// client builds the SRU client, preferring --sru-url over the environment.
func (f *jobFlags) client(cfg *config.Config) *catalog.Client {
	url := cfg.SRUURL
	if f.sruURL != "" {
		url = f.sruURL
	}
	return catalog.NewClient(url, catalog.WithTimeout(cfg.SRUTimeout))
}
