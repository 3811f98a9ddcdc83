// Package main provides the CLI entrypoint for vgtrends.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/vgtrends/internal/config"
	"github.com/verte-zerg/vgtrends/internal/generator"
	"github.com/verte-zerg/vgtrends/internal/logging"
	"github.com/verte-zerg/vgtrends/internal/market"
	"github.com/verte-zerg/vgtrends/internal/model"
	"github.com/verte-zerg/vgtrends/internal/pipeline"
	"github.com/verte-zerg/vgtrends/internal/report"
	"github.com/verte-zerg/vgtrends/internal/reportui"
	"github.com/verte-zerg/vgtrends/internal/source"
	"github.com/verte-zerg/vgtrends/internal/store"
	"github.com/verte-zerg/vgtrends/internal/trend"
)

const (
	defaultStartYear = 2000
	defaultEndYear   = 2023
	defaultSource    = model.SourceRemote
	defaultRate      = 1.0
	defaultTimeout   = 30.0
	defaultTitles    = 100
	defaultTopN      = 6
	defaultLimit     = 3
	defaultMinMean   = 1.0
	defaultOutDir    = "."
	defaultLogLevel  = "info"
	defaultRunsLimit = 20

	shareTolerance = 1e-6
)

var defaultFormats = []string{"csv", "png"}

var (
	configPath string

	analysisStart    int
	analysisEnd      int
	analysisPlatform string
	analysisTopN     int
	analysisLimit    int
	analysisMinMean  float64

	sourceMode    string
	sourceBaseURL string
	sourceRate    float64
	sourceTimeout float64
	sourceTitles  int

	outputDir     string
	outputFormats []string
	outputDB      string

	logLevel string

	browseRun    string
	browseFromDB bool

	runsLimit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vgtrends",
		Short:         "Video game genre market share analysis",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runAnalyzeCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/vgtrends/config.toml)")
	flags.IntVar(&analysisStart, "start", defaultStartYear, "first year to analyze")
	flags.IntVar(&analysisEnd, "end", defaultEndYear, "last year to analyze")
	flags.StringVar(&analysisPlatform, "platform", "", "restrict to one platform (default: all)")
	flags.IntVar(&analysisTopN, "top", defaultTopN, "genres shown individually in charts and tables")
	flags.IntVar(&analysisLimit, "limit", defaultLimit, "entries per ranking")
	flags.Float64Var(&analysisMinMean, "min-mean", defaultMinMean, "minimum mean share (%) for the stability ranking")
	flags.StringVar(&sourceMode, "source", defaultSource, "data source: remote or synthetic")
	flags.StringVar(&sourceBaseURL, "base-url", source.DefaultBaseURL, "chart site root for the remote source")
	flags.Float64Var(&sourceRate, "rate", defaultRate, "seconds between remote requests")
	flags.Float64Var(&sourceTimeout, "timeout", defaultTimeout, "remote request timeout in seconds")
	flags.IntVar(&sourceTitles, "titles", defaultTitles, "titles per year produced by the synthetic source")
	flags.StringVar(&outputDir, "out", defaultOutDir, "output directory")
	flags.StringSliceVar(&outputFormats, "format", defaultFormats, "outputs: csv,xlsx,sqlite,png,svg")
	flags.StringVar(&outputDB, "db", "", "SQLite export path (default: $XDG_DATA_HOME/vgtrends/vgtrends.db)")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, logging.FormatText)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, buildProvider(cfg, logger), pipelineOptions(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to run analysis: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.RenderShareTable(out, report.CollapseTop(res.Matrix, cfg.TopN)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderInsights(out, res.Report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return writeOutputs(ctx, cfg, res, logger)
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore an analysis interactively",
		Long: "Explore an analysis interactively. With --from-db the records of a stored run are " +
			"re-analyzed; otherwise the data is collected as for the root command.",
		Args: cobra.NoArgs,
		RunE: runBrowseCmd,
	}
	cmd.Flags().BoolVar(&browseFromDB, "from-db", false, "load a stored run instead of collecting data")
	cmd.Flags().StringVar(&browseRun, "run", "", "run ID to load with --from-db (default: latest)")
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, logging.FormatText)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var res pipeline.Result
	if browseFromDB {
		res, err = loadStoredRun(ctx, cfg, browseRun, logger)
	} else {
		res, err = pipeline.Run(ctx, buildProvider(cfg, logger), pipelineOptions(cfg), logger)
	}
	if err != nil {
		return err
	}

	ui := reportui.NewModel(res, reportui.Settings{
		StartYear: res.Options.StartYear,
		EndYear:   res.Options.EndYear,
		TopN:      cfg.TopN,
		Trend:     trend.Options{Limit: cfg.Limit, MinMeanShare: cfg.MinMean},
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadStoredRun rebuilds a run from the SQLite export. Shares and rankings
// are recomputed from the stored records and checked against the stored shares.
func loadStoredRun(ctx context.Context, cfg model.Config, runID string, logger *slog.Logger) (pipeline.Result, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	var summary model.RunSummary
	if runID == "" {
		summary, err = st.LatestRun(ctx)
		if errors.Is(err, store.ErrNoRuns) {
			return pipeline.Result{}, fmt.Errorf("no runs in %s (run vgtrends --format sqlite first)", cfg.DBPath)
		}
	} else {
		summary, err = findRun(ctx, st, runID)
	}
	if err != nil {
		return pipeline.Result{}, err
	}
	records, err := st.LoadRecords(ctx, summary.ID)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("failed to load records: %w", err)
	}
	opts := pipeline.Options{
		StartYear: summary.StartYear,
		EndYear:   summary.EndYear,
		Platform:  summary.Platform,
		Trend:     trend.Options{Limit: cfg.Limit, MinMeanShare: cfg.MinMean},
	}
	res := pipeline.Analyze(market.YearRange(summary.StartYear, summary.EndYear), records, opts)
	res.RunID = summary.ID
	res.CreatedAt = summary.CreatedAt

	stored, err := st.LoadShares(ctx, summary.ID)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("failed to load shares: %w", err)
	}
	if !sharesMatch(stored, res.Matrix) {
		logger.Warn("stored shares differ from recomputed shares", "run", summary.ID)
	}
	return res, nil
}

// findRun resolves a full run ID or a unique prefix of one.
func findRun(ctx context.Context, st *store.Store, id string) (model.RunSummary, error) {
	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("failed to list runs: %w", err)
	}
	return matchRun(runs, id)
}

func matchRun(runs []model.RunSummary, id string) (model.RunSummary, error) {
	var matches []model.RunSummary
	for _, r := range runs {
		if r.ID == id {
			return r, nil
		}
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return model.RunSummary{}, fmt.Errorf("run %q not found", id)
	case 1:
		return matches[0], nil
	default:
		return model.RunSummary{}, fmt.Errorf("run ID prefix %q is ambiguous (%d runs)", id, len(matches))
	}
}

// sharesMatch reports whether a and b hold the same cells within rounding.
func sharesMatch(a, b *market.ShareMatrix) bool {
	if a.Len() != b.Len() || len(a.Genres()) != len(b.Genres()) {
		return false
	}
	for _, y := range a.Years() {
		for genre, share := range a.Row(y) {
			if !b.Has(y, genre) || math.Abs(share-b.Share(y, genre)) > shareTolerance {
				return false
			}
		}
		if len(a.Row(y)) != len(b.Row(y)) {
			return false
		}
	}
	return true
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs stored in the SQLite export",
		Args:  cobra.NoArgs,
		RunE:  runRunsCmd,
	}
	cmd.Flags().IntVar(&runsLimit, "last", defaultRunsLimit, "show the N most recent runs (0 for all)")
	return cmd
}

func runRunsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.DBPath); err != nil {
		if os.IsNotExist(err) {
			logErrf("No database at %s. Store a run with: vgtrends --format sqlite\n", cfg.DBPath)
			return fmt.Errorf("database does not exist")
		}
		return fmt.Errorf("failed to stat db: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	runs, err := st.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := report.RenderRuns(cmd.OutOrStdout(), runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := resolveConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// resolveConfig layers flags over environment over config file over defaults.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(resolveConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return model.Config{}, err
	}
	fc := config.Merge(fileCfg, envCfg)

	applyIntConfig(cmd, "start", &analysisStart, fc.Analysis.StartYear)
	applyIntConfig(cmd, "end", &analysisEnd, fc.Analysis.EndYear)
	applyStringConfig(cmd, "platform", &analysisPlatform, fc.Analysis.Platform)
	applyIntConfig(cmd, "top", &analysisTopN, fc.Analysis.TopN)
	applyIntConfig(cmd, "limit", &analysisLimit, fc.Analysis.Limit)
	applyFloatConfig(cmd, "min-mean", &analysisMinMean, fc.Analysis.MinMean)
	applyStringConfig(cmd, "source", &sourceMode, fc.Source.Mode)
	applyStringConfig(cmd, "base-url", &sourceBaseURL, fc.Source.BaseURL)
	applyFloatConfig(cmd, "rate", &sourceRate, fc.Source.Rate)
	applyFloatConfig(cmd, "timeout", &sourceTimeout, fc.Source.Timeout)
	applyIntConfig(cmd, "titles", &sourceTitles, fc.Source.Titles)
	applyStringConfig(cmd, "out", &outputDir, fc.Output.Dir)
	applyStringSliceConfig(cmd, "format", &outputFormats, fc.Output.Formats)
	applyStringConfig(cmd, "db", &outputDB, fc.Output.DB)
	applyStringConfig(cmd, "log-level", &logLevel, fc.Log.Level)

	dbPath := outputDB
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	cfg := model.Config{
		StartYear: analysisStart,
		EndYear:   analysisEnd,
		Platform:  strings.TrimSpace(analysisPlatform),
		Source:    strings.ToLower(strings.TrimSpace(sourceMode)),
		BaseURL:   sourceBaseURL,
		Rate:      sourceRate,
		Timeout:   sourceTimeout,
		Titles:    sourceTitles,
		TopN:      analysisTopN,
		Limit:     analysisLimit,
		MinMean:   analysisMinMean,
		OutDir:    outputDir,
		Formats:   normalizeFormats(outputFormats),
		DBPath:    dbPath,
		LogLevel:  strings.ToLower(logLevel),
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func pipelineOptions(cfg model.Config) pipeline.Options {
	return pipeline.Options{
		StartYear: cfg.StartYear,
		EndYear:   cfg.EndYear,
		Platform:  cfg.Platform,
		Trend:     trend.Options{Limit: cfg.Limit, MinMeanShare: cfg.MinMean},
	}
}

// buildProvider returns the synthetic generator, or the throttled remote
// source falling back to the generator for any year it cannot serve.
func buildProvider(cfg model.Config, logger *slog.Logger) source.Provider {
	synthetic := generator.NewWithCount(cfg.Titles)
	if cfg.Source == model.SourceSynthetic {
		return synthetic
	}
	remote := source.NewVGChartz(cfg.BaseURL, seconds(cfg.Timeout), logging.Component(logger, "vgchartz"))
	var primary source.Provider = remote
	if cfg.Rate > 0 {
		primary = &source.Throttled{
			Provider: remote,
			Limiter:  rate.NewLimiter(rate.Every(seconds(cfg.Rate)), 1),
		}
	}
	return &source.Fallback{
		Primary:   primary,
		Secondary: synthetic,
		Logger:    logging.Component(logger, "source"),
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	seen := map[string]struct{}{}
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# vgtrends configuration
# Uncomment a value to enable it. Environment variables (VGTRENDS_ANALYSIS_START_YEAR, ...)
# override this file and CLI flags override both.

[analysis]
# start-year = %d         # First year to analyze
# end-year = %d           # Last year to analyze
# platform = ""             # Restrict to one platform, empty for all
# top = %d                   # Genres shown individually in charts and tables
# limit = %d                 # Entries per ranking
# min-mean = %.1f            # Minimum mean share (%%) for the stability ranking

[source]
# mode = %q           # remote or synthetic
# base-url = %q
# rate = %.1f                # Seconds between remote requests
# timeout = %.1f            # Remote request timeout in seconds
# titles = %d              # Titles per year from the synthetic source

[output]
# dir = %q                 # Output directory
# formats = ["csv", "png"]  # Any of csv, xlsx, sqlite, png, svg
# db = ""                   # SQLite export path

[log]
# level = %q            # debug, info, warn or error
`,
		defaultStartYear,
		defaultEndYear,
		defaultTopN,
		defaultLimit,
		defaultMinMean,
		defaultSource,
		source.DefaultBaseURL,
		defaultRate,
		defaultTimeout,
		defaultTitles,
		defaultOutDir,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
