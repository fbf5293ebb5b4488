// Package main provides the CLI entrypoint for salaryscope.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/salaryscope/internal/config"
	"github.com/verte-zerg/salaryscope/internal/dashboard"
	"github.com/verte-zerg/salaryscope/internal/logging"
	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

const (
	defaultLogLevel = "info"
	defaultAddr     = "127.0.0.1:8080"
)

var (
	configPath    string
	dataSource    string
	dataSheet     string
	dataDelimiter string
	logLevel      string

	dashNormalize bool
	dashBinSize   int
	dashSplit     bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "salaryscope",
		Short:         "Explore salary survey distributions",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	pf.StringVar(&dataSource, "source", config.DefaultSource, "survey export (.csv, .tsv or .xlsx)")
	pf.StringVar(&dataSheet, "sheet", "", "spreadsheet sheet name (default: first sheet)")
	pf.StringVar(&dataDelimiter, "delimiter", "", "field delimiter for text exports (default: by extension)")
	pf.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVar(&dashNormalize, "normalize", false, "start with histograms normalized to percent")
	rootCmd.Flags().IntVar(&dashBinSize, "bin-size", model.DefaultBinSize, "initial histogram bin size (100-1000)")
	rootCmd.Flags().BoolVar(&dashSplit, "split", false, "start with the experience box plot split by sex")

	rootCmd.AddCommand(newTableCmd())
	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// runtimeEnv carries what every data command needs.
type runtimeEnv struct {
	cfg    config.FileConfig
	logger *slog.Logger
	closer io.Closer
	src    survey.Source
	opts   survey.Options
}

func (e *runtimeEnv) Close() {
	if e.closer == nil {
		return
	}
	if cerr := e.closer.Close(); cerr != nil {
		logErrf("failed to close log file: %v\n", cerr)
	}
}

// setup loads the config file, merges it under the flags and builds the logger.
// The dashboard logs to a file so the alternate screen stays intact.
func setup(cmd *cobra.Command, logToFile bool) (*runtimeEnv, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "source", &dataSource, fileCfg.Data.Source)
	applyStringConfig(cmd, "sheet", &dataSheet, fileCfg.Data.Sheet)
	applyStringConfig(cmd, "delimiter", &dataDelimiter, fileCfg.Data.Delimiter)

	delim, err := parseDelimiter(dataDelimiter)
	if err != nil {
		return nil, err
	}

	defaults, err := config.DefaultAliases()
	if err != nil {
		return nil, err
	}
	aliases := defaults.Merge(fileCfg.Aliases)
	if err := aliases.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aliases in %s: %w", configPath, err)
	}

	env := &runtimeEnv{
		cfg: fileCfg,
		src: survey.Source{Path: dataSource, Sheet: dataSheet, Delimiter: delim},
	}
	if logToFile {
		logger, closer, err := logging.OpenFile(config.DefaultLogPath(), logLevel)
		if err != nil {
			return nil, err
		}
		env.logger, env.closer = logger, closer
	} else {
		env.logger = logging.New(cmd.ErrOrStderr(), logLevel, logging.FormatText)
	}
	env.opts = survey.Options{Aliases: aliases, Logger: env.logger}
	return env, nil
}

func (e *runtimeEnv) load(ctx context.Context) (*survey.Dataset, error) {
	ds, err := survey.Load(ctx, e.src, e.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", e.src.Path, err)
	}
	return ds, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	applyBoolConfig(cmd, "normalize", &dashNormalize, env.cfg.Dashboard.Normalize)
	applyIntConfig(cmd, "bin-size", &dashBinSize, env.cfg.Dashboard.BinSize)
	applyBoolConfig(cmd, "split", &dashSplit, env.cfg.Dashboard.SplitBySex)
	if err := validateBinSize(dashBinSize); err != nil {
		return err
	}

	ds, err := env.load(cmd.Context())
	if err != nil {
		return err
	}
	m := dashboard.NewModel(ds, dashboard.Settings{
		Normalize:  dashNormalize,
		BinSize:    dashBinSize,
		SplitBySex: dashSplit,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func parseDelimiter(raw string) (rune, error) {
	switch raw {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	runes := []rune(raw)
	if len(runes) != 1 {
		return 0, fmt.Errorf("--delimiter must be a single character, got %q", raw)
	}
	return runes[0], nil
}

func validateBinSize(n int) error {
	if n < model.MinBinSize || n > model.MaxBinSize || n%model.BinSizeStep != 0 {
		return fmt.Errorf("--bin-size must be a multiple of %d between %d and %d", model.BinSizeStep, model.MinBinSize, model.MaxBinSize)
	}
	return nil
}

func parseField(flag, raw string) (model.Field, error) {
	field, ok := model.ParseField(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		names := make([]string, len(model.Fields))
		for i, f := range model.Fields {
			names[i] = string(f)
		}
		return "", fmt.Errorf("--%s must be one of %s", flag, strings.Join(names, ", "))
	}
	return field, nil
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
