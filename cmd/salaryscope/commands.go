package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/salaryscope/internal/chart"
	"github.com/verte-zerg/salaryscope/internal/config"
	"github.com/verte-zerg/salaryscope/internal/fetch"
	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/server"
	"github.com/verte-zerg/salaryscope/internal/stats"
	"github.com/verte-zerg/salaryscope/internal/store"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

var (
	tableLimit  int
	tableFromDB bool

	chartKind      string
	chartBy        string
	chartFilter    []string
	chartNormalize bool
	chartBinSize   int
	chartSplit     bool
	chartPNG       string
	chartWidth     int
	chartHeight    int

	serveAddr string

	dbPath string

	summaryBy         string
	summaryTop        int
	summaryFromSource bool

	fetchURL   string
	fetchOut   string
	fetchName  string
	fetchForce bool
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the cleaned survey rows",
		Args:  cobra.NoArgs,
		RunE:  runTableCmd,
	}
	f := cmd.Flags()
	f.IntVar(&tableLimit, "limit", 0, "print at most this many rows (0 prints all)")
	f.BoolVar(&tableFromDB, "from-db", false, "print the last import instead of the export")
	f.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	return cmd
}

func runTableCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	var ds *survey.Dataset
	if tableFromDB {
		ds, err = loadImported(cmd, env)
	} else {
		ds, err = env.load(cmd.Context())
	}
	if err != nil {
		return err
	}
	records := ds.Records()
	if tableLimit > 0 && tableLimit < len(records) {
		records = records[:tableLimit]
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderRecords(out, records); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d kept of %d rows (%d without numeric salary)\n", ds.Len(), ds.RowsRead(), ds.Dropped())
	return err
}

func loadImported(cmd *cobra.Command, env *runtimeEnv) (*survey.Dataset, error) {
	applyStringConfig(cmd, "db", &dbPath, env.cfg.Store.Path)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return st.LoadDataset(cmd.Context())
}

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render one chart as text or PNG",
		Args:  cobra.NoArgs,
		RunE:  runChartCmd,
	}
	f := cmd.Flags()
	f.StringVar(&chartKind, "kind", string(model.KindHistogram), "chart kind (histogram, box)")
	f.StringVar(&chartBy, "by", string(model.FieldSex), "histogram grouping (sex, company, location, experience)")
	f.StringSliceVar(&chartFilter, "filter", nil, "values of the grouping field to keep (empty keeps none)")
	f.BoolVar(&chartNormalize, "normalize", false, "show each series as percent of its total")
	f.IntVar(&chartBinSize, "bin-size", model.DefaultBinSize, "histogram bin size (100-1000, step 100)")
	f.BoolVar(&chartSplit, "split", false, "split the box plot by sex")
	f.StringVar(&chartPNG, "png", "", "write a PNG image to this path instead of text")
	f.IntVar(&chartWidth, "width", chart.DefaultWidth, "PNG width in pixels")
	f.IntVar(&chartHeight, "height", chart.DefaultHeight, "PNG height in pixels")
	return cmd
}

func runChartCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	applyBoolConfig(cmd, "normalize", &chartNormalize, env.cfg.Dashboard.Normalize)
	applyIntConfig(cmd, "bin-size", &chartBinSize, env.cfg.Dashboard.BinSize)
	applyBoolConfig(cmd, "split", &chartSplit, env.cfg.Dashboard.SplitBySex)

	req, err := chartRequest(cmd)
	if err != nil {
		return err
	}
	ds, err := env.load(cmd.Context())
	if err != nil {
		return err
	}
	spec := chart.Render(ds, req)

	if chartPNG == "" {
		return stats.RenderChart(cmd.OutOrStdout(), spec)
	}
	if chartWidth <= 0 || chartHeight <= 0 {
		return fmt.Errorf("--width and --height must be positive")
	}
	file, err := os.Create(chartPNG)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", chartPNG, err)
	}
	if err := chart.WritePNG(file, spec, chartWidth, chartHeight); err != nil {
		if cerr := file.Close(); cerr != nil {
			_ = cerr
		}
		if errors.Is(err, chart.ErrEmptyChart) {
			return fmt.Errorf("nothing to draw: %w", err)
		}
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", chartPNG, err)
	}
	env.logger.Info("chart written", slog.String("path", chartPNG), slog.String("kind", string(spec.Kind)))
	return nil
}

// chartRequest builds the request from flags. A --filter given with no
// values selects nothing; an absent --filter keeps every value.
func chartRequest(cmd *cobra.Command) (model.ChartRequest, error) {
	kind := model.ChartKind(strings.ToLower(strings.TrimSpace(chartKind)))
	if kind != model.KindHistogram && kind != model.KindBox {
		return model.ChartRequest{}, fmt.Errorf("--kind must be %s or %s", model.KindHistogram, model.KindBox)
	}
	field, err := parseField("by", chartBy)
	if err != nil {
		return model.ChartRequest{}, err
	}
	if err := validateBinSize(chartBinSize); err != nil {
		return model.ChartRequest{}, err
	}
	req := model.ChartRequest{
		Kind:       kind,
		GroupBy:    field,
		Normalize:  chartNormalize,
		BinSize:    chartBinSize,
		ColorSplit: chartSplit,
	}
	if cmd.Flags().Changed("filter") {
		values := make([]string, 0, len(chartFilter))
		for _, v := range chartFilter {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		req.Filter = model.NewSelection(values...)
	}
	return req, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()
	applyStringConfig(cmd, "addr", &serveAddr, env.cfg.Serve.Addr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := survey.NewHandle(env.src, env.opts)
	if _, err := handle.Dataset(ctx); err != nil {
		env.logger.Warn("dataset unavailable, charts will fail",
			slog.String("source", env.src.Path),
			slog.Any("error", err),
		)
	}
	return server.New(handle, env.logger).ListenAndServe(ctx, serveAddr)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Clean the export and store it in SQLite",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()
	applyStringConfig(cmd, "db", &dbPath, env.cfg.Store.Path)

	ds, err := env.load(cmd.Context())
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	id, err := st.ReplaceDataset(cmd.Context(), ds, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store dataset: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Import %d: %d of %d rows from %s into %s\n", id, ds.Len(), ds.RowsRead(), ds.Source(), dbPath)
	return err
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print salary statistics per group",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	f := cmd.Flags()
	f.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	f.StringVar(&summaryBy, "by", string(model.FieldCompany), "grouping field (sex, company, location, experience)")
	f.IntVar(&summaryTop, "top", 0, "show only the largest groups (0 shows all)")
	f.BoolVar(&summaryFromSource, "from-source", false, "summarize the export directly instead of the last import")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	field, err := parseField("by", summaryBy)
	if err != nil {
		return err
	}
	if summaryTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()
	applyStringConfig(cmd, "db", &dbPath, env.cfg.Store.Path)

	var src stats.SummarySource
	if summaryFromSource {
		ds, err := env.load(cmd.Context())
		if err != nil {
			return err
		}
		src = stats.RecordSummaries(ds.Records())
	} else {
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		if _, err := st.LatestImport(cmd.Context()); err != nil {
			if errors.Is(err, store.ErrNoImport) {
				return fmt.Errorf("%w: run `salaryscope import` first or pass --from-source", err)
			}
			return err
		}
		src = st
	}

	report, err := stats.BuildReport(cmd.Context(), src, field, summaryTop)
	if err != nil {
		return err
	}
	return stats.RenderReport(cmd.OutOrStdout(), report)
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a survey export",
		Args:  cobra.NoArgs,
		RunE:  runFetchCmd,
	}
	f := cmd.Flags()
	f.StringVar(&fetchURL, "url", "", "export URL (required)")
	f.StringVar(&fetchOut, "out", config.DefaultDownloadDir(), "download directory")
	f.StringVar(&fetchName, "name", "", "file name (default: derived from the URL)")
	f.BoolVar(&fetchForce, "force", false, "download even if the file exists")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(fetchURL) == "" {
		return fmt.Errorf("--url is required")
	}
	res, err := fetch.Download(cmd.Context(), fetch.Request{
		URL:      fetchURL,
		Dir:      fetchOut,
		Filename: fetchName,
		Force:    fetchForce,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.Cached {
		_, err = fmt.Fprintf(out, "Using existing %s (use --force to download again)\n", res.Path)
		return err
	}
	_, err = fmt.Fprintf(out, "Saved %s (%d bytes)\nUse it with: salaryscope --source %s\n", res.Path, res.Bytes, res.Path)
	return err
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
	path := configPath
	if err := writeConfigTemplate(path); err != nil {
		return err
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

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
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
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# salaryscope configuration
# Uncomment a value to enable it. CLI flags override config values.

[data]
# source = %q   # Survey export (.csv, .tsv or .xlsx)
# sheet = "Sheet1"                    # Spreadsheet sheet (default: first)
# delimiter = ","                     # Text export delimiter ("tab" for TSV)

[dashboard]
# normalize = false     # Histograms as percent of each series
# bin-size = %d        # Histogram bin size (%d-%d, step %d)
# split-by-sex = false  # Experience box plot split by sex

[serve]
# addr = %q

[store]
# path = %q

# Extra spellings are appended to the built-in alias tables.
# [aliases.company]
# reaktor = ["reaktor innovations oy"]
# [aliases.location]
# helsinki = ["hki"]
`,
		config.DefaultSource,
		model.DefaultBinSize,
		model.MinBinSize,
		model.MaxBinSize,
		model.BinSizeStep,
		defaultAddr,
		config.DefaultDBPath(),
	)
}
