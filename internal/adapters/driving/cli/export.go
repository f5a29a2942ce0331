package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/storage/sqlite"
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/core/services"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
	"github.com/kb-dk/ds-cumulus-export/internal/metrics"
)

// progressEvery is the number of records between progress updates.
const progressEvery = 100

var (
	exportFormat      string
	exportOutput      string
	exportMappingFile string
	exportMapName     string
	exportWorkers     int
	exportMaxRecords  int
	exportStoreDir    string
	exportWatch       bool
	exportMetricsAddr string
)

var exportCmd = &cobra.Command{
	Use:   "export [records.jsonl]",
	Short: "Map catalog records and write search documents",
	Long: `Reads catalog records as JSON lines from the given file, or stdin when
no file or "-" is given, maps them with the configured mapping and writes
the documents in the configured format.

Records that lack a required field or hold an invalid value are skipped and
logged. With --watch the export is repeated whenever the mapping file
changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFormat, "format", "f", "", "output format: solr, jsonl or elasticsearch")
	f.StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	f.StringVar(&exportMappingFile, "mapping", "", "mapping document")
	f.StringVar(&exportMapName, "map", "", "map name within the mapping document")
	f.IntVar(&exportWorkers, "workers", 0, "records mapped concurrently")
	f.IntVar(&exportMaxRecords, "max-records", 0, "limit the batch, -1 for all records")
	f.StringVar(&exportStoreDir, "store-dir", "", "directory of the run journal")
	f.BoolVar(&exportWatch, "watch", false, "re-run the export when the mapping changes")
	f.StringVar(&exportMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(exportCmd)
}

// exportSettings returns the stored settings with command line overrides.
func exportSettings(cmd *cobra.Command) (*domain.ExportSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		settings.Format = domain.OutputFormat(exportFormat)
	}
	if flags.Changed("output") {
		settings.Output = exportOutput
	}
	if flags.Changed("mapping") {
		settings.Mapping.File = exportMappingFile
	}
	if flags.Changed("map") {
		settings.Mapping.Name = exportMapName
	}
	if flags.Changed("workers") {
		settings.Workers = exportWorkers
	}
	if flags.Changed("max-records") {
		settings.MaxRecords = exportMaxRecords
	}
	if flags.Changed("store-dir") {
		settings.StoreDir = exportStoreDir
	}
	return settings, settings.Validate()
}

func runExport(cmd *cobra.Command, args []string) error {
	settings, err := exportSettings(cmd)
	if err != nil {
		return err
	}
	input := ""
	if len(args) > 0 {
		input = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if exportMetricsAddr != "" {
		m = metrics.New()
		srv := serveMetrics(exportMetricsAddr, m)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var runs driven.RunStore
	if settings.StoreDir != "" {
		store, err := sqlite.NewStore(settings.StoreDir)
		if err != nil {
			return fmt.Errorf("failed to open run journal: %w", err)
		}
		defer store.Close()
		runs = store.RunStore()
	}

	once := func() error {
		return exportOnce(ctx, cmd, settings, input, runs, m)
	}
	if !exportWatch {
		return once()
	}
	if input == "" || input == "-" {
		return errors.New("--watch needs a records file")
	}
	return watchMapping(ctx, settings.Mapping.File, once)
}

// exportOnce performs one complete export run.
func exportOnce(
	ctx context.Context,
	cmd *cobra.Command,
	settings *domain.ExportSettings,
	input string,
	runs driven.RunStore,
	m *metrics.Metrics,
) error {
	mapper, err := buildMapper(settings)
	if err != nil {
		return err
	}

	source, err := openRecords(input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer source.Close()

	writer, release, err := openWriter(settings, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	opts := []services.ExporterOption{
		services.WithWorkers(settings.Workers),
		services.WithMaxRecords(settings.MaxRecords),
	}
	if runs != nil {
		opts = append(opts, services.WithRunStore(runs))
	}
	if m != nil {
		opts = append(opts, services.WithMetrics(m))
	}
	if isTerminal(cmd.ErrOrStderr()) {
		opts = append(opts, services.WithProgress(progressPrinter(cmd.ErrOrStderr())))
	}

	run, err := services.NewExporter(mapper, opts...).Run(ctx, source, writer)
	if cerr := writer.Close(ctx); err == nil {
		err = cerr
	}
	if rerr := release(); err == nil {
		err = rerr
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.PrintErrf("Exported %d of %d records (%d skipped) in %s [run %s]\n",
		run.Written, run.Processed, run.Skipped, run.Duration().Round(time.Millisecond), run.RunID)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressPrinter rewrites a single status line.
func progressPrinter(w io.Writer) services.ProgressFunc {
	return func(run domain.RunSummary) {
		if run.Processed%progressEvery == 0 {
			fmt.Fprintf(w, "\rProcessing... %d records (%d skipped)", run.Processed, run.Skipped)
		}
	}
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()
	logger.Info("serving metrics on %s/metrics", addr)
	return srv
}
