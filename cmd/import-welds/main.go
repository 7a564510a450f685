package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/db"
	"weld-inspection-db/internal/excel"
	"weld-inspection-db/internal/importer"
	"weld-inspection-db/internal/logger"

	"github.com/spf13/cobra"
)

type importOptions struct {
	configPath string
	sheet      string
	dryRun     bool
	strict     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newImportCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:          "import-welds <file_path>",
		Short:        "Import weld inspection records from an Excel workbook",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default: $CONFIG_PATH or config.yaml)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to import (default: import.sheet or the first sheet)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and report against an empty in-memory store; nothing is written")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Skip rows that fail validation instead of truncating over-long values")

	return cmd
}

func runImport(ctx context.Context, opts importOptions, path string, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	sheet := opts.sheet
	if sheet == "" {
		sheet = cfg.Import.Sheet
	}
	strategy := excel.NewExcelStrategy(excel.Options{Sheet: sheet, DefaultWPS: cfg.Import.DefaultWPS})
	impOpts := importer.Options{Strict: opts.strict || cfg.Import.Strict, Out: out}

	// A missing or unreadable spreadsheet fails before any database work.
	parsed, err := importer.ReadFile(ctx, strategy, path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to read spreadsheet")
		return err
	}

	var store importer.Store
	if opts.dryRun {
		log.Info().Msg("Dry run: records are kept in memory only")
		store = db.NewMemoryStore()
	} else {
		database, err := db.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := db.EnsureSchema(ctx, database); err != nil {
			return err
		}
		store = db.NewWeldRepository(database)
	}

	report, err := importer.New(strategy, store, impOpts).RunSheet(ctx, parsed)
	if err != nil {
		if report != nil {
			fmt.Fprintf(out, "Aborted after %d rows: %s\n", report.Total(), report.Summary())
		}
		log.Error().Err(err).Str("file", path).Msg("Import failed")
		return err
	}
	if report.Skipped > 0 {
		fmt.Fprintf(out, "Skipped: %d\n", report.Skipped)
	}
	return nil
}

// loadConfig reads the config file. A dry run works without one.
func loadConfig(opts importOptions) (*config.Config, error) {
	if opts.configPath != "" {
		os.Setenv("CONFIG_PATH", opts.configPath)
	}

	cfg, err := config.Load()
	if err == nil {
		return cfg, nil
	}
	if opts.dryRun && errors.Is(err, fs.ErrNotExist) {
		return config.Parse(nil)
	}
	return nil, err
}
