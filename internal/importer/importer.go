package importer

import (
	"context"
	"fmt"
	"io"
	"os"

	"weld-inspection-db/internal/excel"
	"weld-inspection-db/internal/logger"
	"weld-inspection-db/pkg/errors"

	"github.com/rs/zerolog"
)

type Options struct {
	// Strict skips rows that fail validation instead of importing them
	// with over-long values truncated.
	Strict bool
	// Out receives the human-readable progress lines. Nil discards them.
	Out io.Writer
}

// Importer runs a spreadsheet through the parsing strategy and the upsert
// engine, one row at a time in sheet order.
type Importer struct {
	strategy excel.ParsingStrategy
	engine   *Engine
	out      io.Writer
	strict   bool
	log      zerolog.Logger
}

func New(strategy excel.ParsingStrategy, store Store, opts Options) *Importer {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Importer{
		strategy: strategy,
		engine:   NewEngine(store),
		out:      out,
		strict:   opts.Strict,
		log:      logger.Component("importer"),
	}
}

// ReadFile loads the sheet from the spreadsheet at path without touching
// any store.
func ReadFile(ctx context.Context, strategy excel.ParsingStrategy, path string) (*excel.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return strategy.Read(ctx, f)
}

func (im *Importer) RunFile(ctx context.Context, path string) (*Report, error) {
	sheet, err := ReadFile(ctx, im.strategy, path)
	if err != nil {
		return nil, err
	}
	return im.RunSheet(ctx, sheet)
}

// Run imports every row of the sheet read from data. A store failure stops
// the run; the returned report then covers the rows written before it.
func (im *Importer) Run(ctx context.Context, data io.Reader) (*Report, error) {
	sheet, err := im.strategy.Read(ctx, data)
	if err != nil {
		return nil, err
	}
	return im.RunSheet(ctx, sheet)
}

// RunSheet imports the rows of an already loaded sheet.
func (im *Importer) RunSheet(ctx context.Context, sheet *excel.Sheet) (*Report, error) {
	cols := im.strategy.Columns(sheet.Headers)
	report := &Report{Columns: sheet.Headers, MTColumn: cols.InspectionMT}
	log := im.log.With().Str("sheet", sheet.Name).Logger()

	fmt.Fprintf(im.out, "Columns found: %q\n", sheet.Headers)
	if cols.InspectionMT == "" {
		log.Warn().Msg("MT column not found, inspection_mt will be empty")
	}
	if missing := cols.Missing(sheet.Headers); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("Expected columns not found, fields will use defaults")
	}

	for _, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec, ok := im.strategy.ParseRow(row, cols)
		if !ok {
			log.Debug().Int("row", row.Number).Msg("Skipping row without section")
			continue
		}

		if issues := im.strategy.Validate(rec); len(issues) > 0 {
			for _, issue := range issues {
				log.Warn().
					Int("row", row.Number).
					Str("key", rec.Key().String()).
					Str("field", issue.Field).
					Msg(issue.Message)
			}
			if im.strict {
				report.Skipped++
				continue
			}
			im.strategy.Clamp(rec)
		}

		outcome, err := im.engine.Upsert(ctx, rec)
		if err != nil {
			log.Error().Err(err).Int("row", row.Number).Msg("Import aborted")
			return report, fmt.Errorf("row %d: %w", row.Number, err)
		}
		fmt.Fprintln(im.out, report.record(outcome, rec.Key()))
	}

	fmt.Fprintln(im.out, report.Summary())
	log.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Msg("Import finished")
	return report, nil
}
