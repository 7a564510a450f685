package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/db"
	"weld-inspection-db/internal/excel"
	"weld-inspection-db/internal/importer"
	"weld-inspection-db/internal/logger"
	"weld-inspection-db/internal/model"
	"weld-inspection-db/internal/queue"
	"weld-inspection-db/internal/storage"

	"github.com/rs/zerolog"
)

// DeadLetterer keeps import job messages that could not be processed.
type DeadLetterer interface {
	DeadLetter(ctx context.Context, message []byte) error
}

// ImportWorker runs spreadsheets uploaded through the admin API through the
// same importer the CLI uses and records the outcome on the import file.
type ImportWorker struct {
	cfg        *config.Config
	files      db.FileRepository
	welds      importer.Store
	storage    storage.Storage
	consumer   *queue.Consumer
	dlq        DeadLetterer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewImportWorker(
	cfg *config.Config,
	files db.FileRepository,
	welds importer.Store,
	storage storage.Storage,
	redisClient *queue.RedisClient,
) *ImportWorker {
	consumer := queue.NewConsumer(redisClient, cfg)
	return &ImportWorker{
		cfg:        cfg,
		files:      files,
		welds:      welds,
		storage:    storage,
		consumer:   consumer,
		dlq:        consumer,
		workerPool: NewWorkerPool(cfg.Workers.Import.Count),
		log:        logger.Component("import_worker"),
	}
}

func (w *ImportWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting import worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeImportQueue(ctx, w.handleMessage)
}

func (w *ImportWorker) Stop() {
	w.log.Info().Msg("Stopping import worker")
	w.workerPool.Stop()
}

func (w *ImportWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal import job")
		return err
	}
	if job.FileID == 0 || job.StoragePath == "" {
		return fmt.Errorf("import job missing file id or storage path")
	}

	w.log.Info().Int64("file_id", job.FileID).Str("storage_path", job.StoragePath).Msg("Processing import job")

	return w.workerPool.Submit(ctx, func(ctx context.Context) error {
		return w.ProcessJob(ctx, job)
	})
}

// ProcessJob imports one uploaded spreadsheet. The file ends up IMPORTED
// with its counts, or FAILED with the error and the counts of the rows
// written before the failure; failed jobs are dead-lettered.
func (w *ImportWorker) ProcessJob(ctx context.Context, job model.ImportJob) error {
	log := w.log.With().Int64("file_id", job.FileID).Logger()

	if err := ctx.Err(); err != nil {
		log.Warn().Msg("Import not started before shutdown")
		return w.fail(ctx, job, model.ImportCounts{}, fmt.Errorf("import not started before shutdown: %w", err))
	}

	log.Debug().Msg("Downloading spreadsheet")
	reader, err := w.storage.Download(ctx, job.StoragePath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to download file")
		return w.fail(ctx, job, model.ImportCounts{}, err)
	}
	defer reader.Close()

	sheet := job.Sheet
	if sheet == "" {
		sheet = w.cfg.Import.Sheet
	}
	strategy := excel.NewExcelStrategy(excel.Options{Sheet: sheet, DefaultWPS: w.cfg.Import.DefaultWPS})
	imp := importer.New(strategy, w.welds, importer.Options{Strict: w.cfg.Import.Strict})

	report, err := imp.Run(ctx, reader)
	if err != nil {
		log.Error().Err(err).Msg("Import failed")
		var counts model.ImportCounts
		if report != nil {
			counts = report.Counts()
		}
		return w.fail(ctx, job, counts, err)
	}

	if err := w.files.UpdateFileStatus(ctx, job.FileID, model.FileStatusImported, report.Counts(), nil); err != nil {
		log.Error().Err(err).Msg("Failed to update file status")
		return err
	}

	log.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Msg("File imported successfully")
	return nil
}

func (w *ImportWorker) fail(ctx context.Context, job model.ImportJob, counts model.ImportCounts, cause error) error {
	errorMsg := cause.Error()
	// Record the failure even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	log := w.log.With().Int64("file_id", job.FileID).Logger()

	if err := w.files.UpdateFileStatus(ctx, job.FileID, model.FileStatusFailed, counts, &errorMsg); err != nil {
		log.Error().Err(err).Msg("Failed to record import failure")
	}

	data, err := json.Marshal(job)
	if err == nil {
		err = w.dlq.DeadLetter(ctx, data)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to dead-letter import job")
	}
	return cause
}
