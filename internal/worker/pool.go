package worker

import (
	"context"
	"sync"

	"weld-inspection-db/internal/logger"

	"github.com/rs/zerolog"
)

type Job func(context.Context) error

type WorkerPool struct {
	workerCount int
	jobChan     chan Job
	wg          sync.WaitGroup
	log         zerolog.Logger
}

func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
		jobChan:     make(chan Job, workerCount*2),
		log:         logger.Component("worker_pool"),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	wp.log.Info().Int("worker_count", wp.workerCount).Msg("Starting worker pool")

	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Stop closes the job queue and waits for the workers to finish every job
// already submitted. Submit must not be called afterwards.
func (wp *WorkerPool) Stop() {
	wp.log.Info().Msg("Stopping worker pool")
	close(wp.jobChan)
	wp.wg.Wait()
	wp.log.Info().Msg("Worker pool stopped")
}

// Submit blocks until a worker slot is free or ctx is done. A job that
// cannot be queued is reported back so the caller can dead-letter it.
func (wp *WorkerPool) Submit(ctx context.Context, job Job) error {
	select {
	case wp.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker runs jobs until the channel is closed. Jobs still buffered when ctx
// is cancelled run with the cancelled ctx, so each one can record that it
// did not happen instead of vanishing.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	log := wp.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for job := range wp.jobChan {
		if err := job(ctx); err != nil {
			log.Error().Err(err).Msg("Job execution failed")
		}
	}
	log.Debug().Msg("Worker stopping due to closed job channel")
}
