package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/cleaner"
	"github.com/project-tktt/go-extractor/internal/common/indexer"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/sirupsen/logrus"
)

// Source hands out batches of queued records; queue.Consumer implements it
type Source interface {
	ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.Record, error)
}

// Recorder receives indexing outcomes, e.g. for metrics
type Recorder interface {
	RecordsIndexed(n int)
	IndexFailed()
}

// Worker processes records from the queue and indexes them to storage
type Worker struct {
	source   Source
	cleaner  *cleaner.Cleaner
	indexer  indexer.Indexer
	recorder Recorder
	log      *logrus.Entry

	batchSize   int
	concurrency int
	retryDelay  time.Duration
}

// Config holds worker configuration
type Config struct {
	Concurrency int
	BatchSize   int
	// RetryDelay is the pause after a failed consume
	RetryDelay time.Duration
}

// NewWorker creates a new worker
func NewWorker(source Source, clean *cleaner.Cleaner, idx indexer.Indexer, cfg Config, log *logrus.Entry) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &Worker{
		source:      source,
		cleaner:     clean,
		indexer:     idx,
		log:         logger.OrNop(log),
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		retryDelay:  cfg.RetryDelay,
	}
}

// WithRecorder attaches a recorder notified after every batch
func (w *Worker) WithRecorder(r Recorder) *Worker {
	w.recorder = r
	return w
}

// Run starts the worker pool and blocks until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	w.log.Infof("Starting worker pool with %d workers", w.concurrency)

	var wg sync.WaitGroup
	errChan := make(chan error, w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if err := w.runSingle(ctx, workerID); err != nil {
				errChan <- fmt.Errorf("worker %d: %w", workerID, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		<-done
		return ctx.Err()
	case err := <-errChan:
		return err
	case <-done:
		return nil
	}
}

func (w *Worker) runSingle(ctx context.Context, workerID int) error {
	log := w.log.WithField("worker", workerID)
	log.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("Worker stopping")
			return nil
		default:
		}

		records, err := w.source.ConsumeBatch(ctx, w.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Error("Consume error")
			w.pause(ctx)
			continue
		}
		if len(records) == 0 {
			continue
		}

		w.ProcessBatch(ctx, log, records)
	}
}

// ProcessBatch cleans a batch of records and indexes it
func (w *Worker) ProcessBatch(ctx context.Context, log *logrus.Entry, records []*domain.Record) {
	log.Debugf("Processing %d records", len(records))

	for _, r := range records {
		w.cleaner.CleanRecord(r)
	}

	if err := w.indexer.BulkIndex(ctx, records); err != nil {
		log.WithError(err).Error("Index error")
		if w.recorder != nil {
			w.recorder.IndexFailed()
		}
		return
	}

	log.Infof("Indexed %d records", len(records))
	if w.recorder != nil {
		w.recorder.RecordsIndexed(len(records))
	}
}

func (w *Worker) pause(ctx context.Context) {
	timer := time.NewTimer(w.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
