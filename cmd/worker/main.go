package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/cleaner"
	"github.com/project-tktt/go-extractor/internal/common/indexer"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/common/metrics"
	"github.com/project-tktt/go-extractor/internal/config"
	"github.com/project-tktt/go-extractor/internal/module/worker"
	"github.com/project-tktt/go-extractor/internal/queue"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	base := logger.New(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component(base, "worker")
	log.Info("Starting Extractor Worker Service")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("Redis connection failed")
	}
	log.Info("Redis connected")

	indexers, closeAll := openIndexers(ctx, cfg, logger.Component(base, "indexer"))
	defer closeAll()
	if len(indexers) == 0 {
		log.Fatal("No indexer configured")
	}

	m := metrics.New()
	consumer := queue.NewConsumer(rdb, cfg.Redis.ItemQueue, 5*time.Second, logger.Component(base, "queue"))
	w := worker.NewWorker(consumer, cleaner.NewCleaner(), indexers, worker.Config{
		Concurrency: cfg.Worker.Concurrency,
		BatchSize:   cfg.Worker.BatchSize,
	}, log).WithRecorder(m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	var srv *http.Server
	if cfg.Worker.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv = &http.Server{Addr: cfg.Worker.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// queue -> clean -> index
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Worker error")
		}
	}()

	<-sigChan
	log.Info("Shutdown signal received, stopping...")
	cancel()
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Graceful shutdown complete")
	case <-time.After(30 * time.Second):
		log.Warn("Shutdown timeout, forcing exit")
	}
}

// openIndexers connects the configured backends. A backend that cannot be reached is fatal.
func openIndexers(ctx context.Context, cfg *config.Config, log *logrus.Entry) (indexer.Multi, func()) {
	var indexers indexer.Multi
	var closers []func() error

	for _, name := range cfg.Worker.Indexers {
		switch strings.ToLower(name) {
		case "postgres":
			pg, err := indexer.NewPostgresIndexer(cfg.Postgres.ConnectionString, cfg.Postgres.TableName, log)
			if err != nil {
				log.WithError(err).Fatal("PostgreSQL connection failed")
			}
			log.Info("PostgreSQL connected")
			indexers = append(indexers, pg)
			closers = append(closers, pg.Close)
		case "elasticsearch":
			es, err := indexer.NewElasticsearchIndexer(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index, log)
			if err != nil {
				log.WithError(err).Fatal("Elasticsearch connection failed")
			}
			log.Infof("Elasticsearch connected, index: %s", cfg.Elasticsearch.Index)
			if err := es.EnsureIndex(ctx); err != nil {
				log.WithError(err).Warn("Failed to ensure index")
			}
			indexers = append(indexers, es)
		default:
			log.Warnf("Unknown indexer %q ignored", name)
		}
	}

	return indexers, func() {
		for _, c := range closers {
			_ = c()
		}
	}
}
