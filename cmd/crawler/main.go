package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/dedup"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/common/metrics"
	"github.com/project-tktt/go-extractor/internal/config"
	"github.com/project-tktt/go-extractor/internal/downloader"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/project-tktt/go-extractor/internal/module/pipeline"
	"github.com/project-tktt/go-extractor/internal/queue"
	"github.com/project-tktt/go-extractor/internal/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	base := logger.New(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component(base, "crawler")
	log.Info("Starting Extractor Crawler Service")

	catalogue, err := config.LoadServicesFile(cfg.ServicesFile)
	if err != nil {
		log.WithError(err).Fatal("Load services failed")
	}
	if catalogue == nil {
		log.Warnf("Services file %s not found, nothing to crawl", cfg.ServicesFile)
	}

	dl, err := downloader.NewHTTPDownloader(downloader.Config{
		Timeout:    30 * time.Second,
		MaxRetries: cfg.Crawler.MaxRetries,
		UserAgent:  cfg.Crawler.UserAgent,
		ProxyURL:   cfg.Crawler.ProxyURL,
		RateLimit:  cfg.Crawler.RateLimit,
	}, logger.Component(base, "downloader"))
	if err != nil {
		log.WithError(err).Fatal("Create downloader failed")
	}

	registry, err := service.Build(catalogue, dl, logger.Component(base, "service"))
	if err != nil {
		log.WithError(err).Fatal("Build services failed")
	}
	for _, svc := range registry.All() {
		log.Infof("Service %s with listings %v", svc, svc.Listings())
	}

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

	m := metrics.New()
	deduplicator := dedup.NewDeduplicator(rdb, cfg.Redis.SeenPrefix, cfg.Redis.SeenTTL)
	publisher := queue.NewPublisher(rdb, cfg.Redis.ItemQueue)

	p := pipeline.New(registry, deduplicator, publisher, module.CrawlConfig{
		MaxPages:     cfg.Crawler.MaxPages,
		RequestDelay: cfg.Crawler.RequestDelay,
		Jitter:       cfg.Crawler.Jitter,
	}, logger.Component(base, "pipeline")).WithRecorder(m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Infof("Serving metrics on %s", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server error")
			}
		}()
	}

	finished := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(finished)
		p.Schedule(ctx, cfg.Crawler.Interval)
	}()

	select {
	case <-sigChan:
		log.Info("Shutdown signal received, stopping...")
	case <-finished:
		log.Info("Crawl finished")
	}
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
