package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/project-tktt/go-extractor/internal/service"
	"github.com/sirupsen/logrus"
)

// Deduper drops records already seen unchanged; dedup.Deduplicator implements it
type Deduper interface {
	Filter(ctx context.Context, records []domain.Record) ([]domain.Record, error)
}

// Publisher hands records to the indexing side; queue.Publisher implements it
type Publisher interface {
	PublishBatch(ctx context.Context, records []domain.Record) error
}

// Recorder is notified of crawl and queueing outcomes; metrics.Metrics implements it
type Recorder interface {
	module.Observer
	RecordsQueued(listing string, n int)
	RecordsUnchanged(listing string, n int)
}

// RunStats sums up one listing of one run
type RunStats struct {
	module.CrawlStats
	Queued    int
	Unchanged int
}

// Pipeline crawls every listing of every registered service and queues the new records
type Pipeline struct {
	registry  *service.Registry
	dedup     Deduper
	publisher Publisher
	recorder  Recorder
	config    module.CrawlConfig
	log       *logrus.Entry
	now       func() time.Time
}

func New(reg *service.Registry, dedup Deduper, pub Publisher, cfg module.CrawlConfig, log *logrus.Entry) *Pipeline {
	return &Pipeline{
		registry:  reg,
		dedup:     dedup,
		publisher: pub,
		config:    cfg,
		log:       logger.OrNop(log),
		now:       time.Now,
	}
}

// WithRecorder attaches a recorder to every crawl
func (p *Pipeline) WithRecorder(r Recorder) *Pipeline {
	p.recorder = r
	return p
}

// Schedule runs every listing now and then once per interval until ctx is done.
// A zero interval runs once.
func (p *Pipeline) Schedule(ctx context.Context, interval time.Duration) {
	p.RunAll(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunAll(ctx)
		}
	}
}

// RunAll crawls the listings one after another under a fresh run id.
// A failing listing is logged and the run moves on.
func (p *Pipeline) RunAll(ctx context.Context) map[string]RunStats {
	runID := uuid.NewString()
	log := p.log.WithField("run", runID)
	results := make(map[string]RunStats)

	for _, svc := range p.registry.All() {
		for _, name := range svc.Listings() {
			if ctx.Err() != nil {
				return results
			}

			listing, err := svc.Listing(name)
			if err != nil {
				log.WithError(err).Error("Listing lookup failed")
				continue
			}

			key := svc.Name + "/" + name
			stats, err := p.Run(ctx, runID, svc, key, listing)
			if err != nil {
				log.WithError(err).WithField("listing", key).Error("Crawl failed")
			}
			results[key] = stats

			log.WithFields(logrus.Fields{
				"listing":   key,
				"pages":     stats.Pages,
				"items":     stats.Items,
				"errors":    stats.Errors,
				"queued":    stats.Queued,
				"unchanged": stats.Unchanged,
			}).Info("Listing done")
		}
	}
	return results
}

// Run crawls one listing, turning each page into records that are deduplicated and published
func (p *Pipeline) Run(ctx context.Context, runID string, svc *service.StreamingService, name string, listing module.ListExtractor[domain.Item]) (RunStats, error) {
	var stats RunStats
	log := p.log.WithFields(logrus.Fields{"run": runID, "listing": name})

	crawler := module.NewCrawler(name, listing, p.config, log)
	if p.recorder != nil {
		crawler.WithObserver(p.recorder)
	}

	crawlStats, err := crawler.CrawlWithCallback(ctx, func(ctx context.Context, _ int, page *domain.ItemsPage[domain.Item]) error {
		records := p.records(runID, svc, name, page.Items)

		fresh := records
		if p.dedup != nil {
			var err error
			if fresh, err = p.dedup.Filter(ctx, records); err != nil {
				return err
			}
		}
		unchanged := len(records) - len(fresh)
		stats.Unchanged += unchanged

		if err := p.publisher.PublishBatch(ctx, fresh); err != nil {
			return err
		}
		stats.Queued += len(fresh)

		if p.recorder != nil {
			p.recorder.RecordsQueued(name, len(fresh))
			p.recorder.RecordsUnchanged(name, unchanged)
		}
		return nil
	})
	stats.CrawlStats = crawlStats
	return stats, err
}

func (p *Pipeline) records(runID string, svc *service.StreamingService, listing string, items []domain.Item) []domain.Record {
	records := domain.ToRecords(items)
	now := p.now().UTC()
	for i := range records {
		records[i].Service = svc.Name
		records[i].RunID = runID
		records[i].Listing = listing
		records[i].ExtractedAt = now
	}
	return records
}
