package module

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/sirupsen/logrus"
)

// PageHandler is a callback for processing the items of each page. number starts at 1.
type PageHandler[T domain.Item] func(ctx context.Context, number int, page *domain.ItemsPage[T]) error

// Observer receives per-page outcomes of a crawl, e.g. for metrics
type Observer interface {
	ObservePage(listing string, items, errors int)
	ObserveFailure(listing string, err error)
}

type CrawlConfig struct {
	// MaxPages caps the pages fetched per crawl, 0 means no cap
	MaxPages     int
	RequestDelay time.Duration
	// Jitter is the upper bound of a random delay added to RequestDelay
	Jitter time.Duration
}

// CrawlStats sums up one crawl
type CrawlStats struct {
	Pages  int
	Items  int
	Errors int
}

// Crawler walks a listing page by page
type Crawler[T domain.Item] struct {
	name     string
	listing  ListExtractor[T]
	config   CrawlConfig
	log      *logrus.Entry
	observer Observer
}

func NewCrawler[T domain.Item](name string, listing ListExtractor[T], cfg CrawlConfig, log *logrus.Entry) *Crawler[T] {
	return &Crawler[T]{
		name:    name,
		listing: listing,
		config:  cfg,
		log:     logger.OrNop(log).WithField("listing", name),
	}
}

// WithObserver attaches an observer notified after every page
func (c *Crawler[T]) WithObserver(o Observer) *Crawler[T] {
	c.observer = o
	return c
}

func (c *Crawler[T]) Name() string {
	return c.name
}

// Crawl fetches every page and returns all collected items
func (c *Crawler[T]) Crawl(ctx context.Context) ([]T, error) {
	var all []T
	_, err := c.CrawlWithCallback(ctx, func(_ context.Context, _ int, page *domain.ItemsPage[T]) error {
		all = append(all, page.Items...)
		return nil
	})
	return all, err
}

// CrawlWithCallback fetches pages until the listing is exhausted or MaxPages is reached,
// calling handler after each page. A failed page fetch ends the crawl with its error;
// handler errors are logged and the crawl goes on.
func (c *Crawler[T]) CrawlWithCallback(ctx context.Context, handler PageHandler[T]) (CrawlStats, error) {
	var stats CrawlStats
	lister := NewLister(c.listing)

	for lister.HasNext() {
		if c.capped(stats) {
			c.log.Infof("Reached max pages (%d)", c.config.MaxPages)
			break
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		number := stats.Pages + 1
		c.log.Debugf("Fetching page %d", number)

		page, err := lister.Next(ctx)
		if err != nil {
			if c.observer != nil {
				c.observer.ObserveFailure(c.name, err)
			}
			return stats, fmt.Errorf("fetch page %d: %w", number, err)
		}

		stats.Pages++
		stats.Items += len(page.Items)
		stats.Errors += len(page.Errors)
		if c.observer != nil {
			c.observer.ObservePage(c.name, len(page.Items), len(page.Errors))
		}

		entry := c.log.WithFields(logrus.Fields{
			"page":  number,
			"items": len(page.Items),
			"more":  page.HasNextPage(),
		})
		if len(page.Errors) > 0 {
			entry.WithField("first_error", page.Errors[0].Error()).
				Warnf("%d items could not be loaded", len(page.Errors))
		}
		entry.Info("Page processed")

		if handler != nil {
			if err := handler(ctx, number, page); err != nil {
				entry.WithError(err).Error("Handler error")
			}
		}

		if lister.HasNext() && !c.capped(stats) {
			if err := c.wait(ctx); err != nil {
				return stats, err
			}
		}
	}

	c.log.WithFields(logrus.Fields{
		"pages":  stats.Pages,
		"items":  stats.Items,
		"errors": stats.Errors,
	}).Info("Crawl finished")
	return stats, nil
}

func (c *Crawler[T]) capped(stats CrawlStats) bool {
	return c.config.MaxPages > 0 && stats.Pages >= c.config.MaxPages
}

// wait sleeps for the request delay plus jitter, returning early when ctx is done
func (c *Crawler[T]) wait(ctx context.Context) error {
	delay := c.config.RequestDelay
	if c.config.Jitter > 0 {
		delay += rand.N(c.config.Jitter)
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
