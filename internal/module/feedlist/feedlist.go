package feedlist

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mmcdole/gofeed"
	"github.com/project-tktt/go-extractor/internal/common/collector"
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/downloader"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Name      string
	ServiceID int
	URL       string
	// PageSize is the number of entries served per page, 0 serves the whole feed at once
	PageSize int
}

// Listing serves an RSS or Atom feed as a listing of streams. The feed is downloaded once;
// later pages are slices of the parsed feed carried in the continuation's content slot.
type Listing struct {
	config Config
	dl     downloader.Downloader
	parser *gofeed.Parser
	log    *logrus.Entry
}

func newListing(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*Listing, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("listing %s: url is required", cfg.Name)
	}
	if dl == nil {
		return nil, fmt.Errorf("listing %s: downloader is required", cfg.Name)
	}
	return &Listing{
		config: cfg,
		dl:     dl,
		parser: gofeed.NewParser(),
		log:    logger.OrNop(log).WithField("listing", cfg.Name),
	}, nil
}

func New(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*module.Paginated[*domain.StreamItem, extractor.StreamItemExtractor], error) {
	l, err := newListing(cfg, dl, log)
	if err != nil {
		return nil, err
	}
	return module.NewPaginated(cfg.Name, l.fetch, func() collector.ItemCollector[*domain.StreamItem, extractor.StreamItemExtractor] {
		return collector.NewStreamCollector(cfg.ServiceID)
	}, log), nil
}

func (l *Listing) fetch(ctx context.Context, page *domain.Page) ([]extractor.StreamItemExtractor, *domain.Page, error) {
	feed, err := l.feed(ctx, page)
	if err != nil {
		return nil, nil, err
	}

	start := module.PageOffset(page, 0)
	if start < 0 {
		return nil, nil, fmt.Errorf("%w: negative offset %d", domain.ErrInvalidPage, start)
	}
	if start > len(feed.Items) {
		start = len(feed.Items)
	}
	end := len(feed.Items)
	if l.config.PageSize > 0 {
		end = min(start+l.config.PageSize, len(feed.Items))
	}

	extractors := make([]extractor.StreamItemExtractor, 0, end-start)
	for _, item := range feed.Items[start:end] {
		extractors = append(extractors, NewItem(item, feed))
	}

	if end >= len(feed.Items) {
		return extractors, nil, nil
	}
	next := domain.NewIDPage(l.config.URL, strconv.Itoa(end))
	if err := next.SetContent(feed); err != nil {
		return nil, nil, err
	}
	return extractors, next, nil
}

// feed returns the feed cached in page, downloading and parsing it when there is none
func (l *Listing) feed(ctx context.Context, page *domain.Page) (*gofeed.Feed, error) {
	if page.HasContent() {
		if feed, ok := page.Content().(*gofeed.Feed); ok {
			return feed, nil
		}
	}

	target := l.config.URL
	if page != nil {
		target = page.URL
	}
	resp, err := downloader.Get(ctx, l.dl, target, map[string]string{
		"Accept": "application/atom+xml, application/rss+xml, application/xml;q=0.9, */*;q=0.8",
	})
	if err != nil {
		return nil, err
	}

	feed, err := l.parser.ParseString(string(resp.Body))
	if err != nil {
		return nil, domain.WrapParsingError("feed", fmt.Errorf("parse feed: %w", err))
	}
	l.log.Debugf("Parsed %s feed %q with %d entries", feed.FeedType, feed.Title, len(feed.Items))
	return feed, nil
}
