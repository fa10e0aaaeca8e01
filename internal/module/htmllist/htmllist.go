package htmllist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/project-tktt/go-extractor/internal/common/collector"
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/downloader"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Config describes an HTML page that lists items
type Config struct {
	Name      string
	ServiceID int
	URL       string
	// Kind is stream, channel, playlist, comment or mixed
	Kind string
	// ItemSelector matches one element per item
	ItemSelector string
	// Kinds maps a selector an item element matches to its kind in mixed listings
	Kinds map[string]string
	// NextSelector locates the next page link, "a.next" reads href, "button@data-url" reads the attribute
	NextSelector string
	// Paging is next_url (the default with a NextSelector) or page
	Paging    module.Paging
	Fields    extractor.Fields
	UserAgent string
}

// Listing scrapes the pages of one HTML listing with colly
type Listing struct {
	config    Config
	paging    module.Paging
	transport http.RoundTripper
	log       *logrus.Entry
	now       func() time.Time
}

// element is one matched item together with the page URL it resolves against
type element struct {
	sel  *goquery.Selection
	base *url.URL
}

func newListing(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*Listing, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("listing %s: url is required", cfg.Name)
	}
	if cfg.ItemSelector == "" {
		return nil, fmt.Errorf("listing %s: item selector is required", cfg.Name)
	}
	if cfg.Paging.Mode == "" && cfg.NextSelector != "" {
		cfg.Paging.Mode = module.PagingNextURL
	}
	switch cfg.Paging.Mode {
	case "", module.PagingNone, module.PagingNextURL, module.PagingPage:
	default:
		return nil, fmt.Errorf("listing %s: paging %q is not supported for html", cfg.Name, cfg.Paging.Mode)
	}

	l := &Listing{
		config: cfg,
		paging: cfg.Paging.WithDefaults(),
		log:    logger.OrNop(log).WithField("listing", cfg.Name),
		now:    time.Now,
	}
	if dl != nil {
		l.transport = &downloader.Transport{Downloader: dl}
	}
	return l, nil
}

// New builds the listing for cfg.Kind, exposed as a listing of items
func New(cfg Config, dl downloader.Downloader, log *logrus.Entry) (module.ListExtractor[domain.Item], error) {
	switch strings.ToLower(cfg.Kind) {
	case "stream", "":
		l, err := newListing(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		fetch := fetchWith(l, func(it *extractor.HTMLItem) (extractor.StreamItemExtractor, bool) { return it, true })
		return module.Widen[*domain.StreamItem](module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.StreamItem, extractor.StreamItemExtractor] {
			return collector.NewStreamCollector(cfg.ServiceID)
		}, log)), nil
	case "channel":
		l, err := newListing(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		fetch := fetchWith(l, func(it *extractor.HTMLItem) (extractor.ChannelItemExtractor, bool) { return it, true })
		return module.Widen[*domain.ChannelItem](module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.ChannelItem, extractor.ChannelItemExtractor] {
			return collector.NewChannelCollector(cfg.ServiceID)
		}, log)), nil
	case "playlist":
		l, err := newListing(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		fetch := fetchWith(l, func(it *extractor.HTMLItem) (extractor.PlaylistItemExtractor, bool) { return it, true })
		return module.Widen[*domain.PlaylistItem](module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.PlaylistItem, extractor.PlaylistItemExtractor] {
			return collector.NewPlaylistCollector(cfg.ServiceID)
		}, log)), nil
	case "comment":
		l, err := newListing(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		fetch := fetchWith(l, func(it *extractor.HTMLItem) (extractor.CommentItemExtractor, bool) { return it, true })
		return module.Widen[*domain.CommentItem](module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.CommentItem, extractor.CommentItemExtractor] {
			return collector.NewCommentCollector(cfg.ServiceID)
		}, log)), nil
	case "mixed":
		if len(cfg.Kinds) == 0 {
			return nil, fmt.Errorf("listing %s: mixed kind needs kind selectors", cfg.Name)
		}
		l, err := newListing(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		return module.NewPaginated(cfg.Name, fetchWith(l, l.tag), func() collector.ItemCollector[domain.Item, extractor.Tagged] {
			return collector.NewMultiCollector(cfg.ServiceID)
		}, log), nil
	default:
		return nil, fmt.Errorf("listing %s: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

// tag picks the kind of the first kind selector, in sorted order, the element matches
func (l *Listing) tag(it *extractor.HTMLItem) (extractor.Tagged, bool) {
	selectors := lo.Keys(l.config.Kinds)
	slices.Sort(selectors)
	for _, selector := range selectors {
		if !it.Selection().Is(selector) {
			continue
		}
		switch strings.ToLower(l.config.Kinds[selector]) {
		case "stream":
			return extractor.Stream(it), true
		case "channel":
			return extractor.Channel(it), true
		case "playlist":
			return extractor.Playlist(it), true
		}
	}
	return nil, false
}

func fetchWith[E any](l *Listing, wrap func(*extractor.HTMLItem) (E, bool)) module.FetchFunc[E] {
	return func(ctx context.Context, page *domain.Page) ([]E, *domain.Page, error) {
		elements, next, err := l.fetch(ctx, page)
		if err != nil {
			return nil, nil, err
		}
		now := l.now()
		extractors := make([]E, 0, len(elements))
		for _, el := range elements {
			if e, ok := wrap(extractor.NewHTMLItem(el.sel, &l.config.Fields, el.base, now)); ok {
				extractors = append(extractors, e)
			}
		}
		return extractors, next, nil
	}
}

func (l *Listing) newCollector(ctx context.Context) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	}
	if l.config.UserAgent != "" {
		opts = append(opts, colly.UserAgent(l.config.UserAgent))
	}
	c := colly.NewCollector(opts...)
	if l.transport != nil {
		c.WithTransport(l.transport)
	}
	return c
}

func (l *Listing) fetch(ctx context.Context, page *domain.Page) ([]element, *domain.Page, error) {
	target := ""
	if page != nil {
		target = page.URL
	} else {
		first, err := l.paging.FirstURL(l.config.URL)
		if err != nil {
			return nil, nil, err
		}
		target = first
	}

	var (
		elements []element
		nextLink string
		pageURL  *url.URL
		fetchErr error
	)

	c := l.newCollector(ctx)
	if page != nil && len(page.Cookies) > 0 {
		cookies := downloader.CookieHeader(page.Cookies)
		c.OnRequest(func(r *colly.Request) {
			r.Headers.Set("Cookie", cookies)
		})
	}
	c.OnHTML("html", func(e *colly.HTMLElement) {
		pageURL = e.Request.URL
		if l.config.NextSelector == "" {
			return
		}
		selector, attr := extractor.SplitSelector(l.config.NextSelector)
		next := e.DOM.Find(selector).First()
		if attr == "" {
			attr = "href"
		}
		nextLink, _ = next.Attr(attr)
	})
	c.OnHTML(l.config.ItemSelector, func(e *colly.HTMLElement) {
		elements = append(elements, element{sel: e.DOM, base: e.Request.URL})
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 400 {
			fetchErr = &downloader.HTTPError{StatusCode: r.StatusCode, URL: target}
			return
		}
		fetchErr = fmt.Errorf("colly error: %w", err)
	})

	if err := c.Visit(target); err != nil {
		if fetchErr != nil {
			return nil, nil, fetchErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("visit url: %w", err)
	}
	if fetchErr != nil {
		return nil, nil, fetchErr
	}

	next, err := l.continuation(page, pageURL, nextLink, len(elements))
	if err != nil {
		return nil, nil, err
	}
	l.log.Debugf("Scraped %d elements from %s", len(elements), target)
	return elements, next, nil
}

func (l *Listing) continuation(page *domain.Page, pageURL *url.URL, nextLink string, received int) (*domain.Page, error) {
	switch l.paging.Mode {
	case module.PagingNextURL:
		return module.NextURLContinuation(pageURL, nextLink)
	case module.PagingPage:
		return module.PageNumberContinuation(l.config.URL, l.paging, module.PageOffset(page, l.paging.StartPage), received, 0)
	default:
		return nil, nil
	}
}
