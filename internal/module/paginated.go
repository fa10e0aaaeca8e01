package module

import (
	"context"
	"errors"
	"fmt"

	"github.com/project-tktt/go-extractor/internal/common/collector"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/sirupsen/logrus"
)

// FetchFunc performs the request for one page and wraps every raw element it finds in a per-item extractor.
// page is nil for the first page. The returned continuation is nil when the listing ends there.
type FetchFunc[E any] func(ctx context.Context, page *domain.Page) ([]E, *domain.Page, error)

// CollectorFactory returns an empty collector for one page
type CollectorFactory[T domain.Item, E any] func() collector.ItemCollector[T, E]

// Paginated is a ListExtractor assembled from a fetch function and a collector factory
type Paginated[T domain.Item, E any] struct {
	name         string
	fetch        FetchFunc[E]
	newCollector CollectorFactory[T, E]
	log          *logrus.Entry
}

func NewPaginated[T domain.Item, E any](name string, fetch FetchFunc[E], newCollector CollectorFactory[T, E], log *logrus.Entry) *Paginated[T, E] {
	return &Paginated[T, E]{
		name:         name,
		fetch:        fetch,
		newCollector: newCollector,
		log:          logger.OrNop(log).WithField("listing", name),
	}
}

func (p *Paginated[T, E]) Name() string {
	return p.name
}

func (p *Paginated[T, E]) InitialPage(ctx context.Context) (*domain.ItemsPage[T], error) {
	return p.collect(ctx, nil)
}

func (p *Paginated[T, E]) Page(ctx context.Context, page *domain.Page) (*domain.ItemsPage[T], error) {
	if !page.IsValid() {
		return nil, fmt.Errorf("%s: %w", p.name, domain.ErrInvalidPage)
	}
	return p.collect(ctx, page)
}

func (p *Paginated[T, E]) collect(ctx context.Context, page *domain.Page) (*domain.ItemsPage[T], error) {
	extractors, next, err := p.fetch(ctx, page)
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &domain.ExtractionError{URL: pageURL(page), Err: err}
	}

	if len(extractors) == 0 && !next.IsValid() {
		p.log.Debug("listing has no items")
		return domain.EmptyPage[T](), nil
	}

	c := p.newCollector()
	for _, e := range extractors {
		c.Commit(e)
	}

	result := domain.PageFrom[T](c, next)
	p.log.WithFields(logrus.Fields{
		"items":  len(result.Items),
		"errors": len(result.Errors),
		"more":   result.HasNextPage(),
	}).Debug("page collected")
	return result, nil
}

func pageURL(page *domain.Page) string {
	if page == nil {
		return ""
	}
	return page.URL
}
