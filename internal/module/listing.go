package module

import (
	"context"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/samber/lo"
)

// ListExtractor produces one logical listing, such as a channel's uploads or a search query's results, page by page
type ListExtractor[T domain.Item] interface {
	// InitialPage fetches the first page. Callers should call it once per listing.
	InitialPage(ctx context.Context) (*domain.ItemsPage[T], error)

	// Page fetches the page a continuation points at.
	// An invalid continuation is rejected with domain.ErrInvalidPage; callers check HasNextPage first.
	Page(ctx context.Context, page *domain.Page) (*domain.ItemsPage[T], error)
}

// Widen exposes a listing of a concrete item kind as a listing of domain.Item
func Widen[T domain.Item](l ListExtractor[T]) ListExtractor[domain.Item] {
	return widened[T]{inner: l}
}

type widened[T domain.Item] struct {
	inner ListExtractor[T]
}

func (w widened[T]) InitialPage(ctx context.Context) (*domain.ItemsPage[domain.Item], error) {
	page, err := w.inner.InitialPage(ctx)
	if err != nil {
		return nil, err
	}
	return widenPage(page), nil
}

func (w widened[T]) Page(ctx context.Context, next *domain.Page) (*domain.ItemsPage[domain.Item], error) {
	page, err := w.inner.Page(ctx, next)
	if err != nil {
		return nil, err
	}
	return widenPage(page), nil
}

func widenPage[T domain.Item](page *domain.ItemsPage[T]) *domain.ItemsPage[domain.Item] {
	if page == nil {
		return domain.EmptyPage[domain.Item]()
	}
	return &domain.ItemsPage[domain.Item]{
		Items:    lo.Map(page.Items, func(it T, _ int) domain.Item { return it }),
		NextPage: page.NextPage,
		Errors:   page.Errors,
	}
}
