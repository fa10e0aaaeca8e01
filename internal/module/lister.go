package module

import (
	"context"
	"fmt"

	"github.com/project-tktt/go-extractor/internal/domain"
)

// State is where a Lister is in its listing
type State int

const (
	// StateUnfetched means nothing has been fetched yet
	StateUnfetched State = iota
	// StateInitialFetched means the first page was fetched and it points at more
	StateInitialFetched
	// StateHasMore means a later page was fetched and it points at more
	StateHasMore
	// StateExhausted means the last fetched page had no continuation
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateUnfetched:
		return "unfetched"
	case StateInitialFetched:
		return "initial_fetched"
	case StateHasMore:
		return "has_more"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Lister walks a ListExtractor, remembering the continuation between calls.
// A Lister belongs to one goroutine at a time.
type Lister[T domain.Item] struct {
	extractor ListExtractor[T]
	state     State
	next      *domain.Page
	fetched   int
}

func NewLister[T domain.Item](extractor ListExtractor[T]) *Lister[T] {
	return &Lister[T]{extractor: extractor}
}

// Next fetches the first page on the first call and the continuation afterwards.
// After the last page it returns domain.ErrExhausted without touching the extractor.
// A failed fetch leaves the state unchanged, so the same page can be retried.
func (l *Lister[T]) Next(ctx context.Context) (*domain.ItemsPage[T], error) {
	var (
		page *domain.ItemsPage[T]
		err  error
	)

	switch l.state {
	case StateUnfetched:
		page, err = l.extractor.InitialPage(ctx)
	case StateExhausted:
		return nil, domain.ErrExhausted
	default:
		page, err = l.extractor.Page(ctx, l.next)
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = domain.EmptyPage[T]()
	}

	first := l.state == StateUnfetched
	l.fetched++
	l.next = page.NextPage

	switch {
	case !page.HasNextPage():
		l.state = StateExhausted
	case first:
		l.state = StateInitialFetched
	default:
		l.state = StateHasMore
	}
	return page, nil
}

// HasNext reports whether Next would fetch something. It does no I/O.
func (l *Lister[T]) HasNext() bool {
	if l.state == StateUnfetched {
		return true
	}
	return l.next.IsValid()
}

// NextPage returns the continuation the next call will fetch, nil before the first page and after the last
func (l *Lister[T]) NextPage() *domain.Page {
	if !l.next.IsValid() {
		return nil
	}
	return l.next
}

func (l *Lister[T]) State() State {
	return l.state
}

// Fetched returns how many pages have been fetched so far
func (l *Lister[T]) Fetched() int {
	return l.fetched
}
