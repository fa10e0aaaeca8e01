package collector

import (
	"errors"
	"slices"

	"github.com/project-tktt/go-extractor/internal/domain"
)

// Outcome is what happened to one committed extractor
type Outcome int

const (
	// OutcomeItem means an item was produced and added
	OutcomeItem Outcome = iota
	// OutcomeSkip means the element was an advertisement and was dropped silently
	OutcomeSkip
	// OutcomeError means the item could not be built and the error was recorded
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeItem:
		return "item"
	case OutcomeSkip:
		return "skip"
	default:
		return "error"
	}
}

// Classify maps the error returned by an extraction to its outcome
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeItem
	case errors.Is(err, domain.ErrAdvertisement):
		return OutcomeSkip
	default:
		return OutcomeError
	}
}

// ExtractFunc builds one item from an extractor.
// A non-nil error means no item; recovered holds failures of optional fields on a successfully built item.
type ExtractFunc[T domain.Item, E any] func(serviceID int, e E) (item T, recovered []error, err error)

// ItemCollector is the read and write surface shared by every collector
type ItemCollector[T domain.Item, E any] interface {
	Commit(e E) Outcome
	Extract(e E) (T, error)
	Items() []T
	Errors() []error
	Reset()
	ServiceID() int
}

// Collector accumulates the items of one page, isolating the failure of any single item.
// It is not safe for concurrent use.
type Collector[T domain.Item, E any] struct {
	serviceID int
	extract   ExtractFunc[T, E]
	compare   func(a, b T) int
	items     []T
	errors    []error
}

// Option configures a Collector
type Option[T domain.Item] func(*options[T])

type options[T domain.Item] struct {
	compare func(a, b T) int
}

// WithComparator sorts the items returned by Items. The sort is stable and happens on every read.
func WithComparator[T domain.Item](compare func(a, b T) int) Option[T] {
	return func(o *options[T]) {
		o.compare = compare
	}
}

// New creates a collector that builds items with extract
func New[T domain.Item, E any](serviceID int, extract ExtractFunc[T, E], opts ...Option[T]) *Collector[T, E] {
	var o options[T]
	for _, opt := range opts {
		opt(&o)
	}
	return &Collector[T, E]{
		serviceID: serviceID,
		extract:   extract,
		compare:   o.compare,
		items:     []T{},
		errors:    []error{},
	}
}

func (c *Collector[T, E]) ServiceID() int {
	return c.serviceID
}

// Extract builds an item without adding it. Failures of optional fields are still recorded.
func (c *Collector[T, E]) Extract(e E) (T, error) {
	item, recovered, err := c.extract(c.serviceID, e)
	if err != nil {
		var zero T
		return zero, err
	}
	c.errors = append(c.errors, recovered...)
	return item, nil
}

// Commit extracts an item and adds it. Advertisements are dropped and any other failure is recorded.
func (c *Collector[T, E]) Commit(e E) Outcome {
	item, err := c.Extract(e)
	outcome := Classify(err)
	switch outcome {
	case OutcomeItem:
		c.items = append(c.items, item)
	case OutcomeError:
		c.errors = append(c.errors, err)
	}
	return outcome
}

// AddError records a failure that did not stop the page, such as an element the caller could not even wrap
func (c *Collector[T, E]) AddError(err error) {
	c.errors = append(c.errors, err)
}

// Items returns the collected items, sorted when a comparator was given.
// The slice is a copy: items committed later show up on the next call.
func (c *Collector[T, E]) Items() []T {
	items := slices.Clone(c.items)
	if c.compare != nil {
		slices.SortStableFunc(items, c.compare)
	}
	return items
}

// Errors returns recovered failures in the order they happened
func (c *Collector[T, E]) Errors() []error {
	return slices.Clone(c.errors)
}

// Reset empties the collector so it can be reused for another page
func (c *Collector[T, E]) Reset() {
	clear(c.items)
	c.items = c.items[:0]
	clear(c.errors)
	c.errors = c.errors[:0]
}
