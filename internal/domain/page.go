package domain

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samber/mo"
)

// Page is a continuation token pointing at the next batch of a listing.
// A nil *Page is the canonical "no next page" value.
type Page struct {
	URL     string
	ID      string
	IDs     []string
	Cookies map[string]string
	Body    []byte

	content mo.Option[any]
}

// NewPage creates a page addressed by url
func NewPage(url string) *Page {
	return &Page{URL: url}
}

// NewIDPage creates a page addressed by url plus an opaque id such as a continuation token or offset
func NewIDPage(url, id string) *Page {
	return &Page{URL: url, ID: id}
}

// NewIDsPage creates a page addressed by a batch of ids
func NewIDsPage(ids []string) *Page {
	return &Page{IDs: slices.Clone(ids)}
}

// WithCookies returns p with the given cookies attached
func (p *Page) WithCookies(cookies map[string]string) *Page {
	p.Cookies = maps.Clone(cookies)
	return p
}

// WithBody returns p with an already fetched body attached
func (p *Page) WithBody(body []byte) *Page {
	p.Body = body
	return p
}

// IsValid reports whether p can be used to fetch another page: it needs a url or at least one id
func (p *Page) IsValid() bool {
	if p == nil {
		return false
	}
	return p.URL != "" || len(p.IDs) > 0
}

// SetContent caches a parsed form of the page. It may be set only once.
func (p *Page) SetContent(content any) error {
	if p == nil {
		return ErrInvalidPage
	}
	if p.content.IsPresent() {
		return ErrContentAlreadySet
	}
	p.content = mo.Some(content)
	return nil
}

func (p *Page) HasContent() bool {
	return p != nil && p.content.IsPresent()
}

// Content returns the cached content, or nil if none was set
func (p *Page) Content() any {
	if p == nil {
		return nil
	}
	return p.content.OrEmpty()
}

func (p *Page) String() string {
	if p == nil {
		return "Page{}"
	}
	return fmt.Sprintf("Page{url=%s, id=%s, ids=%d, body=%d bytes}", p.URL, p.ID, len(p.IDs), len(p.Body))
}

const (
	// ItemCountUnknown is reported when a listing cannot tell how many items it has
	ItemCountUnknown = -1
	// ItemCountInfinite is reported for generated listings such as mixes
	ItemCountInfinite = -2
	// ItemCountMoreThan100 is reported when a platform only says "100+"
	ItemCountMoreThan100 = -3
)

// ItemsPage is the result of one paging step
type ItemsPage[T Item] struct {
	Items    []T
	NextPage *Page
	Errors   []error
}

// HasNextPage reports whether NextPage can be fetched
func (p *ItemsPage[T]) HasNextPage() bool {
	return p != nil && p.NextPage.IsValid()
}

// EmptyPage is returned when a listing legitimately has no items
func EmptyPage[T Item]() *ItemsPage[T] {
	return &ItemsPage[T]{Items: []T{}, Errors: []error{}}
}

// ItemSource is anything that accumulated items and the errors recovered while doing so
type ItemSource[T Item] interface {
	Items() []T
	Errors() []error
}

// PageFrom assembles a page from the current contents of src
func PageFrom[T Item](src ItemSource[T], next *Page) *ItemsPage[T] {
	return &ItemsPage[T]{
		Items:    src.Items(),
		NextPage: next,
		Errors:   src.Errors(),
	}
}
