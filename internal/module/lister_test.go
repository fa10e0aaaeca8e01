package module

import (
	"context"
	"errors"
	"testing"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeListing serves pages keyed by continuation URL; "" is the first page
type fakeListing struct {
	pages map[string]*domain.ItemsPage[*domain.StreamItem]
	fail  map[string]error
	calls []string
}

func (f *fakeListing) InitialPage(ctx context.Context) (*domain.ItemsPage[*domain.StreamItem], error) {
	return f.serve("")
}

func (f *fakeListing) Page(ctx context.Context, page *domain.Page) (*domain.ItemsPage[*domain.StreamItem], error) {
	if !page.IsValid() {
		return nil, domain.ErrInvalidPage
	}
	return f.serve(page.URL)
}

func (f *fakeListing) serve(key string) (*domain.ItemsPage[*domain.StreamItem], error) {
	f.calls = append(f.calls, key)
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	return f.pages[key], nil
}

func streamItem(name string) *domain.StreamItem {
	return domain.NewStreamItem(1, "https://x/watch/"+name, name, domain.StreamTypeVideo)
}

func itemsPage(next *domain.Page, names ...string) *domain.ItemsPage[*domain.StreamItem] {
	items := make([]*domain.StreamItem, 0, len(names))
	for _, n := range names {
		items = append(items, streamItem(n))
	}
	return &domain.ItemsPage[*domain.StreamItem]{Items: items, NextPage: next, Errors: []error{}}
}

func threePages() *fakeListing {
	return &fakeListing{
		pages: map[string]*domain.ItemsPage[*domain.StreamItem]{
			"":   itemsPage(domain.NewPage("p2"), "a", "b"),
			"p2": itemsPage(domain.NewPage("p3"), "c"),
			"p3": itemsPage(nil, "d"),
		},
	}
}

// TestListerWalksStates verifies the state after every page of a three page listing
func TestListerWalksStates(t *testing.T) {
	listing := threePages()
	l := NewLister[*domain.StreamItem](listing)

	assert.Equal(t, StateUnfetched, l.State())
	assert.True(t, l.HasNext())
	assert.Nil(t, l.NextPage())

	page, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, StateInitialFetched, l.State())
	assert.Equal(t, "p2", l.NextPage().URL)

	_, err = l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateHasMore, l.State())

	page, err = l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "d", page.Items[0].Name())
	assert.Equal(t, StateExhausted, l.State())
	assert.False(t, l.HasNext())
	assert.Nil(t, l.NextPage())
	assert.Equal(t, 3, l.Fetched())

	assert.Equal(t, []string{"", "p2", "p3"}, listing.calls)
}

// TestListerSinglePage verifies a first page without continuation exhausts the listing
func TestListerSinglePage(t *testing.T) {
	listing := &fakeListing{pages: map[string]*domain.ItemsPage[*domain.StreamItem]{
		"": itemsPage(nil, "only"),
	}}
	l := NewLister[*domain.StreamItem](listing)

	_, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateExhausted, l.State())
	assert.False(t, l.HasNext())
}

// TestListerAfterExhaustion verifies Next past the end fails without calling the extractor
func TestListerAfterExhaustion(t *testing.T) {
	listing := &fakeListing{pages: map[string]*domain.ItemsPage[*domain.StreamItem]{
		"": itemsPage(nil, "only"),
	}}
	l := NewLister[*domain.StreamItem](listing)
	_, err := l.Next(context.Background())
	require.NoError(t, err)

	_, err = l.Next(context.Background())
	assert.ErrorIs(t, err, domain.ErrExhausted)
	assert.Len(t, listing.calls, 1)
}

// TestListerRetryAfterFailure verifies a failed fetch keeps the continuation for a retry
func TestListerRetryAfterFailure(t *testing.T) {
	listing := threePages()
	boom := errors.New("boom")
	listing.fail = map[string]error{"p2": boom}
	l := NewLister[*domain.StreamItem](listing)

	_, err := l.Next(context.Background())
	require.NoError(t, err)

	_, err = l.Next(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateInitialFetched, l.State())
	assert.Equal(t, "p2", l.NextPage().URL)

	delete(listing.fail, "p2")
	page, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c", page.Items[0].Name())
}

// TestListerNilPage verifies a nil page from the extractor is treated as an empty last page
func TestListerNilPage(t *testing.T) {
	l := NewLister[*domain.StreamItem](&fakeListing{})

	page, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, StateExhausted, l.State())
}

// TestListerIDContinuation verifies a continuation without URL but with ids keeps the listing going
func TestListerIDContinuation(t *testing.T) {
	listing := &fakeListing{pages: map[string]*domain.ItemsPage[*domain.StreamItem]{
		"": itemsPage(domain.NewIDsPage([]string{"x", "y"}), "a"),
	}}
	l := NewLister[*domain.StreamItem](listing)
	_, err := l.Next(context.Background())
	require.NoError(t, err)

	assert.True(t, l.HasNext())
	assert.Equal(t, []string{"x", "y"}, l.NextPage().IDs)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unfetched", StateUnfetched.String())
	assert.Equal(t, "initial_fetched", StateInitialFetched.String())
	assert.Equal(t, "has_more", StateHasMore.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "State(9)", State(9).String())
}

// TestWiden verifies a typed listing is exposed as a listing of items
func TestWiden(t *testing.T) {
	wide := Widen[*domain.StreamItem](threePages())

	page, err := wide.InitialPage(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, domain.InfoTypeStream, page.Items[0].InfoType())
	assert.Equal(t, "p2", page.NextPage.URL)

	_, err = wide.Page(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPage)
}
