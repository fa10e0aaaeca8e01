package module

import (
	"context"
	"errors"
	"testing"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	pages    int
	items    int
	errors   int
	failures []error
}

func (o *recordingObserver) ObservePage(_ string, items, errs int) {
	o.pages++
	o.items += items
	o.errors += errs
}

func (o *recordingObserver) ObserveFailure(_ string, err error) {
	o.failures = append(o.failures, err)
}

// TestCrawlAllPages verifies every page is fetched and its items returned in order
func TestCrawlAllPages(t *testing.T) {
	c := NewCrawler[*domain.StreamItem]("uploads", threePages(), CrawlConfig{}, nil)
	assert.Equal(t, "uploads", c.Name())

	items, err := c.Crawl(context.Background())
	require.NoError(t, err)
	got := make([]string, 0, len(items))
	for _, it := range items {
		got = append(got, it.Name())
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

// TestCrawlWithCallbackStats verifies page numbers, stats and observer notifications
func TestCrawlWithCallbackStats(t *testing.T) {
	listing := threePages()
	listing.pages["p2"].Errors = []error{errors.New("bad item")}
	obs := &recordingObserver{}
	c := NewCrawler[*domain.StreamItem]("uploads", listing, CrawlConfig{}, nil).WithObserver(obs)

	var numbers []int
	stats, err := c.CrawlWithCallback(context.Background(), func(_ context.Context, n int, page *domain.ItemsPage[*domain.StreamItem]) error {
		numbers = append(numbers, n)
		return errors.New("handler errors are logged only")
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, numbers)
	assert.Equal(t, CrawlStats{Pages: 3, Items: 4, Errors: 1}, stats)
	assert.Equal(t, 3, obs.pages)
	assert.Equal(t, 4, obs.items)
	assert.Equal(t, 1, obs.errors)
	assert.Empty(t, obs.failures)
}

// TestCrawlMaxPages verifies the crawl stops at the page cap
func TestCrawlMaxPages(t *testing.T) {
	listing := threePages()
	c := NewCrawler[*domain.StreamItem]("uploads", listing, CrawlConfig{MaxPages: 2}, nil)

	stats, err := c.CrawlWithCallback(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, []string{"", "p2"}, listing.calls)
}

// TestCrawlPageFailure verifies a failed page ends the crawl with the error
func TestCrawlPageFailure(t *testing.T) {
	listing := threePages()
	boom := errors.New("boom")
	listing.fail = map[string]error{"p3": boom}
	obs := &recordingObserver{}
	c := NewCrawler[*domain.StreamItem]("uploads", listing, CrawlConfig{}, nil).WithObserver(obs)

	stats, err := c.CrawlWithCallback(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch page 3")
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, []error{boom}, obs.failures)
}

// TestCrawlCancelled verifies a cancelled context stops the crawl before fetching
func TestCrawlCancelled(t *testing.T) {
	listing := threePages()
	c := NewCrawler[*domain.StreamItem]("uploads", listing, CrawlConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.CrawlWithCallback(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, listing.calls)
}
