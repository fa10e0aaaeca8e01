package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/project-tktt/go-extractor/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticListing serves two pages keyed by the continuation URL
type staticListing struct {
	pages map[string]*domain.ItemsPage[domain.Item]
	fail  bool
}

func (l *staticListing) InitialPage(ctx context.Context) (*domain.ItemsPage[domain.Item], error) {
	return l.Page(ctx, domain.NewPage("first"))
}

func (l *staticListing) Page(_ context.Context, page *domain.Page) (*domain.ItemsPage[domain.Item], error) {
	if l.fail {
		return nil, errors.New("unreachable")
	}
	p, ok := l.pages[page.URL]
	if !ok {
		return nil, domain.ErrInvalidPage
	}
	return p, nil
}

func stream(url, name string) domain.Item {
	return domain.NewStreamItem(3, url, name, domain.StreamTypeVideo)
}

func twoPages() *staticListing {
	return &staticListing{pages: map[string]*domain.ItemsPage[domain.Item]{
		"first": {
			Items:    []domain.Item{stream("https://x/w/1", "one"), stream("https://x/w/2", "two")},
			NextPage: domain.NewPage("second"),
			Errors:   []error{domain.NewParsingError("name", "missing")},
		},
		"second": {
			Items: []domain.Item{stream("https://x/w/3", "three")},
		},
	}}
}

type fakeDedup struct {
	seen map[string]bool
}

func (d *fakeDedup) Filter(_ context.Context, records []domain.Record) ([]domain.Record, error) {
	var fresh []domain.Record
	for _, r := range records {
		if d.seen[r.URL] {
			continue
		}
		d.seen[r.URL] = true
		fresh = append(fresh, r)
	}
	return fresh, nil
}

type fakePublisher struct {
	records []domain.Record
}

func (p *fakePublisher) PublishBatch(_ context.Context, records []domain.Record) error {
	p.records = append(p.records, records...)
	return nil
}

type fakeRecorder struct {
	pages, queued, unchanged, failures int
}

func (r *fakeRecorder) ObservePage(string, int, int)     { r.pages++ }
func (r *fakeRecorder) ObserveFailure(string, error)     { r.failures++ }
func (r *fakeRecorder) RecordsQueued(_ string, n int)    { r.queued += n }
func (r *fakeRecorder) RecordsUnchanged(_ string, n int) { r.unchanged += n }

func registry(t *testing.T, listings map[string]module.ListExtractor[domain.Item]) *service.Registry {
	t.Helper()
	svc := service.NewStreamingService(3, "PeerTube", service.CapabilityVideo)
	for _, name := range []string{"trending", "broken"} {
		if l, ok := listings[name]; ok {
			svc.AddListing(name, l)
		}
	}
	reg := service.NewRegistry()
	require.NoError(t, reg.Register(svc))
	return reg
}

// TestRunAll verifies records are stamped, deduplicated across runs and published
func TestRunAll(t *testing.T) {
	reg := registry(t, map[string]module.ListExtractor[domain.Item]{"trending": twoPages()})
	dedup := &fakeDedup{seen: map[string]bool{}}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := New(reg, dedup, pub, module.CrawlConfig{}, nil).WithRecorder(rec)
	p.now = func() time.Time { return fixed }

	results := p.RunAll(context.Background())
	stats := results["PeerTube/trending"]
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 3, stats.Items)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 3, stats.Queued)
	assert.Zero(t, stats.Unchanged)

	require.Len(t, pub.records, 3)
	r := pub.records[0]
	assert.Equal(t, "PeerTube", r.Service)
	assert.Equal(t, "PeerTube/trending", r.Listing)
	assert.Equal(t, fixed, r.ExtractedAt)
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, r.RunID, pub.records[2].RunID)
	assert.Equal(t, "stream", r.Kind)

	second := p.RunAll(context.Background())["PeerTube/trending"]
	assert.Zero(t, second.Queued)
	assert.Equal(t, 3, second.Unchanged)
	assert.Len(t, pub.records, 3)

	assert.Equal(t, 4, rec.pages)
	assert.Equal(t, 3, rec.queued)
	assert.Equal(t, 3, rec.unchanged)
}

// TestRunAllContinuesAfterFailure verifies one broken listing does not stop the others
func TestRunAllContinuesAfterFailure(t *testing.T) {
	reg := registry(t, map[string]module.ListExtractor[domain.Item]{
		"trending": twoPages(),
		"broken":   &staticListing{fail: true},
	})
	pub := &fakePublisher{}
	rec := &fakeRecorder{}

	results := New(reg, nil, pub, module.CrawlConfig{}, nil).WithRecorder(rec).RunAll(context.Background())
	assert.Equal(t, 3, results["PeerTube/trending"].Queued)
	assert.Zero(t, results["PeerTube/broken"].Pages)
	assert.Equal(t, 1, rec.failures)
	assert.Len(t, pub.records, 3)
}

func TestRunAllCancelled(t *testing.T) {
	reg := registry(t, map[string]module.ListExtractor[domain.Item]{"trending": twoPages()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := &fakePublisher{}
	results := New(reg, nil, pub, module.CrawlConfig{}, nil).RunAll(ctx)
	assert.Empty(t, results)
	assert.Empty(t, pub.records)
}

func TestScheduleOnce(t *testing.T) {
	reg := registry(t, map[string]module.ListExtractor[domain.Item]{"trending": twoPages()})
	pub := &fakePublisher{}

	New(reg, nil, pub, module.CrawlConfig{}, nil).Schedule(context.Background(), 0)
	assert.Len(t, pub.records, 3)
}
