package indexer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES answers the handful of endpoints the indexer uses
type fakeES struct {
	mu      sync.Mutex
	exists  bool
	created bool
	docs    []map[string]any
	reject  string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`))
	case r.Method == http.MethodHead && r.URL.Path == "/items":
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/items":
		f.created, f.exists = true, true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.Method == http.MethodPost && r.URL.Path == "/_bulk":
		f.bulk(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeES) bulk(w http.ResponseWriter, r *http.Request) {
	type result struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  any    `json:"error,omitempty"`
	}
	var items []map[string]result
	failed := false

	scanner := bufio.NewScanner(r.Body)
	for scanner.Scan() {
		var meta map[string]map[string]string
		_ = json.Unmarshal(scanner.Bytes(), &meta)
		if !scanner.Scan() {
			break
		}
		var doc map[string]any
		_ = json.Unmarshal(scanner.Bytes(), &doc)

		id := meta["index"]["_id"]
		if id == f.reject {
			failed = true
			items = append(items, map[string]result{"index": {ID: id, Status: 400, Error: map[string]string{"type": "mapper_parsing_exception", "reason": "bad"}}})
			continue
		}
		f.docs = append(f.docs, doc)
		items = append(items, map[string]result{"index": {ID: id, Status: 201}})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": failed, "items": items})
}

func newES(t *testing.T, fake *fakeES) *ElasticsearchIndexer {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	idx, err := NewElasticsearchIndexer([]string{srv.URL}, "items", nil)
	require.NoError(t, err)
	return idx
}

func records() []*domain.Record {
	return []*domain.Record{
		{ID: "a", ServiceID: 3, Kind: "stream", URL: "https://framatube.org/w/a", Name: "A"},
		{ID: "b", ServiceID: 3, Kind: "channel", URL: "https://framatube.org/c/b", Name: "B"},
	}
}

// TestElasticsearchBulkIndex verifies every record is sent and rejected items do not fail the batch
func TestElasticsearchBulkIndex(t *testing.T) {
	fake := &fakeES{reject: "b"}
	idx := newES(t, fake)

	require.NoError(t, idx.BulkIndex(context.Background(), records()))
	require.Len(t, fake.docs, 1)
	assert.Equal(t, "A", fake.docs[0]["name"])
	assert.Equal(t, "stream", fake.docs[0]["kind"])

	assert.NoError(t, idx.BulkIndex(context.Background(), nil))
}

func TestElasticsearchEnsureIndex(t *testing.T) {
	fake := &fakeES{}
	idx := newES(t, fake)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.True(t, fake.created)

	fake.created = false
	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.False(t, fake.created)
}

func TestBulkBody(t *testing.T) {
	idx := &ElasticsearchIndexer{indexName: "items"}
	body, err := idx.bulkBody(records())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_index":"items","_id":"a"}}`, lines[0])
	assert.Contains(t, lines[3], `"url":"https://framatube.org/c/b"`)
}

func TestUpsertQuery(t *testing.T) {
	q := upsertQuery(`"items"`)
	assert.True(t, strings.HasPrefix(q, `INSERT INTO "items" (id, service_id,`))
	assert.Contains(t, q, "$32)")
	assert.Contains(t, q, "name = EXCLUDED.name")
	assert.NotContains(t, q, "id = EXCLUDED.id,")
	assert.True(t, strings.HasSuffix(q, "updated_at = NOW()"))
}

// TestRecordArgs verifies one value per column with nil dates passed as NULL
func TestRecordArgs(t *testing.T) {
	r := &domain.Record{
		ID:         "a",
		Thumbnails: []domain.Image{domain.NewUnsizedImage("https://x/t.jpg")},
	}
	args, err := recordArgs(r)
	require.NoError(t, err)
	require.Len(t, args, len(recordColumns))

	col := func(name string) any {
		for n, c := range recordColumns {
			if c == name {
				return args[n]
			}
		}
		t.Fatalf("no column %s", name)
		return nil
	}
	assert.Equal(t, "a", col("id"))
	assert.Nil(t, col("upload_date"))
	assert.Contains(t, string(col("thumbnails").([]byte)), "https://x/t.jpg")
}

type stubIndexer struct {
	calls int
	err   error
}

func (s *stubIndexer) BulkIndex(context.Context, []*domain.Record) error {
	s.calls++
	return s.err
}

func TestMulti(t *testing.T) {
	first, second := &stubIndexer{}, &stubIndexer{}
	require.NoError(t, Multi{first, second}.BulkIndex(context.Background(), records()))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)

	failing := &stubIndexer{err: errors.New("down")}
	third := &stubIndexer{}
	assert.Error(t, Multi{failing, third}.BulkIndex(context.Background(), records()))
	assert.Zero(t, third.calls)
}
