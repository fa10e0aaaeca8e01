package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/config"
	"github.com/project-tktt/go-extractor/internal/downloader"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDownloader(t *testing.T) downloader.Downloader {
	t.Helper()
	d, err := downloader.NewHTTPDownloader(downloader.Config{}, nil)
	require.NoError(t, err)
	return d
}

func catalogue(baseURL string) *config.Catalogue {
	return &config.Catalogue{Services: []config.ServiceConfig{{
		ID:           3,
		Name:         "PeerTube",
		Capabilities: []string{"video"},
		BaseURL:      baseURL,
		Links: config.LinksConfig{
			Stream: config.PatternConfig{Pattern: `/w/(?P<id>\w+)$`, Template: baseURL + "/w/{id}"},
		},
		Clients: map[string]string{"client_id": "c-42"},
		Listings: []config.ListingConfig{
			{
				Name:    "trending",
				Kind:    "stream",
				URL:     "/api/v1/videos?client_id={client_id}",
				Headers: map[string]string{"Authorization": "Bearer {client_id}"},
				Items:   "data",
				Total:   "total",
				Paging:  module.Paging{Mode: module.PagingOffset, Size: 10},
				Fields:  extractor.Fields{Name: "name", URL: "url"},
			},
			{
				Name: "channel-feed",
				Type: "feed",
				URL:  "/feeds/videos.xml",
			},
		},
	}}}
}

// TestBuild verifies a catalogue becomes services whose listings fetch with client settings filled in
func TestBuild(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_id") != "c-42" || r.Header.Get("Authorization") != "Bearer c-42" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"data":  []any{map[string]any{"name": "first", "url": "/w/abc"}},
		})
	}))
	defer srv.Close()

	reg, err := Build(catalogue(srv.URL), newDownloader(t), nil)
	require.NoError(t, err)

	svc, err := reg.ByURL(srv.URL + "/w/abc")
	require.NoError(t, err)
	assert.Equal(t, "PeerTube", svc.Name)
	assert.Equal(t, []string{"trending", "channel-feed"}, svc.Listings())
	assert.True(t, svc.HasCapability(CapabilityVideo))

	l, err := svc.Listing("trending")
	require.NoError(t, err)
	page, err := l.InitialPage(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "first", page.Items[0].Name())
	assert.Equal(t, srv.URL+"/w/abc", page.Items[0].URL())
	assert.False(t, page.HasNextPage())
}

// TestBuildRefreshedClients verifies listings see client settings replaced after Build
func TestBuildRefreshedClients(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("client_id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 0, "data": []}`))
	}))
	defer srv.Close()

	reg, err := Build(catalogue(srv.URL), newDownloader(t), nil)
	require.NoError(t, err)
	svc, err := reg.ByID(3)
	require.NoError(t, err)

	svc.Clients.Replace(map[string]string{"client_id": "fresh"})
	l, err := svc.Listing("trending")
	require.NoError(t, err)
	_, err = l.InitialPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestBuildNilCatalogue(t *testing.T) {
	reg, err := Build(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, reg.All())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.ServiceConfig)
		want   string
	}{
		{
			name:   "capability",
			mutate: func(s *config.ServiceConfig) { s.Capabilities = []string{"smell"} },
			want:   "unknown capability",
		},
		{
			name:   "link pattern",
			mutate: func(s *config.ServiceConfig) { s.Links.Channel = config.PatternConfig{Pattern: `/c/(\w+)`, Template: "/c/{id}"} },
			want:   "channel links",
		},
		{
			name:   "listing type",
			mutate: func(s *config.ServiceConfig) { s.Listings[1].Type = "graphql" },
			want:   "unknown type",
		},
		{
			name:   "listing url",
			mutate: func(s *config.ServiceConfig) { s.Listings[0].URL = "" },
			want:   "url is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := catalogue("https://framatube.org")
			tt.mutate(&cat.Services[0])
			_, err := Build(cat, newDownloader(t), nil)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
