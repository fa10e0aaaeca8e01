package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peertube(t *testing.T) *StreamingService {
	t.Helper()
	svc := NewStreamingService(3, "PeerTube", CapabilityVideo, CapabilityLive)
	svc.Streams = videoFactory(t)

	channels, err := NewPatternFactory(`^https://framatube\.org/(?:c|video-channels)/(?P<id>[\w.-]+)`, "https://framatube.org/c/{id}")
	require.NoError(t, err)
	svc.Channels = channels

	playlists, err := NewPatternFactory(`^https://framatube\.org/w/p/(?P<id>[\w-]+)`, "https://framatube.org/w/p/{id}")
	require.NoError(t, err)
	svc.Playlists = playlists
	return svc
}

// TestLinkTypeOf verifies streams are matched before channels and playlists
func TestLinkTypeOf(t *testing.T) {
	svc := peertube(t)

	tests := []struct {
		url  string
		want LinkType
	}{
		{"https://framatube.org/w/abc", LinkStream},
		{"https://framatube.org/c/blender_channel", LinkChannel},
		{"https://framatube.org/video-channels/blender", LinkChannel},
		// also matched by the stream pattern, which wins
		{"https://framatube.org/w/p/list1", LinkStream},
		{"https://example.com/w/abc", LinkNone},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.LinkTypeOf(tt.url))
		})
	}
}

func TestResolve(t *testing.T) {
	svc := peertube(t)

	kind, h, err := svc.Resolve("https://framatube.org/c/blender_channel")
	require.NoError(t, err)
	assert.Equal(t, LinkChannel, kind)
	assert.Equal(t, "blender_channel", h.ID)

	_, _, err = svc.Resolve("https://example.com")
	assert.ErrorIs(t, err, domain.ErrParsing)
}

func TestListings(t *testing.T) {
	svc := NewStreamingService(1, "Test")
	svc.AddListing("trending", nil)
	svc.AddListing("recent", nil)
	svc.AddListing("trending", nil)

	assert.Equal(t, []string{"trending", "recent"}, svc.Listings())

	_, err := svc.Listing("missing")
	assert.ErrorIs(t, err, ErrUnknownListing)
}

func TestCapabilities(t *testing.T) {
	svc := peertube(t)
	assert.True(t, svc.HasCapability(CapabilityLive))
	assert.False(t, svc.HasCapability(CapabilityAudio))
	assert.Equal(t, "3:PeerTube", svc.String())

	_, err := ParseCapability("smell")
	assert.Error(t, err)
	c, err := ParseCapability(" Audio ")
	require.NoError(t, err)
	assert.Equal(t, CapabilityAudio, c)
}

// TestRegistry verifies lookups by id, case-insensitive name and url
func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(peertube(t)))
	require.NoError(t, reg.Register(NewStreamingService(4, "SoundCloud", CapabilityAudio)))

	assert.ErrorContains(t, reg.Register(NewStreamingService(3, "Other")), "already registered")
	assert.ErrorContains(t, reg.Register(NewStreamingService(9, "peertube")), "already registered")

	svc, err := reg.ByID(4)
	require.NoError(t, err)
	assert.Equal(t, "SoundCloud", svc.Name)

	svc, err = reg.ByName("peertube")
	require.NoError(t, err)
	assert.Equal(t, 3, svc.ID)

	svc, err = reg.ByURL("https://framatube.org/w/abc")
	require.NoError(t, err)
	assert.Equal(t, 3, svc.ID)

	_, err = reg.ByURL("https://example.com")
	assert.ErrorIs(t, err, domain.ErrParsing)
	_, err = reg.ByID(99)
	assert.Error(t, err)
	_, err = reg.ByName("nope")
	assert.Error(t, err)

	assert.Len(t, reg.All(), 2)
}

// TestClientStore verifies values are copied in and out and swapped as a whole
func TestClientStore(t *testing.T) {
	initial := map[string]string{"client_id": "a1"}
	s := NewClientStore(initial)
	initial["client_id"] = "changed"

	v, ok := s.Get("client_id")
	assert.True(t, ok)
	assert.Equal(t, "a1", v)

	assert.Equal(t, "https://api/x?client_id=a1&k={key}", s.Expand("https://api/x?client_id={client_id}&k={key}"))

	s.Replace(map[string]string{"key": "k2"})
	_, ok = s.Get("client_id")
	assert.False(t, ok)

	snap := s.Snapshot()
	snap["key"] = "mutated"
	v, _ = s.Get("key")
	assert.Equal(t, "k2", v)
}

func TestClientStoreConcurrentRefresh(t *testing.T) {
	s := NewClientStore(nil)
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Replace(map[string]string{"client_id": fmt.Sprint(i)})
		}()
		go func() {
			defer wg.Done()
			_ = s.Expand("{client_id}")
		}()
	}
	wg.Wait()

	_, ok := s.Get("client_id")
	assert.True(t, ok)
}
