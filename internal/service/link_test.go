package service

import (
	"testing"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func videoFactory(t *testing.T) *PatternFactory {
	t.Helper()
	f, err := NewPatternFactory(`^https?://(?:www\.)?framatube\.org/(?:w|videos/watch)/(?P<id>[\w-]+)`, "https://framatube.org/w/{id}")
	require.NoError(t, err)
	return f
}

// TestFromURL verifies a URL is reduced to its id and rebuilt in canonical form
func TestFromURL(t *testing.T) {
	f := videoFactory(t)

	h, err := FromURL(f, "https://www.framatube.org/videos/watch/abc-123?start=10")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", h.ID)
	assert.Equal(t, "https://framatube.org/w/abc-123", h.URL)
	assert.Equal(t, "https://www.framatube.org/videos/watch/abc-123?start=10", h.OriginalURL)
}

// TestFromURLFollowsGoogleRedirect verifies search result redirects are unwrapped
func TestFromURLFollowsGoogleRedirect(t *testing.T) {
	f := videoFactory(t)

	redirect := "https://www.google.com/url?sa=t&url=https%3A%2F%2Fframatube.org%2Fw%2Fxyz"
	h, err := FromURL(f, redirect)
	require.NoError(t, err)
	assert.Equal(t, "xyz", h.ID)
	assert.Equal(t, redirect, h.OriginalURL)
}

func TestFromURLRejected(t *testing.T) {
	f := videoFactory(t)

	_, err := FromURL(f, "https://example.com/w/abc")
	assert.ErrorIs(t, err, domain.ErrParsing)
	assert.ErrorContains(t, err, "malformed unacceptable url")

	_, err = FromURL(f, "")
	assert.ErrorIs(t, err, domain.ErrParsing)
}

func TestFromID(t *testing.T) {
	f := videoFactory(t)

	h, err := FromID(f, "abc")
	require.NoError(t, err)
	assert.Equal(t, LinkHandler{OriginalURL: "https://framatube.org/w/abc", URL: "https://framatube.org/w/abc", ID: "abc"}, h)

	_, err = FromID(f, "")
	assert.ErrorIs(t, err, domain.ErrParsing)
}

// TestNewPatternFactoryValidation verifies the id group and placeholder are required
func TestNewPatternFactoryValidation(t *testing.T) {
	_, err := NewPatternFactory(`/w/(\w+)`, "https://x/{id}")
	assert.ErrorContains(t, err, "no id group")

	_, err = NewPatternFactory(`/w/(?P<id>\w+)`, "https://x/")
	assert.ErrorContains(t, err, "no {id} placeholder")

	_, err = NewPatternFactory(`/w/(?P<id>`, "https://x/{id}")
	assert.Error(t, err)
}

func TestListLinkHandlerCopiesFilters(t *testing.T) {
	filters := []string{"videos"}
	h := NewListLinkHandler(LinkHandler{ID: "c"}, filters, "new")
	filters[0] = "changed"

	assert.Equal(t, []string{"videos"}, h.ContentFilters)
	assert.Equal(t, "new", h.SortFilter)
	assert.Equal(t, "c", h.ID)
}

func TestLinkTypeString(t *testing.T) {
	assert.Equal(t, "stream", LinkStream.String())
	assert.Equal(t, "channel", LinkChannel.String())
	assert.Equal(t, "playlist", LinkPlaylist.String())
	assert.Equal(t, "none", LinkNone.String())
}
