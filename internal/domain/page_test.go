package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPageIsValid verifies the single validity rule: a url or at least one id
func TestPageIsValid(t *testing.T) {
	tests := []struct {
		name string
		page *Page
		want bool
	}{
		{"nil page", nil, false},
		{"zero page", &Page{}, false},
		{"url only", NewPage("https://x/y?p=2"), true},
		{"ids only", NewIDsPage([]string{"a", "b"}), true},
		{"empty ids", NewIDsPage([]string{}), false},
		{"id without url", &Page{ID: "token"}, false},
		{"cookies and body only", (&Page{}).WithCookies(map[string]string{"a": "b"}).WithBody([]byte("x")), false},
		{"url and id", NewIDPage("https://x/api", "CAUQAA"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.IsValid())
		})
	}
}

// TestPageContentSetOnce verifies the content cache accepts one value only
func TestPageContentSetOnce(t *testing.T) {
	page := NewPage("https://x/feed")
	assert.False(t, page.HasContent())
	assert.Nil(t, page.Content())

	require.NoError(t, page.SetContent("parsed"))
	assert.True(t, page.HasContent())
	assert.Equal(t, "parsed", page.Content())

	err := page.SetContent("again")
	assert.ErrorIs(t, err, ErrContentAlreadySet)
	assert.Equal(t, "parsed", page.Content(), "first value should be kept")
}

// TestNilPageAccessors verifies a nil page behaves as the empty continuation
func TestNilPageAccessors(t *testing.T) {
	var page *Page
	assert.False(t, page.HasContent())
	assert.Nil(t, page.Content())
	assert.Equal(t, "Page{}", page.String())
	assert.ErrorIs(t, page.SetContent("parsed"), ErrInvalidPage)
}

// TestNewIDsPageCopies verifies the ids slice is not shared with the caller
func TestNewIDsPageCopies(t *testing.T) {
	ids := []string{"1", "2"}
	page := NewIDsPage(ids)
	ids[0] = "changed"

	assert.Equal(t, []string{"1", "2"}, page.IDs)
}

// TestEmptyPage verifies the terminal page has no items, no errors and no next page
func TestEmptyPage(t *testing.T) {
	page := EmptyPage[*StreamItem]()

	assert.Empty(t, page.Items)
	assert.Empty(t, page.Errors)
	assert.Nil(t, page.NextPage)
	assert.False(t, page.HasNextPage())
	assert.False(t, page.NextPage.IsValid())
}

type staticSource struct {
	items  []*StreamItem
	errors []error
}

func (s staticSource) Items() []*StreamItem { return s.items }
func (s staticSource) Errors() []error      { return s.errors }

// TestPageFrom verifies a page is assembled from an item source and continuation
func TestPageFrom(t *testing.T) {
	src := staticSource{
		items:  []*StreamItem{NewStreamItem(1, "https://x/1", "one", StreamTypeVideo)},
		errors: []error{NewParsingError("name", "bad name")},
	}

	page := PageFrom[*StreamItem](src, NewPage("https://x/?p=2"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "one", page.Items[0].Name())
	require.Len(t, page.Errors, 1)
	assert.True(t, page.HasNextPage())

	last := PageFrom[*StreamItem](src, nil)
	assert.False(t, last.HasNextPage())
}

// TestItemsPageNil verifies HasNextPage tolerates a nil page
func TestItemsPageNil(t *testing.T) {
	var page *ItemsPage[*ChannelItem]
	assert.False(t, page.HasNextPage())
}
