package extractor

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func mustDecode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

var videoFields = &Fields{
	Name:             "title",
	URL:              "id",
	URLTemplate:      "/watch?v={id}",
	Thumbnails:       "thumbnails",
	Ad:               "sponsored",
	Live:             "is_live",
	Duration:         "length",
	ViewCount:        "views",
	UploaderName:     "owner.name",
	UploaderURL:      "owner.path",
	UploaderAvatars:  "owner.avatar",
	UploaderVerified: "owner.verified",
	UploadDate:       "published",
	ShortDescription: "snippet",
}

// TestJSONItemStream verifies a fully populated stream object
func TestJSONItemStream(t *testing.T) {
	data := mustDecode(t, `{
		"id": "abc",
		"title": "  Cats &amp; Dogs ",
		"thumbnails": [{"url": "/t/abc.jpg", "width": 320, "height": 180}, "https://cdn.x/abc_hq.jpg"],
		"length": "4:05",
		"views": "1.2K views",
		"owner": {"name": "Uploader", "path": "/c/up", "avatar": "https://cdn.x/up.png", "verified": true},
		"published": "3 days ago",
		"snippet": "short"
	}`)
	item := NewJSONItem(data, videoFields, mustURL(t, "https://video.example/feed"), testNow)

	name, err := item.Name()
	require.NoError(t, err)
	assert.Equal(t, "Cats & Dogs", name)

	u, err := item.URL()
	require.NoError(t, err)
	assert.Equal(t, "https://video.example/watch?v=abc", u)

	thumbs, err := item.Thumbnails()
	require.NoError(t, err)
	require.Len(t, thumbs, 2)
	assert.Equal(t, domain.NewImage("https://video.example/t/abc.jpg", 320, 180), thumbs[0])
	assert.Equal(t, domain.NewUnsizedImage("https://cdn.x/abc_hq.jpg"), thumbs[1])

	ad, err := item.IsAd()
	require.NoError(t, err)
	assert.False(t, ad)

	st, err := item.StreamType()
	require.NoError(t, err)
	assert.Equal(t, domain.StreamTypeVideo, st)

	duration, err := item.Duration()
	require.NoError(t, err)
	assert.Equal(t, int64(245), duration)

	views, err := item.ViewCount()
	require.NoError(t, err)
	assert.Equal(t, int64(1200), views)

	uploaderURL, err := item.UploaderURL()
	require.NoError(t, err)
	assert.Equal(t, "https://video.example/c/up", uploaderURL)

	verified, err := item.UploaderVerified()
	require.NoError(t, err)
	assert.True(t, verified)

	textual, err := item.TextualUploadDate()
	require.NoError(t, err)
	assert.Equal(t, "3 days ago", textual)

	date, err := item.UploadDate()
	require.NoError(t, err)
	assert.True(t, date.Approximate)
	assert.Equal(t, testNow.AddDate(0, 0, -3), date.Time)

	short, err := item.ShortFormContent()
	require.NoError(t, err)
	assert.False(t, short, "unconfigured flags default to false")
}

// TestJSONItemRequiredFields verifies missing required fields are parsing errors
func TestJSONItemRequiredFields(t *testing.T) {
	item := NewJSONItem(mustDecode(t, `{"id": "abc", "title": ""}`), videoFields, nil, testNow)

	_, err := item.Name()
	assert.ErrorIs(t, err, domain.ErrParsing)
	assert.Contains(t, err.Error(), "name")

	noURL := NewJSONItem(mustDecode(t, `{"title": "x"}`), &Fields{Name: "title"}, nil, testNow)
	_, err = noURL.URL()
	assert.ErrorIs(t, err, domain.ErrParsing)
}

// TestJSONItemOptionalFields verifies configured but absent fields fail while unconfigured ones default
func TestJSONItemOptionalFields(t *testing.T) {
	item := NewJSONItem(mustDecode(t, `{"id": "abc", "title": "x", "length": "forever"}`), videoFields, nil, testNow)

	_, err := item.ViewCount()
	assert.ErrorIs(t, err, domain.ErrParsing)

	d, err := item.Duration()
	assert.ErrorIs(t, err, domain.ErrParsing)
	assert.Equal(t, int64(-1), d)

	thumbs, err := item.Thumbnails()
	require.NoError(t, err, "absent thumbnails are an empty set")
	assert.Empty(t, thumbs)

	bare := NewJSONItem(mustDecode(t, `{"id": "abc", "title": "x"}`), &Fields{Name: "title", URL: "id"}, nil, testNow)
	d, err = bare.Duration()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), d)

	likes, err := bare.LikeCount()
	require.NoError(t, err)
	assert.Equal(t, int64(domain.LikeCountUnknown), likes)

	count, err := bare.StreamCount()
	require.NoError(t, err)
	assert.Equal(t, int64(domain.ItemCountUnknown), count)
}

// TestJSONItemAdAndLive verifies the ad flag and live detection
func TestJSONItemAdAndLive(t *testing.T) {
	ad := NewJSONItem(mustDecode(t, `{"id": "a", "title": "Buy", "sponsored": true}`), videoFields, nil, testNow)
	isAd, err := ad.IsAd()
	require.NoError(t, err)
	assert.True(t, isAd)

	live := NewJSONItem(mustDecode(t, `{"id": "l", "title": "Live", "is_live": true}`), videoFields, nil, testNow)
	st, err := live.StreamType()
	require.NoError(t, err)
	assert.Equal(t, domain.StreamTypeLiveVideo, st)

	audioFields := &Fields{Name: "title", URL: "id", DefaultStreamType: "audio", Live: "is_live"}
	radio := NewJSONItem(mustDecode(t, `{"id": "r", "title": "Radio", "is_live": true}`), audioFields, nil, testNow)
	st, err = radio.StreamType()
	require.NoError(t, err)
	assert.Equal(t, domain.StreamTypeLiveAudio, st)

	typed := NewJSONItem(mustDecode(t, `{"kind": "hologram"}`), &Fields{StreamType: "kind"}, nil, testNow)
	_, err = typed.StreamType()
	assert.ErrorIs(t, err, domain.ErrParsing)
}

// TestJSONItemChannelAndComment verifies kind specific accessors
func TestJSONItemChannelAndComment(t *testing.T) {
	channel := NewJSONItem(mustDecode(t, `{"name": "Chan", "url": "https://x/c/1", "subs": 1500, "videos": "42", "about": "hi", "ok": 1}`),
		&Fields{Name: "name", URL: "url", SubscriberCount: "subs", StreamCount: "videos", Description: "about", Verified: "ok"}, nil, testNow)

	subs, err := channel.SubscriberCount()
	require.NoError(t, err)
	assert.Equal(t, int64(1500), subs)
	videos, err := channel.StreamCount()
	require.NoError(t, err)
	assert.Equal(t, int64(42), videos)
	verified, err := channel.Verified()
	require.NoError(t, err)
	assert.True(t, verified)

	comment := NewJSONItem(mustDecode(t, `{"id": "c1", "body": "hello", "author": {"name": "A"}, "likes": 3, "pinned": true, "next": "/api/replies?c=c1", "at": 1700000000}`),
		&Fields{CommentID: "id", Text: "body", UploaderName: "author.name", LikeCount: "likes", Pinned: "pinned", Replies: "next", UploadDate: "at"},
		mustURL(t, "https://x/api/comments"), testNow)

	id, err := comment.CommentID()
	require.NoError(t, err)
	assert.Equal(t, "c1", id)
	author, err := comment.AuthorName()
	require.NoError(t, err)
	assert.Equal(t, "A", author)
	pinned, err := comment.Pinned()
	require.NoError(t, err)
	assert.True(t, pinned)
	replies, err := comment.Replies()
	require.NoError(t, err)
	require.NotNil(t, replies)
	assert.Equal(t, "https://x/api/replies?c=c1", replies.URL)
	published, err := comment.PublishedTime()
	require.NoError(t, err)
	assert.False(t, published.Approximate)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), published.Time)
}

// TestJSONItemBadThumbnails verifies malformed image data is a parsing error
func TestJSONItemBadThumbnails(t *testing.T) {
	item := NewJSONItem(mustDecode(t, `{"thumbnails": [{"width": 10}]}`), &Fields{Thumbnails: "thumbnails"}, nil, testNow)

	_, err := item.Thumbnails()
	assert.ErrorIs(t, err, domain.ErrParsing)
	assert.Contains(t, err.Error(), "thumbnails")
}

// TestTagged verifies tags report their kind
func TestTagged(t *testing.T) {
	item := NewJSONItem(map[string]any{}, &Fields{}, nil, testNow)

	assert.Equal(t, KindStream, Stream(item).Kind())
	assert.Equal(t, KindChannel, Channel(item).Kind())
	assert.Equal(t, KindPlaylist, Playlist(item).Kind())
	assert.Equal(t, "playlist", KindPlaylist.String())
}
