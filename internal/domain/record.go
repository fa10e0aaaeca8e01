package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Record is the flat, serialisable form of an extracted item as it travels through the queue and indexers
type Record struct {
	ID        string `json:"id"`
	ServiceID int    `json:"service_id"`
	Service   string `json:"service"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	Name      string `json:"name"`

	Thumbnails []Image `json:"thumbnails"`

	// Stream
	StreamType        string       `json:"stream_type,omitempty"`
	Duration          int64        `json:"duration,omitempty"`
	ViewCount         int64        `json:"view_count,omitempty"`
	UploaderName      string       `json:"uploader_name,omitempty"`
	UploaderURL       string       `json:"uploader_url,omitempty"`
	UploaderAvatars   []Image      `json:"uploader_avatars,omitempty"`
	UploaderVerified  bool         `json:"uploader_verified,omitempty"`
	TextualUploadDate string       `json:"textual_upload_date,omitempty"`
	UploadDate        *DateWrapper `json:"upload_date,omitempty"`
	ShortFormContent  bool         `json:"short_form_content,omitempty"`

	// Channel and playlist
	Description     string `json:"description,omitempty"`
	SubscriberCount int64  `json:"subscriber_count,omitempty"`
	StreamCount     int64  `json:"stream_count,omitempty"`
	Verified        bool   `json:"verified,omitempty"`
	PlaylistType    string `json:"playlist_type,omitempty"`

	// Comment
	CommentID   string       `json:"comment_id,omitempty"`
	Text        string       `json:"text,omitempty"`
	LikeCount   int64        `json:"like_count,omitempty"`
	ReplyCount  int64        `json:"reply_count,omitempty"`
	Pinned      bool         `json:"pinned,omitempty"`
	Hearted     bool         `json:"hearted,omitempty"`
	PublishedAt *DateWrapper `json:"published_at,omitempty"`

	// Crawl metadata
	RunID       string    `json:"run_id"`
	Listing     string    `json:"listing"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// RecordID derives a stable identifier from the service, kind and key (the canonical url for most kinds)
func RecordID(serviceID int, kind InfoType, key string) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%d|%s|%s", serviceID, kind, key)))
	return hex.EncodeToString(sum[:])
}

// recordKey is the url, plus the comment id for comments since they share their stream's url
func recordKey(item Item) string {
	if c, ok := item.(*CommentItem); ok && c.CommentID != "" {
		return item.URL() + "#" + c.CommentID
	}
	return item.URL()
}

// ToRecord flattens an item. The service name and crawl metadata are left for the caller to fill.
func ToRecord(item Item) Record {
	r := Record{
		ID:         RecordID(item.ServiceID(), item.InfoType(), recordKey(item)),
		ServiceID:  item.ServiceID(),
		Kind:       item.InfoType().String(),
		URL:        item.URL(),
		Name:       item.Name(),
		Thumbnails: item.Thumbnails(),
	}

	switch it := item.(type) {
	case *StreamItem:
		r.StreamType = it.StreamType.String()
		r.Duration = it.Duration
		r.ViewCount = it.ViewCount
		r.UploaderName = it.UploaderName
		r.UploaderURL = it.UploaderURL
		r.UploaderAvatars = it.UploaderAvatars
		r.UploaderVerified = it.UploaderVerified
		r.TextualUploadDate = it.TextualUploadDate
		r.UploadDate = it.UploadDate
		r.Description = it.ShortDescription
		r.ShortFormContent = it.ShortFormContent
	case *ChannelItem:
		r.Description = it.Description
		r.SubscriberCount = it.SubscriberCount
		r.StreamCount = it.StreamCount
		r.Verified = it.Verified
	case *PlaylistItem:
		r.UploaderName = it.UploaderName
		r.UploaderURL = it.UploaderURL
		r.UploaderVerified = it.UploaderVerified
		r.Description = it.Description
		r.StreamCount = it.StreamCount
		r.PlaylistType = string(it.PlaylistType)
	case *CommentItem:
		r.CommentID = it.CommentID
		r.Text = it.Text
		r.UploaderName = it.AuthorName
		r.UploaderURL = it.AuthorURL
		r.UploaderAvatars = it.AuthorAvatars
		r.UploaderVerified = it.AuthorVerified
		r.TextualUploadDate = it.TextualPublishedAt
		r.PublishedAt = it.PublishedAt
		r.LikeCount = it.LikeCount
		r.ReplyCount = it.ReplyCount
		r.Pinned = it.Pinned
		r.Hearted = it.HeartedByUploader
	}
	return r
}

// ToRecords flattens a page of items
func ToRecords[T Item](items []T) []Record {
	return lo.Map(items, func(it T, _ int) Record {
		return ToRecord(it)
	})
}
