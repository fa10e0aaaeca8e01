package extractor

import (
	"github.com/project-tktt/go-extractor/internal/domain"
)

// ItemExtractor reads the fields of one raw source element, such as a DOM node or a JSON object.
// Any accessor may fail with a *domain.ParsingError, or with an error wrapping domain.ErrAdvertisement
// when the element turns out to be sponsored filler.
type ItemExtractor interface {
	Name() (string, error)
	URL() (string, error)
	Thumbnails() ([]domain.Image, error)
}

// StreamItemExtractor reads a video, audio or live entry
type StreamItemExtractor interface {
	ItemExtractor

	// IsAd reports whether the element is an advertisement that should be skipped
	IsAd() (bool, error)
	StreamType() (domain.StreamType, error)
	// Duration in seconds, -1 when unknown or live
	Duration() (int64, error)
	ViewCount() (int64, error)
	UploaderName() (string, error)
	UploaderURL() (string, error)
	UploaderAvatars() ([]domain.Image, error)
	UploaderVerified() (bool, error)
	TextualUploadDate() (string, error)
	UploadDate() (*domain.DateWrapper, error)
	ShortDescription() (string, error)
	ShortFormContent() (bool, error)
}

type ChannelItemExtractor interface {
	ItemExtractor

	Description() (string, error)
	SubscriberCount() (int64, error)
	StreamCount() (int64, error)
	Verified() (bool, error)
}

type PlaylistItemExtractor interface {
	ItemExtractor

	UploaderName() (string, error)
	UploaderURL() (string, error)
	UploaderVerified() (bool, error)
	Description() (string, error)
	StreamCount() (int64, error)
	PlaylistType() (domain.PlaylistType, error)
}

type CommentItemExtractor interface {
	ItemExtractor

	CommentID() (string, error)
	Text() (string, error)
	AuthorName() (string, error)
	AuthorURL() (string, error)
	AuthorAvatars() ([]domain.Image, error)
	AuthorVerified() (bool, error)
	TextualPublishedTime() (string, error)
	PublishedTime() (*domain.DateWrapper, error)
	LikeCount() (int64, error)
	ReplyCount() (int64, error)
	Pinned() (bool, error)
	HeartedByUploader() (bool, error)
	// Replies returns the continuation of the reply thread, nil if the comment has none
	Replies() (*domain.Page, error)
}
