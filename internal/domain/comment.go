package domain

// LikeCountUnknown is used when a platform hides or does not report likes
const LikeCountUnknown = -1

// CommentItem is a single comment or reply on a stream
type CommentItem struct {
	infoItem

	CommentID          string
	Text               string
	AuthorName         string
	AuthorURL          string
	AuthorAvatars      []Image
	AuthorVerified     bool
	TextualPublishedAt string
	PublishedAt        *DateWrapper
	LikeCount          int64
	ReplyCount         int64
	Pinned             bool
	HeartedByUploader  bool

	// Replies is the continuation for this comment's reply thread, nil when there are none
	Replies *Page
}

func NewCommentItem(serviceID int, url, name string) *CommentItem {
	return &CommentItem{
		infoItem:   newInfoItem(InfoTypeComment, serviceID, url, name),
		LikeCount:  LikeCountUnknown,
		ReplyCount: -1,
	}
}
