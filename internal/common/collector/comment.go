package collector

import (
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/domain"
)

type CommentCollector = Collector[*domain.CommentItem, extractor.CommentItemExtractor]

func NewCommentCollector(serviceID int, opts ...Option[*domain.CommentItem]) *CommentCollector {
	return New[*domain.CommentItem, extractor.CommentItemExtractor](serviceID, ExtractComment, opts...)
}

// ExtractComment builds a comment item. Url and name are required; the name is usually the stream title.
func ExtractComment(serviceID int, e extractor.CommentItemExtractor) (*domain.CommentItem, []error, error) {
	url, err := e.URL()
	if err != nil {
		return nil, nil, err
	}
	name, err := e.Name()
	if err != nil {
		return nil, nil, err
	}

	item := domain.NewCommentItem(serviceID, url, name)

	var f itemFields
	optional(&f, e.CommentID, func(v string) { item.CommentID = v })
	optional(&f, e.Text, func(v string) { item.Text = v })
	optional(&f, e.AuthorName, func(v string) { item.AuthorName = v })
	optional(&f, e.AuthorURL, func(v string) { item.AuthorURL = v })
	optional(&f, e.AuthorAvatars, func(v []domain.Image) { item.AuthorAvatars = v })
	optional(&f, e.AuthorVerified, func(v bool) { item.AuthorVerified = v })
	optional(&f, e.TextualPublishedTime, func(v string) { item.TextualPublishedAt = v })
	optional(&f, e.PublishedTime, func(v *domain.DateWrapper) { item.PublishedAt = v })
	optional(&f, e.LikeCount, func(v int64) { item.LikeCount = v })
	optional(&f, e.ReplyCount, func(v int64) { item.ReplyCount = v })
	optional(&f, e.Pinned, func(v bool) { item.Pinned = v })
	optional(&f, e.HeartedByUploader, func(v bool) { item.HeartedByUploader = v })
	optional(&f, e.Replies, func(v *domain.Page) { item.Replies = v })
	optional(&f, e.Thumbnails, func(v []domain.Image) { setThumbnails(&f, item, v) })

	if f.ad != nil {
		return nil, nil, f.ad
	}
	return item, f.recovered, nil
}
