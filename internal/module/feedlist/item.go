package feedlist

import (
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/common/normalizer"
	"github.com/project-tktt/go-extractor/internal/domain"
)

// Item reads a stream out of one feed entry. Feeds cannot tell live streams apart, every entry is a video.
type Item struct {
	item *gofeed.Item
	feed *gofeed.Feed
}

var _ extractor.StreamItemExtractor = (*Item)(nil)

func NewItem(item *gofeed.Item, feed *gofeed.Feed) *Item {
	return &Item{item: item, feed: feed}
}

func (i *Item) Name() (string, error) {
	name := normalizer.CleanText(i.item.Title)
	if name == "" {
		return "", domain.NewParsingError("name", "entry has no title")
	}
	return name, nil
}

func (i *Item) URL() (string, error) {
	link := strings.TrimSpace(i.item.Link)
	if link == "" && len(i.item.Links) > 0 {
		link = strings.TrimSpace(i.item.Links[0])
	}
	if link == "" {
		return "", domain.NewParsingError("url", "entry has no link")
	}
	return link, nil
}

// Thumbnails reads media:thumbnail, falling back to the item image and image enclosures
func (i *Item) Thumbnails() ([]domain.Image, error) {
	images := []domain.Image{}
	for _, thumb := range i.media("thumbnail") {
		u := thumb.Attrs["url"]
		if u == "" {
			continue
		}
		images = append(images, domain.NewImage(u, atoi(thumb.Attrs["width"], domain.WidthUnknown), atoi(thumb.Attrs["height"], domain.HeightUnknown)))
	}
	if len(images) > 0 {
		return images, nil
	}

	if i.item.Image != nil && i.item.Image.URL != "" {
		images = append(images, domain.NewUnsizedImage(i.item.Image.URL))
	}
	for _, enc := range i.item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			images = append(images, domain.NewUnsizedImage(enc.URL))
		}
	}
	return images, nil
}

func (i *Item) IsAd() (bool, error) {
	return false, nil
}

func (i *Item) StreamType() (domain.StreamType, error) {
	for _, enc := range i.item.Enclosures {
		if strings.HasPrefix(enc.Type, "audio/") {
			return domain.StreamTypeAudio, nil
		}
	}
	return domain.StreamTypeVideo, nil
}

// Duration reads itunes:duration, unknown durations are -1
func (i *Item) Duration() (int64, error) {
	if i.item.ITunesExt == nil || i.item.ITunesExt.Duration == "" {
		return -1, nil
	}
	d, err := normalizer.ParseDuration(i.item.ITunesExt.Duration)
	if err != nil {
		return -1, domain.WrapParsingError("duration", err)
	}
	return d, nil
}

// ViewCount reads media:statistics views
func (i *Item) ViewCount() (int64, error) {
	for _, group := range i.media("community") {
		for _, stats := range group.Children["statistics"] {
			if v, ok := stats.Attrs["views"]; ok {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return -1, domain.NewParsingError("view_count", "invalid views %q", v)
				}
				return n, nil
			}
		}
	}
	return -1, nil
}

func (i *Item) UploaderName() (string, error) {
	if i.item.Author != nil && i.item.Author.Name != "" {
		return i.item.Author.Name, nil
	}
	if i.feed != nil && i.feed.Author != nil {
		return i.feed.Author.Name, nil
	}
	if i.item.DublinCoreExt != nil && len(i.item.DublinCoreExt.Creator) > 0 {
		return i.item.DublinCoreExt.Creator[0], nil
	}
	return "", nil
}

// UploaderURL is the feed's own link, the channel page for channel feeds
func (i *Item) UploaderURL() (string, error) {
	if i.feed != nil {
		return i.feed.Link, nil
	}
	return "", nil
}

func (i *Item) UploaderAvatars() ([]domain.Image, error) {
	if i.feed != nil && i.feed.Image != nil && i.feed.Image.URL != "" {
		return []domain.Image{domain.NewUnsizedImage(i.feed.Image.URL)}, nil
	}
	return []domain.Image{}, nil
}

func (i *Item) UploaderVerified() (bool, error) {
	return false, nil
}

func (i *Item) TextualUploadDate() (string, error) {
	if i.item.Published != "" {
		return i.item.Published, nil
	}
	return i.item.Updated, nil
}

func (i *Item) UploadDate() (*domain.DateWrapper, error) {
	switch {
	case i.item.PublishedParsed != nil:
		return domain.NewDate(*i.item.PublishedParsed), nil
	case i.item.UpdatedParsed != nil:
		return domain.NewDate(*i.item.UpdatedParsed), nil
	case i.item.Published != "":
		return nil, domain.NewParsingError("upload_date", "could not parse date %q", i.item.Published)
	}
	return nil, nil
}

func (i *Item) ShortDescription() (string, error) {
	if d := i.mediaDescription(); d != "" {
		return d, nil
	}
	return normalizer.CleanText(i.item.Description), nil
}

func (i *Item) ShortFormContent() (bool, error) {
	link, _ := i.URL()
	return strings.Contains(link, "/shorts/"), nil
}

// media returns the media:<name> elements directly under the entry or inside media:group
func (i *Item) media(name string) []ext.Extension {
	media := i.item.Extensions["media"]
	if media == nil {
		return nil
	}
	out := append([]ext.Extension{}, media[name]...)
	for _, group := range media["group"] {
		out = append(out, group.Children[name]...)
	}
	return out
}

func (i *Item) mediaDescription() string {
	for _, d := range i.media("description") {
		if v := strings.TrimSpace(d.Value); v != "" {
			return v
		}
	}
	return ""
}

func atoi(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
