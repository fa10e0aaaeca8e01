package extractor

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/normalizer"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/samber/lo"
)

// Fields maps item fields to locations inside a raw element.
// For JSON items a location is a dotted path ("owner.name"); for HTML items it is a CSS selector,
// optionally followed by "@attr" to read an attribute instead of the text ("a.title@href").
// An empty location means the platform does not provide the field.
type Fields struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	URLTemplate string `yaml:"url_template"` // e.g. "https://example.com/watch?v={id}", the url field then holds the id
	Thumbnails  string `yaml:"thumbnails"`
	Ad          string `yaml:"ad"`

	StreamType        string `yaml:"stream_type"`
	DefaultStreamType string `yaml:"default_stream_type"`
	Live              string `yaml:"live"`
	Duration          string `yaml:"duration"`
	ViewCount         string `yaml:"view_count"`
	UploaderName      string `yaml:"uploader_name"`
	UploaderURL       string `yaml:"uploader_url"`
	UploaderAvatars   string `yaml:"uploader_avatars"`
	UploaderVerified  string `yaml:"uploader_verified"`
	UploadDate        string `yaml:"upload_date"`
	ShortDescription  string `yaml:"short_description"`
	ShortForm         string `yaml:"short_form"`

	Description     string `yaml:"description"`
	SubscriberCount string `yaml:"subscriber_count"`
	StreamCount     string `yaml:"stream_count"`
	Verified        string `yaml:"verified"`
	PlaylistType    string `yaml:"playlist_type"`

	CommentID  string `yaml:"comment_id"`
	Text       string `yaml:"text"`
	LikeCount  string `yaml:"like_count"`
	ReplyCount string `yaml:"reply_count"`
	Pinned     string `yaml:"pinned"`
	Hearted    string `yaml:"hearted"`
	Replies    string `yaml:"replies"`

	// Keys (JSON) or attributes (HTML) inside one image element
	ImageURL    string `yaml:"image_url"`
	ImageWidth  string `yaml:"image_width"`
	ImageHeight string `yaml:"image_height"`
}

// source is the raw element a fieldReader reads from
type source interface {
	value(path string) (any, bool)
	flag(path string) (bool, bool)
	images(path string, fields *Fields) ([]domain.Image, error)
}

// fieldReader implements every item extractor interface on top of a source and a Fields mapping
type fieldReader struct {
	src    source
	fields *Fields
	base   *url.URL
	now    time.Time
}

func (r *fieldReader) Name() (string, error) {
	return r.requiredText("name", r.fields.Name)
}

func (r *fieldReader) URL() (string, error) {
	raw, err := r.requiredText("url", r.fields.URL)
	if err != nil {
		return "", err
	}
	if r.fields.URLTemplate != "" {
		raw = strings.ReplaceAll(r.fields.URLTemplate, "{id}", raw)
	}
	return r.resolve(raw), nil
}

func (r *fieldReader) Thumbnails() ([]domain.Image, error) {
	return r.optionalImages("thumbnails", r.fields.Thumbnails)
}

func (r *fieldReader) IsAd() (bool, error) {
	if r.fields.Ad == "" {
		return false, nil
	}
	ad, _ := r.src.flag(r.fields.Ad)
	return ad, nil
}

func (r *fieldReader) StreamType() (domain.StreamType, error) {
	if r.fields.StreamType != "" {
		s, err := r.requiredText("stream_type", r.fields.StreamType)
		if err != nil {
			return domain.StreamTypeNone, err
		}
		return parseStreamTypeName(s)
	}

	base := domain.StreamTypeVideo
	if r.fields.DefaultStreamType != "" {
		st, err := parseStreamTypeName(r.fields.DefaultStreamType)
		if err != nil {
			return domain.StreamTypeNone, err
		}
		base = st
	}

	if r.fields.Live != "" {
		if live, ok := r.src.flag(r.fields.Live); ok && live {
			if base == domain.StreamTypeAudio {
				return domain.StreamTypeLiveAudio, nil
			}
			return domain.StreamTypeLiveVideo, nil
		}
	}
	return base, nil
}

func parseStreamTypeName(s string) (domain.StreamType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "live":
		return domain.StreamTypeLiveVideo, nil
	case "upcoming", "premiere":
		return domain.StreamTypeVideo, nil
	}
	st, err := domain.ParseStreamType(name)
	if err != nil {
		return domain.StreamTypeNone, domain.WrapParsingError("stream_type", err)
	}
	return st, nil
}

func (r *fieldReader) Duration() (int64, error) {
	if r.fields.Duration == "" {
		return -1, nil
	}
	v, ok := r.src.value(r.fields.Duration)
	if !ok {
		return -1, domain.NewParsingError("duration", "not found at %q", r.fields.Duration)
	}
	switch d := v.(type) {
	case float64:
		return int64(d), nil
	case int:
		return int64(d), nil
	case string:
		secs, err := normalizer.ParseDuration(d)
		if err != nil {
			return -1, domain.WrapParsingError("duration", err)
		}
		return secs, nil
	}
	return -1, domain.NewParsingError("duration", "unexpected value %v", v)
}

func (r *fieldReader) ViewCount() (int64, error) {
	return r.optionalCount("view_count", r.fields.ViewCount, -1)
}

func (r *fieldReader) UploaderName() (string, error) {
	return r.optionalText("uploader_name", r.fields.UploaderName)
}

func (r *fieldReader) UploaderURL() (string, error) {
	s, err := r.optionalText("uploader_url", r.fields.UploaderURL)
	if err != nil || s == "" {
		return s, err
	}
	return r.resolve(s), nil
}

func (r *fieldReader) UploaderAvatars() ([]domain.Image, error) {
	return r.optionalImages("uploader_avatars", r.fields.UploaderAvatars)
}

func (r *fieldReader) UploaderVerified() (bool, error) {
	return r.optionalFlag("uploader_verified", r.fields.UploaderVerified)
}

func (r *fieldReader) TextualUploadDate() (string, error) {
	return r.optionalText("upload_date", r.fields.UploadDate)
}

func (r *fieldReader) UploadDate() (*domain.DateWrapper, error) {
	if r.fields.UploadDate == "" {
		return nil, nil
	}
	v, ok := r.src.value(r.fields.UploadDate)
	if !ok {
		return nil, domain.NewParsingError("upload_date", "not found at %q", r.fields.UploadDate)
	}
	switch d := v.(type) {
	case float64, int, int64:
		return domain.NewDate(normalizer.ParseUnixTimestamp(d)), nil
	case string:
		date, err := normalizer.ParseDate(d, r.now)
		if err != nil {
			return nil, domain.WrapParsingError("upload_date", err)
		}
		return date, nil
	}
	return nil, domain.NewParsingError("upload_date", "unexpected value %v", v)
}

func (r *fieldReader) ShortDescription() (string, error) {
	return r.optionalText("short_description", r.fields.ShortDescription)
}

func (r *fieldReader) ShortFormContent() (bool, error) {
	return r.optionalFlag("short_form", r.fields.ShortForm)
}

func (r *fieldReader) Description() (string, error) {
	return r.optionalText("description", r.fields.Description)
}

func (r *fieldReader) SubscriberCount() (int64, error) {
	return r.optionalCount("subscriber_count", r.fields.SubscriberCount, -1)
}

func (r *fieldReader) StreamCount() (int64, error) {
	return r.optionalCount("stream_count", r.fields.StreamCount, domain.ItemCountUnknown)
}

func (r *fieldReader) Verified() (bool, error) {
	return r.optionalFlag("verified", r.fields.Verified)
}

func (r *fieldReader) PlaylistType() (domain.PlaylistType, error) {
	s, err := r.optionalText("playlist_type", r.fields.PlaylistType)
	if err != nil {
		return domain.PlaylistNormal, err
	}
	if s == "" {
		return domain.PlaylistNormal, nil
	}
	return domain.PlaylistType(strings.ToLower(s)), nil
}

func (r *fieldReader) CommentID() (string, error) {
	return r.optionalText("comment_id", r.fields.CommentID)
}

func (r *fieldReader) Text() (string, error) {
	return r.optionalText("text", r.fields.Text)
}

func (r *fieldReader) AuthorName() (string, error)            { return r.UploaderName() }
func (r *fieldReader) AuthorURL() (string, error)             { return r.UploaderURL() }
func (r *fieldReader) AuthorAvatars() ([]domain.Image, error) { return r.UploaderAvatars() }
func (r *fieldReader) AuthorVerified() (bool, error)          { return r.UploaderVerified() }

func (r *fieldReader) TextualPublishedTime() (string, error)       { return r.TextualUploadDate() }
func (r *fieldReader) PublishedTime() (*domain.DateWrapper, error) { return r.UploadDate() }

func (r *fieldReader) LikeCount() (int64, error) {
	return r.optionalCount("like_count", r.fields.LikeCount, domain.LikeCountUnknown)
}

func (r *fieldReader) ReplyCount() (int64, error) {
	return r.optionalCount("reply_count", r.fields.ReplyCount, -1)
}

func (r *fieldReader) Pinned() (bool, error) {
	return r.optionalFlag("pinned", r.fields.Pinned)
}

func (r *fieldReader) HeartedByUploader() (bool, error) {
	return r.optionalFlag("hearted", r.fields.Hearted)
}

func (r *fieldReader) Replies() (*domain.Page, error) {
	if r.fields.Replies == "" {
		return nil, nil
	}
	v, ok := r.src.value(r.fields.Replies)
	if !ok {
		return nil, nil
	}
	s := toString(v)
	if s == "" {
		return nil, nil
	}
	return domain.NewPage(r.resolve(s)), nil
}

func (r *fieldReader) requiredText(field, path string) (string, error) {
	if path == "" {
		return "", domain.NewParsingError(field, "no location configured")
	}
	v, ok := r.src.value(path)
	if !ok {
		return "", domain.NewParsingError(field, "not found at %q", path)
	}
	s := toString(v)
	if s == "" {
		return "", domain.NewParsingError(field, "empty value at %q", path)
	}
	return s, nil
}

func (r *fieldReader) optionalText(field, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	v, ok := r.src.value(path)
	if !ok {
		return "", domain.NewParsingError(field, "not found at %q", path)
	}
	return toString(v), nil
}

func (r *fieldReader) optionalCount(field, path string, unknown int64) (int64, error) {
	if path == "" {
		return unknown, nil
	}
	v, ok := r.src.value(path)
	if !ok {
		return unknown, domain.NewParsingError(field, "not found at %q", path)
	}
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		count, err := normalizer.ParseCount(n)
		if err != nil {
			return unknown, domain.WrapParsingError(field, err)
		}
		return count, nil
	}
	return unknown, domain.NewParsingError(field, "unexpected value %v", v)
}

func (r *fieldReader) optionalFlag(field, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	b, ok := r.src.flag(path)
	if !ok {
		return false, domain.NewParsingError(field, "not found at %q", path)
	}
	return b, nil
}

func (r *fieldReader) optionalImages(field, path string) ([]domain.Image, error) {
	if path == "" {
		return []domain.Image{}, nil
	}
	images, err := r.src.images(path, r.fields)
	if err != nil {
		return nil, domain.WrapParsingError(field, err)
	}
	return lo.Map(images, func(img domain.Image, _ int) domain.Image {
		img.URL = r.resolve(img.URL)
		return img
	}), nil
}

// resolve makes a relative reference absolute against the page the element came from
func (r *fieldReader) resolve(ref string) string {
	if r.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return r.base.ResolveReference(u).String()
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return normalizer.CleanText(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func imageKeys(fields *Fields) (urlKey, widthKey, heightKey string) {
	urlKey, widthKey, heightKey = "url", "width", "height"
	if fields.ImageURL != "" {
		urlKey = fields.ImageURL
	}
	if fields.ImageWidth != "" {
		widthKey = fields.ImageWidth
	}
	if fields.ImageHeight != "" {
		heightKey = fields.ImageHeight
	}
	return urlKey, widthKey, heightKey
}
