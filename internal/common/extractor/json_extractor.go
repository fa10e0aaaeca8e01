package extractor

import (
	"fmt"
	"net/url"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/normalizer"
	"github.com/project-tktt/go-extractor/internal/domain"
)

var (
	_ StreamItemExtractor   = (*JSONItem)(nil)
	_ ChannelItemExtractor  = (*JSONItem)(nil)
	_ PlaylistItemExtractor = (*JSONItem)(nil)
	_ CommentItemExtractor  = (*JSONItem)(nil)
)

// JSONItem reads item fields out of one decoded JSON object
type JSONItem struct {
	fieldReader
	data map[string]any
}

// NewJSONItem creates an extractor over data. Relative urls are resolved against base when it is set,
// and relative dates against now.
func NewJSONItem(data map[string]any, fields *Fields, base *url.URL, now time.Time) *JSONItem {
	item := &JSONItem{data: data}
	item.fieldReader = fieldReader{
		src:    jsonSource(data),
		fields: fields,
		base:   base,
		now:    now,
	}
	return item
}

// Raw returns the underlying object
func (i *JSONItem) Raw() map[string]any {
	return i.data
}

type jsonSource map[string]any

func (s jsonSource) value(path string) (any, bool) {
	return normalizer.GetPath(s, path)
}

func (s jsonSource) flag(path string) (bool, bool) {
	return normalizer.LookupBool(s, path)
}

func (s jsonSource) images(path string, fields *Fields) ([]domain.Image, error) {
	v, ok := normalizer.GetPath(s, path)
	if !ok {
		return []domain.Image{}, nil
	}

	switch val := v.(type) {
	case string:
		if val == "" {
			return []domain.Image{}, nil
		}
		return []domain.Image{domain.NewUnsizedImage(val)}, nil
	case map[string]any:
		img, err := jsonImage(val, fields)
		if err != nil {
			return nil, err
		}
		return []domain.Image{img}, nil
	case []any:
		images := make([]domain.Image, 0, len(val))
		for i, el := range val {
			switch e := el.(type) {
			case string:
				images = append(images, domain.NewUnsizedImage(e))
			case map[string]any:
				img, err := jsonImage(e, fields)
				if err != nil {
					return nil, fmt.Errorf("image %d: %w", i, err)
				}
				images = append(images, img)
			default:
				return nil, fmt.Errorf("image %d: unexpected value %v", i, el)
			}
		}
		return images, nil
	}
	return nil, fmt.Errorf("unexpected image value %v", v)
}

func jsonImage(obj map[string]any, fields *Fields) (domain.Image, error) {
	urlKey, widthKey, heightKey := imageKeys(fields)

	u := normalizer.GetString(obj, urlKey)
	if u == "" {
		return domain.Image{}, fmt.Errorf("image has no %q", urlKey)
	}

	width, height := int64(domain.WidthUnknown), int64(domain.HeightUnknown)
	if w, ok := normalizer.LookupInt(obj, widthKey); ok {
		width = w
	}
	if h, ok := normalizer.LookupInt(obj, heightKey); ok {
		height = h
	}
	return domain.NewImage(u, int(width), int(height)), nil
}
