package extractor

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/project-tktt/go-extractor/internal/domain"
)

var (
	_ StreamItemExtractor   = (*HTMLItem)(nil)
	_ ChannelItemExtractor  = (*HTMLItem)(nil)
	_ PlaylistItemExtractor = (*HTMLItem)(nil)
	_ CommentItemExtractor  = (*HTMLItem)(nil)
)

// HTMLItem reads item fields out of one element of a parsed page
type HTMLItem struct {
	fieldReader
	sel *goquery.Selection
}

// NewHTMLItem creates an extractor over sel, usually one match of a listing's item selector
func NewHTMLItem(sel *goquery.Selection, fields *Fields, base *url.URL, now time.Time) *HTMLItem {
	item := &HTMLItem{sel: sel}
	item.fieldReader = fieldReader{
		src:    htmlSource{sel: sel},
		fields: fields,
		base:   base,
		now:    now,
	}
	return item
}

// Selection returns the underlying element
func (i *HTMLItem) Selection() *goquery.Selection {
	return i.sel
}

type htmlSource struct {
	sel *goquery.Selection
}

// SplitSelector separates "a.title@href" into the selector and the attribute
func SplitSelector(path string) (selector, attr string) {
	if idx := strings.LastIndex(path, "@"); idx >= 0 {
		return strings.TrimSpace(path[:idx]), strings.TrimSpace(path[idx+1:])
	}
	return strings.TrimSpace(path), ""
}

func (s htmlSource) find(selector string) *goquery.Selection {
	if selector == "" {
		return s.sel
	}
	return s.sel.Find(selector)
}

func (s htmlSource) value(path string) (any, bool) {
	selector, attr := SplitSelector(path)
	target := s.find(selector).First()
	if target.Length() == 0 {
		return nil, false
	}
	if attr != "" {
		v, ok := target.Attr(attr)
		if !ok {
			return nil, false
		}
		return strings.TrimSpace(v), true
	}
	return strings.TrimSpace(target.Text()), true
}

// flag is true when the selector matches the element or one of its descendants.
// With an attribute the attribute value is parsed instead.
func (s htmlSource) flag(path string) (bool, bool) {
	selector, attr := SplitSelector(path)
	if attr != "" {
		v, ok := s.value(path)
		if !ok {
			return false, true
		}
		str, _ := v.(string)
		str = strings.ToLower(strings.TrimSpace(str))
		return str != "" && str != "false" && str != "0", true
	}
	if selector == "" {
		return false, false
	}
	return s.sel.Is(selector) || s.sel.Find(selector).Length() > 0, true
}

func (s htmlSource) images(path string, fields *Fields) ([]domain.Image, error) {
	selector, attr := SplitSelector(path)
	_, widthAttr, heightAttr := imageKeys(fields)
	if attr == "" {
		attr = fields.ImageURL
	}

	images := []domain.Image{}
	s.find(selector).Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img, attr)
		if src == "" {
			return
		}
		images = append(images, domain.NewImage(src, intAttr(img, widthAttr, domain.WidthUnknown), intAttr(img, heightAttr, domain.HeightUnknown)))
	})
	return images, nil
}

func imageSource(img *goquery.Selection, attr string) string {
	if attr != "" {
		v, _ := img.Attr(attr)
		return strings.TrimSpace(v)
	}
	for _, name := range []string{"src", "data-src", "data-thumb"} {
		if v, ok := img.Attr(name); ok && strings.TrimSpace(v) != "" && !strings.HasPrefix(v, "data:") {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intAttr(sel *goquery.Selection, name string, fallback int) int {
	v, ok := sel.Attr(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

// String is used in error messages about an element that failed to parse
func (i *HTMLItem) String() string {
	html, err := goquery.OuterHtml(i.sel)
	if err != nil {
		return fmt.Sprintf("<%d elements>", i.sel.Length())
	}
	if len(html) > 120 {
		html = html[:120] + "..."
	}
	return html
}
