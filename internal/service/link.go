package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/project-tktt/go-extractor/internal/domain"
)

// LinkType tells what a URL points at within a service
type LinkType int

const (
	LinkNone LinkType = iota
	LinkStream
	LinkChannel
	LinkPlaylist
)

func (t LinkType) String() string {
	switch t {
	case LinkStream:
		return "stream"
	case LinkChannel:
		return "channel"
	case LinkPlaylist:
		return "playlist"
	default:
		return "none"
	}
}

// LinkHandler is a resolved link: the URL as given, its canonical form and the id inside it
type LinkHandler struct {
	OriginalURL string
	URL         string
	ID          string
}

// ListLinkHandler is a link to a listing together with the filters applied to it
type ListLinkHandler struct {
	LinkHandler
	ContentFilters []string
	SortFilter     string
}

// NewListLinkHandler wraps a resolved link. The filters are copied.
func NewListLinkHandler(h LinkHandler, contentFilters []string, sortFilter string) ListLinkHandler {
	return ListLinkHandler{
		LinkHandler:    h,
		ContentFilters: append([]string(nil), contentFilters...),
		SortFilter:     sortFilter,
	}
}

// LinkHandlerFactory turns URLs into ids and back for one link type of a service
type LinkHandlerFactory interface {
	ID(rawURL string) (string, error)
	URL(id string) (string, error)
	Accept(rawURL string) bool
}

// FromURL resolves rawURL into a LinkHandler. Google search redirects are followed first.
func FromURL(f LinkHandlerFactory, rawURL string) (LinkHandler, error) {
	if rawURL == "" {
		return LinkHandler{}, domain.NewParsingError("url", "url is empty")
	}

	target := followRedirect(rawURL)
	if !f.Accept(target) {
		return LinkHandler{}, domain.NewParsingError("url", "malformed unacceptable url: %s", rawURL)
	}

	id, err := f.ID(target)
	if err != nil {
		return LinkHandler{}, err
	}
	canonical, err := f.URL(id)
	if err != nil {
		return LinkHandler{}, err
	}
	return LinkHandler{OriginalURL: rawURL, URL: canonical, ID: id}, nil
}

// FromID builds the LinkHandler of an id
func FromID(f LinkHandlerFactory, id string) (LinkHandler, error) {
	if id == "" {
		return LinkHandler{}, domain.NewParsingError("id", "id is empty")
	}
	canonical, err := f.URL(id)
	if err != nil {
		return LinkHandler{}, err
	}
	return LinkHandler{OriginalURL: canonical, URL: canonical, ID: id}, nil
}

// followRedirect unwraps links like https://www.google.com/url?q=<target>
func followRedirect(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if !strings.HasPrefix(host, "google.") || u.Path != "/url" {
		return rawURL
	}
	query := u.Query()
	for _, key := range []string{"url", "q"} {
		if target := query.Get(key); target != "" {
			return target
		}
	}
	return rawURL
}

// PatternFactory matches URLs with a regular expression holding an "id" group
// and builds URLs from a template containing {id}
type PatternFactory struct {
	pattern  *regexp.Regexp
	idIndex  int
	template string
}

func NewPatternFactory(pattern, template string) (*PatternFactory, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile link pattern: %w", err)
	}
	idx := re.SubexpIndex("id")
	if idx < 0 {
		return nil, fmt.Errorf("link pattern %q has no id group", pattern)
	}
	if !strings.Contains(template, "{id}") {
		return nil, fmt.Errorf("link template %q has no {id} placeholder", template)
	}
	return &PatternFactory{pattern: re, idIndex: idx, template: template}, nil
}

func (f *PatternFactory) Accept(rawURL string) bool {
	_, err := f.ID(rawURL)
	return err == nil
}

func (f *PatternFactory) ID(rawURL string) (string, error) {
	m := f.pattern.FindStringSubmatch(rawURL)
	if m == nil || m[f.idIndex] == "" {
		return "", domain.NewParsingError("id", "no id in %s", rawURL)
	}
	return m[f.idIndex], nil
}

func (f *PatternFactory) URL(id string) (string, error) {
	if id == "" {
		return "", domain.NewParsingError("url", "id is empty")
	}
	return strings.ReplaceAll(f.template, "{id}", url.PathEscape(id)), nil
}
