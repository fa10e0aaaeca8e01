package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/module"
)

// ErrUnknownListing is returned when a service has no listing of the requested name
var ErrUnknownListing = errors.New("unknown listing")

// Capability is a kind of media a service offers
type Capability string

const (
	CapabilityAudio Capability = "audio"
	CapabilityVideo Capability = "video"
	CapabilityLive  Capability = "live"
)

func ParseCapability(s string) (Capability, error) {
	switch c := Capability(strings.ToLower(strings.TrimSpace(s))); c {
	case CapabilityAudio, CapabilityVideo, CapabilityLive:
		return c, nil
	default:
		return "", fmt.Errorf("unknown capability %q", s)
	}
}

// StreamingService ties a platform's link handlers, shared client settings and listings together
type StreamingService struct {
	ID           int
	Name         string
	Capabilities []Capability
	BaseURL      string

	Streams   LinkHandlerFactory
	Channels  LinkHandlerFactory
	Playlists LinkHandlerFactory

	Clients *ClientStore

	listings map[string]module.ListExtractor[domain.Item]
	order    []string
}

func NewStreamingService(id int, name string, capabilities ...Capability) *StreamingService {
	return &StreamingService{
		ID:           id,
		Name:         name,
		Capabilities: capabilities,
		Clients:      NewClientStore(nil),
		listings:     make(map[string]module.ListExtractor[domain.Item]),
	}
}

// AddListing registers a listing under name, replacing any previous one
func (s *StreamingService) AddListing(name string, l module.ListExtractor[domain.Item]) {
	if s.listings == nil {
		s.listings = make(map[string]module.ListExtractor[domain.Item])
	}
	if _, ok := s.listings[name]; !ok {
		s.order = append(s.order, name)
	}
	s.listings[name] = l
}

func (s *StreamingService) Listing(name string) (module.ListExtractor[domain.Item], error) {
	l, ok := s.listings[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w %q", s.Name, ErrUnknownListing, name)
	}
	return l, nil
}

// Listings returns the listing names in registration order
func (s *StreamingService) Listings() []string {
	return slices.Clone(s.order)
}

// LinkTypeOf reports what rawURL points at. Streams are checked first, then channels, then playlists.
func (s *StreamingService) LinkTypeOf(rawURL string) LinkType {
	target := followRedirect(rawURL)
	switch {
	case accepts(s.Streams, target):
		return LinkStream
	case accepts(s.Channels, target):
		return LinkChannel
	case accepts(s.Playlists, target):
		return LinkPlaylist
	default:
		return LinkNone
	}
}

// Factory returns the link handler factory of t, nil when the service has none
func (s *StreamingService) Factory(t LinkType) LinkHandlerFactory {
	switch t {
	case LinkStream:
		return s.Streams
	case LinkChannel:
		return s.Channels
	case LinkPlaylist:
		return s.Playlists
	default:
		return nil
	}
}

// Resolve finds the link type of rawURL and resolves it with the matching factory
func (s *StreamingService) Resolve(rawURL string) (LinkType, LinkHandler, error) {
	t := s.LinkTypeOf(rawURL)
	if t == LinkNone {
		return LinkNone, LinkHandler{}, domain.NewParsingError("url", "%s cannot handle %s", s.Name, rawURL)
	}
	h, err := FromURL(s.Factory(t), rawURL)
	return t, h, err
}

func (s *StreamingService) HasCapability(c Capability) bool {
	return slices.Contains(s.Capabilities, c)
}

func (s *StreamingService) String() string {
	return fmt.Sprintf("%d:%s", s.ID, s.Name)
}

func accepts(f LinkHandlerFactory, rawURL string) bool {
	return f != nil && f.Accept(rawURL)
}
