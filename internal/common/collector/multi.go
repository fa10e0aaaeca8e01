package collector

import (
	"fmt"
	"slices"

	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/domain"
)

// MultiCollector collects a list that mixes streams, channels and playlists, such as search results.
// Each tagged extractor is built by the collector for its kind; the items end up in one list in commit order.
type MultiCollector struct {
	*Collector[domain.Item, extractor.Tagged]

	streams   *StreamCollector
	channels  *ChannelCollector
	playlists *PlaylistCollector
}

func NewMultiCollector(serviceID int, opts ...Option[domain.Item]) *MultiCollector {
	m := &MultiCollector{
		streams:   NewStreamCollector(serviceID),
		channels:  NewChannelCollector(serviceID),
		playlists: NewPlaylistCollector(serviceID),
	}
	m.Collector = New[domain.Item, extractor.Tagged](serviceID, m.extractTagged, opts...)
	return m
}

// extractTagged delegates to the collector for the tag's kind.
// Failures of optional fields are recorded by that collector, failures of the item itself by m.
func (m *MultiCollector) extractTagged(_ int, t extractor.Tagged) (domain.Item, []error, error) {
	switch tag := t.(type) {
	case extractor.StreamTag:
		item, err := m.streams.Extract(tag.Extractor)
		return widen(item, err)
	case extractor.ChannelTag:
		item, err := m.channels.Extract(tag.Extractor)
		return widen(item, err)
	case extractor.PlaylistTag:
		item, err := m.playlists.Extract(tag.Extractor)
		return widen(item, err)
	default:
		panic(fmt.Sprintf("collector: unknown extractor kind %T", t))
	}
}

func widen[T domain.Item](item T, err error) (domain.Item, []error, error) {
	if err != nil {
		return nil, nil, err
	}
	return item, nil, nil
}

// Errors returns m's own errors followed by those of the stream, channel and playlist collectors
func (m *MultiCollector) Errors() []error {
	return slices.Concat(m.Collector.Errors(), m.streams.Errors(), m.channels.Errors(), m.playlists.Errors())
}

// Reset empties m and every per-kind collector
func (m *MultiCollector) Reset() {
	m.Collector.Reset()
	m.streams.Reset()
	m.channels.Reset()
	m.playlists.Reset()
}

var _ ItemCollector[domain.Item, extractor.Tagged] = (*MultiCollector)(nil)
