package collector

import (
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/domain"
)

type ChannelCollector = Collector[*domain.ChannelItem, extractor.ChannelItemExtractor]

func NewChannelCollector(serviceID int, opts ...Option[*domain.ChannelItem]) *ChannelCollector {
	return New[*domain.ChannelItem, extractor.ChannelItemExtractor](serviceID, ExtractChannel, opts...)
}

// ExtractChannel builds a channel item. Url and name are required.
func ExtractChannel(serviceID int, e extractor.ChannelItemExtractor) (*domain.ChannelItem, []error, error) {
	url, err := e.URL()
	if err != nil {
		return nil, nil, err
	}
	name, err := e.Name()
	if err != nil {
		return nil, nil, err
	}

	item := domain.NewChannelItem(serviceID, url, name)

	var f itemFields
	optional(&f, e.SubscriberCount, func(v int64) { item.SubscriberCount = v })
	optional(&f, e.StreamCount, func(v int64) { item.StreamCount = v })
	optional(&f, e.Thumbnails, func(v []domain.Image) { setThumbnails(&f, item, v) })
	optional(&f, e.Description, func(v string) { item.Description = v })
	optional(&f, e.Verified, func(v bool) { item.Verified = v })

	if f.ad != nil {
		return nil, nil, f.ad
	}
	return item, f.recovered, nil
}
