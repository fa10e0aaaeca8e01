package collector

import (
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/domain"
)

type StreamCollector = Collector[*domain.StreamItem, extractor.StreamItemExtractor]

func NewStreamCollector(serviceID int, opts ...Option[*domain.StreamItem]) *StreamCollector {
	return New[*domain.StreamItem, extractor.StreamItemExtractor](serviceID, ExtractStream, opts...)
}

// ExtractStream builds a stream item. The ad check, url, name and stream type are required.
func ExtractStream(serviceID int, e extractor.StreamItemExtractor) (*domain.StreamItem, []error, error) {
	ad, err := e.IsAd()
	if err != nil {
		return nil, nil, err
	}
	if ad {
		return nil, nil, domain.ErrAdvertisement
	}

	url, err := e.URL()
	if err != nil {
		return nil, nil, err
	}
	name, err := e.Name()
	if err != nil {
		return nil, nil, err
	}
	streamType, err := e.StreamType()
	if err != nil {
		return nil, nil, err
	}

	item := domain.NewStreamItem(serviceID, url, name, streamType)

	var f itemFields
	optional(&f, e.Duration, func(v int64) { item.Duration = v })
	optional(&f, e.UploaderName, func(v string) { item.UploaderName = v })
	optional(&f, e.TextualUploadDate, func(v string) { item.TextualUploadDate = v })
	optional(&f, e.UploadDate, func(v *domain.DateWrapper) { item.UploadDate = v })
	optional(&f, e.ViewCount, func(v int64) { item.ViewCount = v })
	optional(&f, e.Thumbnails, func(v []domain.Image) { setThumbnails(&f, item, v) })
	optional(&f, e.UploaderURL, func(v string) { item.UploaderURL = v })
	optional(&f, e.UploaderAvatars, func(v []domain.Image) { item.UploaderAvatars = v })
	optional(&f, e.UploaderVerified, func(v bool) { item.UploaderVerified = v })
	optional(&f, e.ShortDescription, func(v string) { item.ShortDescription = v })
	optional(&f, e.ShortFormContent, func(v bool) { item.ShortFormContent = v })

	if f.ad != nil {
		return nil, nil, f.ad
	}
	return item, f.recovered, nil
}

type thumbnailSlot interface {
	SetThumbnails(images []domain.Image) error
}

func setThumbnails(f *itemFields, item thumbnailSlot, images []domain.Image) {
	if err := item.SetThumbnails(images); err != nil {
		f.recovered = append(f.recovered, err)
	}
}
