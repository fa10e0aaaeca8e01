package collector

import (
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/domain"
)

type PlaylistCollector = Collector[*domain.PlaylistItem, extractor.PlaylistItemExtractor]

func NewPlaylistCollector(serviceID int, opts ...Option[*domain.PlaylistItem]) *PlaylistCollector {
	return New[*domain.PlaylistItem, extractor.PlaylistItemExtractor](serviceID, ExtractPlaylist, opts...)
}

// ExtractPlaylist builds a playlist item. Url and name are required.
func ExtractPlaylist(serviceID int, e extractor.PlaylistItemExtractor) (*domain.PlaylistItem, []error, error) {
	url, err := e.URL()
	if err != nil {
		return nil, nil, err
	}
	name, err := e.Name()
	if err != nil {
		return nil, nil, err
	}

	item := domain.NewPlaylistItem(serviceID, url, name)

	var f itemFields
	optional(&f, e.UploaderName, func(v string) { item.UploaderName = v })
	optional(&f, e.UploaderURL, func(v string) { item.UploaderURL = v })
	optional(&f, e.UploaderVerified, func(v bool) { item.UploaderVerified = v })
	optional(&f, e.Thumbnails, func(v []domain.Image) { setThumbnails(&f, item, v) })
	optional(&f, e.StreamCount, func(v int64) { item.StreamCount = v })
	optional(&f, e.Description, func(v string) { item.Description = v })
	optional(&f, e.PlaylistType, func(v domain.PlaylistType) { item.PlaylistType = v })

	if f.ad != nil {
		return nil, nil, f.ad
	}
	return item, f.recovered, nil
}
