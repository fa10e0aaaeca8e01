package domain

import (
	"fmt"
	"slices"

	"github.com/samber/mo"
)

// InfoType is the kind of an extracted item
type InfoType int

const (
	InfoTypeStream InfoType = iota
	InfoTypePlaylist
	InfoTypeChannel
	InfoTypeComment
)

func (t InfoType) String() string {
	switch t {
	case InfoTypeStream:
		return "stream"
	case InfoTypePlaylist:
		return "playlist"
	case InfoTypeChannel:
		return "channel"
	case InfoTypeComment:
		return "comment"
	default:
		return fmt.Sprintf("InfoType(%d)", int(t))
	}
}

// ParseInfoType is the inverse of InfoType.String
func ParseInfoType(s string) (InfoType, error) {
	switch s {
	case "stream":
		return InfoTypeStream, nil
	case "playlist":
		return InfoTypePlaylist, nil
	case "channel":
		return InfoTypeChannel, nil
	case "comment":
		return InfoTypeComment, nil
	}
	return 0, fmt.Errorf("unknown info type %q", s)
}

// Item is one piece of extracted content
type Item interface {
	InfoType() InfoType
	ServiceID() int
	URL() string
	Name() string
	Thumbnails() []Image
}

// infoItem holds the fields shared by every item kind.
// Kind, service, url and name are fixed at construction; thumbnails may be set once afterwards.
type infoItem struct {
	infoType   InfoType
	serviceID  int
	url        string
	name       string
	thumbnails mo.Option[[]Image]
}

func newInfoItem(t InfoType, serviceID int, url, name string) infoItem {
	return infoItem{
		infoType:   t,
		serviceID:  serviceID,
		url:        url,
		name:       name,
		thumbnails: mo.None[[]Image](),
	}
}

func (i *infoItem) InfoType() InfoType { return i.infoType }
func (i *infoItem) ServiceID() int     { return i.serviceID }
func (i *infoItem) URL() string        { return i.url }
func (i *infoItem) Name() string       { return i.name }

// Thumbnails returns a copy of the thumbnail set, empty until SetThumbnails is called
func (i *infoItem) Thumbnails() []Image {
	images, ok := i.thumbnails.Get()
	if !ok || images == nil {
		return []Image{}
	}
	return slices.Clone(images)
}

// SetThumbnails fills the thumbnail slot. Only the first call succeeds.
func (i *infoItem) SetThumbnails(images []Image) error {
	if i.thumbnails.IsPresent() {
		return ErrThumbnailsAlreadySet
	}
	i.thumbnails = mo.Some(slices.Clone(images))
	return nil
}

// HasThumbnails reports whether the thumbnail slot has been filled
func (i *infoItem) HasThumbnails() bool {
	return i.thumbnails.IsPresent()
}

func (i *infoItem) String() string {
	return fmt.Sprintf("%s{service=%d, name=%q, url=%s}", i.infoType, i.serviceID, i.name, i.url)
}
