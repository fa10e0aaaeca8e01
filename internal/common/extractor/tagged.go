package extractor

import "fmt"

// Kind names the capability a Tagged extractor carries
type Kind int

const (
	KindStream Kind = iota + 1
	KindChannel
	KindPlaylist
)

func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindChannel:
		return "channel"
	case KindPlaylist:
		return "playlist"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Tagged is an extractor whose kind is fixed when it is handed to a mixed-kind collector.
// The set of implementations is closed: StreamTag, ChannelTag and PlaylistTag.
type Tagged interface {
	Kind() Kind
	sealed()
}

type StreamTag struct{ Extractor StreamItemExtractor }
type ChannelTag struct{ Extractor ChannelItemExtractor }
type PlaylistTag struct{ Extractor PlaylistItemExtractor }

func (StreamTag) Kind() Kind   { return KindStream }
func (ChannelTag) Kind() Kind  { return KindChannel }
func (PlaylistTag) Kind() Kind { return KindPlaylist }

func (StreamTag) sealed()   {}
func (ChannelTag) sealed()  {}
func (PlaylistTag) sealed() {}

func Stream(e StreamItemExtractor) Tagged     { return StreamTag{Extractor: e} }
func Channel(e ChannelItemExtractor) Tagged   { return ChannelTag{Extractor: e} }
func Playlist(e PlaylistItemExtractor) Tagged { return PlaylistTag{Extractor: e} }
