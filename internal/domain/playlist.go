package domain

// PlaylistType distinguishes user playlists from generated mixes
type PlaylistType string

const (
	PlaylistNormal     PlaylistType = "normal"
	PlaylistMixStream  PlaylistType = "mix_stream"
	PlaylistMixMusic   PlaylistType = "mix_music"
	PlaylistMixChannel PlaylistType = "mix_channel"
	PlaylistMixGenre   PlaylistType = "mix_genre"
)

// PlaylistItem is an ordered collection of streams
type PlaylistItem struct {
	infoItem

	UploaderName     string
	UploaderURL      string
	UploaderVerified bool
	Description      string
	StreamCount      int64 // one of the ItemCount constants when not an exact number
	PlaylistType     PlaylistType
}

func NewPlaylistItem(serviceID int, url, name string) *PlaylistItem {
	return &PlaylistItem{
		infoItem:     newInfoItem(InfoTypePlaylist, serviceID, url, name),
		StreamCount:  ItemCountUnknown,
		PlaylistType: PlaylistNormal,
	}
}
