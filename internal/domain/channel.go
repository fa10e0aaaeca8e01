package domain

// ChannelItem is an uploader, artist or account
type ChannelItem struct {
	infoItem

	Description     string
	SubscriberCount int64 // -1 if unknown
	StreamCount     int64 // -1 if unknown
	Verified        bool
}

func NewChannelItem(serviceID int, url, name string) *ChannelItem {
	return &ChannelItem{
		infoItem:        newInfoItem(InfoTypeChannel, serviceID, url, name),
		SubscriberCount: -1,
		StreamCount:     -1,
	}
}
