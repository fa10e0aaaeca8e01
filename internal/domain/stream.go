package domain

import "fmt"

// StreamType describes what kind of media a stream item points at
type StreamType int

const (
	StreamTypeNone StreamType = iota
	StreamTypeVideo
	StreamTypeAudio
	StreamTypeLiveVideo
	StreamTypeLiveAudio
	StreamTypePostLiveVideo
	StreamTypePostLiveAudio
)

var streamTypeNames = map[StreamType]string{
	StreamTypeNone:          "none",
	StreamTypeVideo:         "video",
	StreamTypeAudio:         "audio",
	StreamTypeLiveVideo:     "live_video",
	StreamTypeLiveAudio:     "live_audio",
	StreamTypePostLiveVideo: "post_live_video",
	StreamTypePostLiveAudio: "post_live_audio",
}

func (t StreamType) String() string {
	if s, ok := streamTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("StreamType(%d)", int(t))
}

// IsLive reports whether the stream is currently broadcasting
func (t StreamType) IsLive() bool {
	return t == StreamTypeLiveVideo || t == StreamTypeLiveAudio
}

// ParseStreamType accepts the names produced by String
func ParseStreamType(s string) (StreamType, error) {
	for t, name := range streamTypeNames {
		if name == s {
			return t, nil
		}
	}
	return StreamTypeNone, fmt.Errorf("unknown stream type %q", s)
}

// StreamItem is a video, audio track or live broadcast
type StreamItem struct {
	infoItem

	StreamType        StreamType
	Duration          int64 // seconds, -1 if unknown
	ViewCount         int64 // -1 if unknown
	UploaderName      string
	UploaderURL       string
	UploaderAvatars   []Image
	UploaderVerified  bool
	TextualUploadDate string
	UploadDate        *DateWrapper
	ShortDescription  string
	ShortFormContent  bool
}

// NewStreamItem creates a stream item with unknown duration and view count
func NewStreamItem(serviceID int, url, name string, streamType StreamType) *StreamItem {
	return &StreamItem{
		infoItem:   newInfoItem(InfoTypeStream, serviceID, url, name),
		StreamType: streamType,
		Duration:   -1,
		ViewCount:  -1,
	}
}
