package domain

import "fmt"

const (
	// WidthUnknown is used when a platform does not report an image width
	WidthUnknown = -1
	// HeightUnknown is used when a platform does not report an image height
	HeightUnknown = -1
)

// ResolutionLevel is the estimated quality bucket of an image
type ResolutionLevel string

const (
	ResolutionHigh    ResolutionLevel = "high"
	ResolutionMedium  ResolutionLevel = "medium"
	ResolutionLow     ResolutionLevel = "low"
	ResolutionUnknown ResolutionLevel = "unknown"
)

// ResolutionFromHeight buckets a pixel height: below 175 is low, below 720 is medium
func ResolutionFromHeight(height int) ResolutionLevel {
	switch {
	case height <= 0:
		return ResolutionUnknown
	case height < 175:
		return ResolutionLow
	case height < 720:
		return ResolutionMedium
	default:
		return ResolutionHigh
	}
}

// Image is a reference to a thumbnail, avatar or banner
type Image struct {
	URL        string          `json:"url"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Resolution ResolutionLevel `json:"resolution"`
}

// NewImage creates an Image and estimates its resolution from the height
func NewImage(url string, width, height int) Image {
	return Image{
		URL:        url,
		Width:      width,
		Height:     height,
		Resolution: ResolutionFromHeight(height),
	}
}

// NewUnsizedImage creates an Image whose dimensions are not known
func NewUnsizedImage(url string) Image {
	return NewImage(url, WidthUnknown, HeightUnknown)
}

func (i Image) String() string {
	return fmt.Sprintf("Image{url=%s, width=%d, height=%d, resolution=%s}", i.URL, i.Width, i.Height, i.Resolution)
}
