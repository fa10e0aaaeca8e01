package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParsing marks a field of a single item that could not be located or decoded
	ErrParsing = errors.New("parsing error")

	// ErrAdvertisement marks a source element that is sponsored filler rather than a real item
	ErrAdvertisement = errors.New("found advertisement")

	// ErrExtraction marks a failure that prevents a whole page from being produced
	ErrExtraction = errors.New("extraction error")

	// ErrContentNotAvailable is returned when the platform reports the content as gone or blocked
	ErrContentNotAvailable = errors.New("content not available")

	// ErrInvalidPage is returned when a listing is asked to fetch with a continuation token that is not valid
	ErrInvalidPage = errors.New("invalid page")

	// ErrExhausted is returned when a listing is advanced past its last page
	ErrExhausted = errors.New("listing exhausted")

	ErrContentAlreadySet    = errors.New("page content already set")
	ErrThumbnailsAlreadySet = errors.New("thumbnails already set")
)

// ParsingError describes a field of one item that could not be extracted
type ParsingError struct {
	Field string
	Msg   string
	Err   error
}

// NewParsingError creates a ParsingError for the given field
func NewParsingError(field, format string, args ...any) *ParsingError {
	return &ParsingError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// WrapParsingError creates a ParsingError caused by err
func WrapParsingError(field string, err error) *ParsingError {
	return &ParsingError{Field: field, Msg: err.Error(), Err: err}
}

func (e *ParsingError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}

func (e *ParsingError) Is(target error) bool {
	return target == ErrParsing
}

// ExtractionError wraps a page-level failure together with the page it happened on
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("extract page: %v", e.Err)
	}
	return fmt.Sprintf("extract page %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}
