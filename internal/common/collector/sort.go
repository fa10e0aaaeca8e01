package collector

import (
	"cmp"
	"strings"

	"github.com/project-tktt/go-extractor/internal/domain"
)

// ByName orders items by display name
func ByName[T domain.Item](a, b T) int {
	return strings.Compare(a.Name(), b.Name())
}

// ByURL orders items by canonical url
func ByURL[T domain.Item](a, b T) int {
	return strings.Compare(a.URL(), b.URL())
}

// ByViewCountDesc puts the most viewed streams first, ties broken by url
func ByViewCountDesc(a, b *domain.StreamItem) int {
	if c := cmp.Compare(b.ViewCount, a.ViewCount); c != 0 {
		return c
	}
	return strings.Compare(a.URL(), b.URL())
}

// ByUploadDateDesc puts the newest streams first; streams without a date go last
func ByUploadDateDesc(a, b *domain.StreamItem) int {
	switch {
	case a.UploadDate == nil && b.UploadDate == nil:
		return strings.Compare(a.URL(), b.URL())
	case a.UploadDate == nil:
		return 1
	case b.UploadDate == nil:
		return -1
	}
	if c := b.UploadDate.Time.Compare(a.UploadDate.Time); c != 0 {
		return c
	}
	return strings.Compare(a.URL(), b.URL())
}
