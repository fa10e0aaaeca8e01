package domain

import "time"

// DateWrapper is a parsed date that may only be an estimate, as with "3 days ago"
type DateWrapper struct {
	Time        time.Time `json:"time"`
	Approximate bool      `json:"approximate"`
}

func NewDate(t time.Time) *DateWrapper {
	return &DateWrapper{Time: t}
}

func NewApproximateDate(t time.Time) *DateWrapper {
	return &DateWrapper{Time: t, Approximate: true}
}
