package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/project-tktt/go-extractor/internal/domain"
)

var absoluteFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"2 Jan 2006",
}

var relativePattern = regexp.MustCompile(`(?i)(\d+|an?|one)\s+(second|sec|minute|min|hour|hr|day|week|month|year)s?\s+ago`)

// ParseDate reads an absolute timestamp or a relative one such as "3 days ago".
// Relative dates are resolved against now and flagged as approximate.
func ParseDate(s string, now time.Time) (*domain.DateWrapper, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil, errUnparsable("date", s)
	}

	for _, format := range absoluteFormats {
		if t, err := time.Parse(format, text); err == nil {
			return domain.NewDate(t), nil
		}
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "just now"), strings.Contains(lower, "today"):
		return domain.NewApproximateDate(now), nil
	case strings.Contains(lower, "yesterday"):
		return domain.NewApproximateDate(now.AddDate(0, 0, -1)), nil
	}

	m := relativePattern.FindStringSubmatch(lower)
	if m == nil {
		return nil, errUnparsable("date", s)
	}

	n := 1
	if v, err := strconv.Atoi(m[1]); err == nil {
		n = v
	}

	var t time.Time
	switch m[2] {
	case "second", "sec":
		t = now.Add(-time.Duration(n) * time.Second)
	case "minute", "min":
		t = now.Add(-time.Duration(n) * time.Minute)
	case "hour", "hr":
		t = now.Add(-time.Duration(n) * time.Hour)
	case "day":
		t = now.AddDate(0, 0, -n)
	case "week":
		t = now.AddDate(0, 0, -7*n)
	case "month":
		t = now.AddDate(0, -n, 0)
	case "year":
		t = now.AddDate(-n, 0, 0)
	}
	return domain.NewApproximateDate(t), nil
}
