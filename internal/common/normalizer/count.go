package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var countPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*([kmb]\b)?`)

var countMultipliers = map[string]float64{
	"k": 1e3,
	"m": 1e6,
	"b": 1e9,
}

// ParseCount reads a view, subscriber or like count such as "1,234 views", "1.2K" or "3M subscribers".
// Texts that only say there is nothing ("No views") parse as zero.
func ParseCount(s string) (int64, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, errUnparsable("count", s)
	}
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "no ") || lower == "no" {
		return 0, nil
	}

	m := countPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, errUnparsable("count", s)
	}

	number, suffix := m[1], strings.ToLower(m[2])
	if suffix == "" {
		// Without a multiplier separators are grouping only
		digits := strings.NewReplacer(",", "", ".", "").Replace(number)
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, errUnparsable("count", s)
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", "."), 64)
	if err != nil {
		return 0, errUnparsable("count", s)
	}
	return int64(math.Round(f * countMultipliers[suffix])), nil
}
