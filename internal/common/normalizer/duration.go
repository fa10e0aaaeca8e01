package normalizer

import (
	"regexp"
	"strconv"
	"strings"
)

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration converts "1:02:03", "4:05", "PT1H2M3S" or a plain number of seconds to seconds
func ParseDuration(s string) (int64, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, errUnparsable("duration", s)
	}

	if m := isoDurationPattern.FindStringSubmatch(strings.ToUpper(text)); m != nil && text != "P" {
		var total float64
		for i, unit := range []float64{86400, 3600, 60, 1} {
			if m[i+1] == "" {
				continue
			}
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				return 0, errUnparsable("duration", s)
			}
			total += v * unit
		}
		return int64(total), nil
	}

	parts := strings.Split(text, ":")
	if len(parts) > 4 {
		return 0, errUnparsable("duration", s)
	}

	// Right to left: seconds, minutes, hours, days
	units := []int64{1, 60, 3600, 86400}
	var total int64
	for i := range parts {
		part := strings.TrimSpace(parts[len(parts)-1-i])
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil || v < 0 {
			return 0, errUnparsable("duration", s)
		}
		total += v * units[i]
	}
	return total, nil
}
