package normalizer

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// GetPath walks a decoded JSON object along a dotted path such as "owner.avatars.0.url".
// Numeric segments index into arrays.
func GetPath(data map[string]any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}

	var cur any = data
	for _, seg := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}

	if cur == nil {
		return nil, false
	}
	return cur, true
}

// LookupString returns the value at path as a trimmed string.
// Numbers are formatted without a fractional part.
func LookupString(data map[string]any, path string) (string, bool) {
	val, ok := GetPath(data, path)
	if !ok {
		return "", false
	}
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// LookupInt returns the value at path as an integer. Strings are accepted when they hold a plain or abbreviated count.
func LookupInt(data map[string]any, path string) (int64, bool) {
	val, ok := GetPath(data, path)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		if n, err := ParseCount(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func LookupFloat(data map[string]any, path string) (float64, bool) {
	val, ok := GetPath(data, path)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func LookupBool(data map[string]any, path string) (bool, bool) {
	val, ok := GetPath(data, path)
	if !ok {
		return false, false
	}
	switch v := val.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	case string:
		return v == "true" || v == "1", true
	}
	return false, false
}

// GetString returns the first non-empty string found among paths
func GetString(data map[string]any, paths ...string) string {
	for _, path := range paths {
		if s, ok := LookupString(data, path); ok && s != "" {
			return s
		}
	}
	return ""
}

// GetInt returns the first integer found among paths, or 0
func GetInt(data map[string]any, paths ...string) int64 {
	for _, path := range paths {
		if n, ok := LookupInt(data, path); ok {
			return n
		}
	}
	return 0
}

// GetBool returns the first boolean found among paths, or false
func GetBool(data map[string]any, paths ...string) bool {
	for _, path := range paths {
		if b, ok := LookupBool(data, path); ok {
			return b
		}
	}
	return false
}

// CleanText decodes HTML entities and collapses whitespace
func CleanText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// ParseUnixTimestamp converts seconds since the epoch in any JSON representation to a time
func ParseUnixTimestamp(val any) time.Time {
	if val == nil {
		return time.Time{}
	}
	switch v := val.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	case int:
		return time.Unix(int64(v), 0).UTC()
	case string:
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(ts, 0).UTC()
		}
	case time.Time:
		return v
	}
	return time.Time{}
}

func errUnparsable(kind, s string) error {
	return fmt.Errorf("could not parse %s from %q", kind, s)
}
