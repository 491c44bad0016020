package feed

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// parseTimeValue converts a timestamp value to time. Numbers and numeric strings are unix seconds,
// other strings are parsed as dates in loc unless they carry their own zone.
func parseTimeValue(v any, loc *time.Location) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case float64:
		return unixSeconds(val), true
	case int:
		return time.Unix(int64(val), 0).UTC(), true
	case int64:
		return time.Unix(val, 0).UTC(), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return unixSeconds(f), true
	case string:
		return parseTimeString(val, loc)
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return unixSeconds(f), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func unixSeconds(f float64) time.Time {
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// formatTime is the canonical timestamp text stored in items
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
