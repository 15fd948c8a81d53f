package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Timestamp layouts seen in LinkedIn markup, in preference order. The
// datetime attribute has drifted across markup versions.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// relativeTimeRe matches coarse relative-time phrases such as "2w ago",
// "5 months ago", or "3d •" as rendered in the post header. The trailing
// "ago" or bullet separator is required: a bare duration like "3 days" also
// appears inside post bodies, where it is content, not a timestamp.
var relativeTimeRe = regexp.MustCompile(`(?i)\b(\d+)\s*(h|hr|hrs|hour|hours|d|day|days|w|wk|week|weeks|mo|month|months|yr|year|years)\b\s*(ago\b|[•·])`)

// parseAbsoluteTime parses a machine-readable datetime attribute value.
func parseAbsoluteTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime value")
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime format: %q", value)
}

// findRelativeTime scans free text for a relative-time phrase. It returns a
// normalized "<n><unit> ago" string. Relative times cannot be compared with a
// cutoff date without a reference "now", so callers must treat them as
// lower-confidence and exempt from date filtering.
func findRelativeTime(text string) (string, bool) {
	m := relativeTimeRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1] + normalizeUnit(m[2]) + " ago", true
}

func normalizeUnit(unit string) string {
	switch strings.ToLower(unit) {
	case "h", "hr", "hrs", "hour", "hours":
		return "h"
	case "d", "day", "days":
		return "d"
	case "w", "wk", "week", "weeks":
		return "w"
	case "mo", "month", "months":
		return "mo"
	case "yr", "year", "years":
		return "yr"
	default:
		return unit
	}
}
