package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeTimePattern = regexp.MustCompile(`(?i)(\d+)\s*(m|h|d|minute|hour|day)s?\s*ago`)

// absoluteTimeLayouts are tried in order; zone-less layouts are read as UTC.
var absoluteTimeLayouts = []string{
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseTime parses a publication time string such as "33m ago",
// "2 hours ago" or "2024-05-01". Relative values are resolved against anchor.
// It returns nil when the string cannot be interpreted.
func ParseTime(s string, anchor time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t := parseRelativeTime(s, anchor); t != nil {
		return t
	}
	return parseAbsoluteTime(s)
}

func parseRelativeTime(s string, anchor time.Time) *time.Time {
	m := relativeTimePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}

	var unit time.Duration
	switch strings.ToLower(m[2])[0] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	default:
		return nil
	}
	t := anchor.UTC().Add(-time.Duration(n) * unit)
	return &t
}

func parseAbsoluteTime(s string) *time.Time {
	for _, layout := range absoluteTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
