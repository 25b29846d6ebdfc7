package catalog

import (
	"strings"
	"time"
)

// dateLayouts are tried in order against caller-supplied upload dates.
// yt-dlp reports dates as 20060102.
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC822,
}

// NormalizeDate parses a free-form date into canonical YYYY-MM-DD. Input
// that cannot be parsed falls back to the current date; persistence is never
// blocked on a bad date.
func NormalizeDate(input string, now time.Time) string {
	trimmed := strings.TrimSpace(input)
	if trimmed != "" {
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.Format("2006-01-02")
			}
		}
	}
	return now.Format("2006-01-02")
}
