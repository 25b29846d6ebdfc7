package catalog

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "2024-05-17", "2024-05-17"},
		{"yt-dlp compact", "20240517", "2024-05-17"},
		{"rfc3339", "2024-05-17T10:30:00Z", "2024-05-17"},
		{"slashes", "2024/05/17", "2024-05-17"},
		{"us style", "05/17/2024", "2024-05-17"},
		{"dotted european", "17.05.2024", "2024-05-17"},
		{"month name", "May 17, 2024", "2024-05-17"},
		{"garbage falls back to today", "not a date", "2026-08-30"},
		{"empty falls back to today", "", "2026-08-30"},
		{"whitespace falls back to today", "   ", "2026-08-30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeDate(tc.input, now)
			if got != tc.want {
				t.Fatalf("NormalizeDate(%q) = %q, want %q", tc.input, got, tc.want)
			}
			if _, err := time.Parse("2006-01-02", got); err != nil {
				t.Fatalf("result %q is not a valid calendar date: %v", got, err)
			}
		})
	}
}
