package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Morning Briefing", "Morning Briefing"},
		{"slashes", "news/politics: update", "news-politics- update"},
		{"stripped characters", `what? "quoted" <tag>`, "what quoted tag"},
		{"whitespace", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.input); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Morning Briefing", "morning_briefing"},
		{"keeps digits and dashes", "clip-42_final", "clip-42_final"},
		{"collapses to unknown", "!!!", "unknown"},
		{"empty", "", "unknown"},
		{"unicode becomes underscore", "café live", "caf__live"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeToken(tc.input); got != tc.want {
				t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
