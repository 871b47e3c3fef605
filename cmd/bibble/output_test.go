package main

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"shorter than limit", "short", 60, "short"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"truncated with ellipsis", "abcdefghij", 8, "abcde..."},
		{"limit of three", "abcdefghij", 3, "abc"},
		{"limit of one", "abcdefghij", 1, "a"},
		{"limit of zero", "abcdefghij", 0, ""},
		{"negative limit", "abcdefghij", -5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}
