package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{
			name:     "seconds only",
			input:    42 * time.Second,
			expected: "42s",
		},
		{
			name:     "minutes and seconds",
			input:    3*time.Minute + 5*time.Second,
			expected: "3m5s",
		},
		{
			name:     "hours and minutes",
			input:    2*time.Hour + 30*time.Minute,
			expected: "2h30m",
		},
		{
			name:     "sub-second rounds down",
			input:    900 * time.Millisecond,
			expected: "0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatDuration(tt.input)
			if result != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "abc",
			n:        8,
			expected: "abc",
		},
		{
			name:     "long string truncated",
			input:    "YmTmalS1e8tKERfvJL8Dx",
			n:        8,
			expected: "YmTmalS1...",
		},
		{
			name:     "exact length unchanged",
			input:    "12345678",
			n:        8,
			expected: "12345678",
		},
		{
			name:     "empty string",
			input:    "",
			n:        4,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Snippet(tt.input, tt.n)
			if result != tt.expected {
				t.Errorf("Snippet(%q, %d) = %q, expected %q", tt.input, tt.n, result, tt.expected)
			}
		})
	}
}
