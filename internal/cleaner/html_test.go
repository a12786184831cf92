package cleaner

import (
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Gentle daily cleanser",
			expected: "Gentle daily cleanser",
		},
		{
			name:     "tags stripped",
			input:    "<p>Apply <strong>twice</strong> daily.</p>",
			expected: "Apply twice daily.",
		},
		{
			name:     "nested structure flattened",
			input:    "<div><ul><li>Paraben free</li><li>Vegan</li></ul></div>",
			expected: "Paraben free Vegan",
		},
		{
			name:     "entities decoded",
			input:    "Soap &amp; Glory&nbsp;Wash",
			expected: "Soap & Glory Wash",
		},
		{
			name:     "whitespace collapsed",
			input:    "  too \n\t many    spaces  ",
			expected: "too many spaces",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Text(tc.input)
			if got != tc.expected {
				t.Errorf("Text(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
