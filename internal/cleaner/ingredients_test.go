package cleaner

import (
	"testing"
)

func TestIngredients(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "uppercase list with period separators",
			input:    "AQUA, GLYCERIN, SODIUM LAURYL SULFATE. FRAGRANCE.",
			expected: "Aqua, Glycerin, Sodium Lauryl Sulfate, Fragrance",
		},
		{
			name:     "decimal percentages survive",
			input:    "GLYCERIN (1.5%), WATER. SODIUM CHLORIDE.",
			expected: "Glycerin (1.5%), Water, Sodium Chloride",
		},
		{
			name:     "connector words stay lowercase",
			input:    "EXTRACT OF ALOE AND OIL FROM COCONUT",
			expected: "Extract of Aloe and Oil from Coconut",
		},
		{
			name:     "html markup stripped first",
			input:    "<p>AQUA,<br/> PARFUM.</p>",
			expected: "Aqua, Parfum",
		},
		{
			name:     "duplicate commas collapse",
			input:    "water,, glycerin,  , panthenol",
			expected: "Water, Glycerin, Panthenol",
		},
		{
			name:     "whitespace normalised around commas",
			input:    "aqua ,glycerin   ,  urea",
			expected: "Aqua, Glycerin, Urea",
		},
		{
			name:     "trailing separators trimmed",
			input:    "NIACINAMIDE, ZINC PCA, ",
			expected: "Niacinamide, Zinc Pca",
		},
		{
			name:     "empty passes through",
			input:    "",
			expected: "",
		},
		{
			name:     "placeholder passes through",
			input:    "N/A",
			expected: "N/A",
		},
		{
			name:     "markup only becomes placeholder",
			input:    "<div>   </div>",
			expected: "N/A",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Ingredients(tc.input)
			if got != tc.expected {
				t.Errorf("Ingredients(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
