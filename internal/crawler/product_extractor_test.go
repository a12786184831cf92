package crawler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twc-crawler/internal/models"
)

func decodePayload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestExtractProduct(t *testing.T) {
	pe := NewProductExtractor()

	payload := decodePayload(t, `{
		"product_id": 123401,
		"name": "Neutrogena Hydro Boost Water Gel 50mL",
		"brand": {"brand_name": "Neutrogena"},
		"price": 29.99,
		"upc": "9300607000123",
		"images": {"2": "https://cdn.twc.test/b.jpg", "1": "https://cdn.twc.test/a.jpg"},
		"details": [
			{"content_label": "General Information", "content": "<p>Lightweight gel that instantly hydrates dry skin.</p>"},
			{"content_label": "Ingredients", "content": "AQUA, GLYCERIN. DIMETHICONE."}
		]
	}`)

	got := pe.ExtractProduct(payload, "hydro-boost-water-gel", "https://twc.test")

	want := models.Product{
		ProductID:   "123401",
		Name:        "Neutrogena Hydro Boost Water Gel 50mL",
		LineName:    "Hydro Boost Water",
		BrandName:   "Neutrogena",
		Description: "Lightweight gel that instantly hydrates dry skin.",
		Images:      "https://cdn.twc.test/a.jpg|https://cdn.twc.test/b.jpg",
		Barcode:     "9300607000123",
		Price:       "29.99",
		SizeVolume:  "50mL",
		Ingredients: "Aqua, Glycerin, Dimethicone",
		SkinConcern: "dry skin",
		SourceURL:   "https://twc.test/shop/product/hydro-boost-water-gel",
	}
	assert.Equal(t, want, got)
}

func TestExtractProductSparsePayload(t *testing.T) {
	pe := NewProductExtractor()

	payload := decodePayload(t, `{"name": "Mystery Item"}`)
	got := pe.ExtractProduct(payload, "mystery-item", "https://twc.test")

	assert.Equal(t, "N/A", got.ProductID)
	assert.Equal(t, "Mystery Item", got.Name)
	assert.Equal(t, "N/A", got.LineName)
	assert.Equal(t, "N/A", got.BrandName)
	assert.Equal(t, "N/A", got.Description)
	assert.Equal(t, "N/A", got.Images)
	assert.Equal(t, "N/A", got.Barcode)
	assert.Equal(t, "N/A", got.Price)
	assert.Equal(t, "N/A", got.SizeVolume)
	assert.Equal(t, "N/A", got.Ingredients)
	assert.Equal(t, "N/A", got.SkinConcern)
	assert.Equal(t, "https://twc.test/shop/product/mystery-item", got.SourceURL)
}

func TestExtractDetail(t *testing.T) {
	pe := NewProductExtractor()

	details := []any{
		map[string]any{"content_label": "Warnings", "content": "Keep out of reach of children."},
		map[string]any{"content_label": "Ingredients", "content": "<ul><li>Aqua</li><li>Urea</li></ul>"},
	}

	assert.Equal(t, "Aqua Urea", pe.ExtractDetail(details, "Ingredients"))
	assert.Equal(t, "Keep out of reach of children.", pe.ExtractDetail(details, "Warnings"))
	assert.Equal(t, "", pe.ExtractDetail(details, "Directions"))
	assert.Equal(t, "", pe.ExtractDetail(nil, "Ingredients"))
}

func TestExtractSizeVolume(t *testing.T) {
	pe := NewProductExtractor()

	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{
			name:     "millilitres in name",
			payload:  `{"name": "Daily Face Wash 125ml"}`,
			expected: "125ml",
		},
		{
			name:     "name wins over details",
			payload:  `{"name": "Body Butter 200g", "details": [{"content": "Available in 500ml"}]}`,
			expected: "200g",
		},
		{
			name:     "details searched when name has no size",
			payload:  `{"name": "Sleep Support", "details": [{"content": "Each pack holds 60 tablets"}]}`,
			expected: "60tablet",
		},
		{
			name:     "description fallback",
			payload:  `{"name": "Travel Kit", "description": "Contains a 100 mL bottle"}`,
			expected: "100mL",
		},
		{
			name:     "attributes fallback",
			payload:  `{"name": "Bath Salts", "attributes": {"net_weight": "1.5kg"}}`,
			expected: "1.5kg",
		},
		{
			name:     "fluid ounces",
			payload:  `{"name": "Imported Toner 6.7 fl oz"}`,
			expected: "6.7fl oz",
		},
		{
			name:     "no size anywhere",
			payload:  `{"name": "Gift Card", "description": "The perfect present"}`,
			expected: "N/A",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload := decodePayload(t, tc.payload)
			assert.Equal(t, tc.expected, pe.ExtractSizeVolume(payload))
		})
	}
}

func TestDetectSkinConcerns(t *testing.T) {
	pe := NewProductExtractor()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "single concern",
			text:     "Targets stubborn acne and breakouts",
			expected: []string{"acne"},
		},
		{
			name:     "multiple concerns in fixed order",
			text:     "A gentle SPF moisturizer that brightens dull skin",
			expected: []string{"dry skin", "sensitive skin", "sun protection", "dullness"},
		},
		{
			name:     "spacing variants",
			text:     "for oily  skin with excess oil",
			expected: []string{"oily skin"},
		},
		{
			name:     "anti ageing spelling",
			text:     "anti-aging formula smooths fine lines",
			expected: []string{"anti-aging"},
		},
		{
			name:     "no concerns",
			text:     "A practical toothbrush holder",
			expected: nil,
		},
		{
			name:     "empty text",
			text:     "",
			expected: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, pe.DetectSkinConcerns(tc.text))
		})
	}
}

func TestExtractLineName(t *testing.T) {
	pe := NewProductExtractor()

	t.Run("explicit detail label wins", func(t *testing.T) {
		payload := decodePayload(t, `{
			"name": "First Aid Beauty Ultra Repair Cream",
			"brand": {"brand_name": "First Aid Beauty"},
			"details": [{"content_label": "Product Range", "content": "<b>Ultra Repair</b>"}]
		}`)
		assert.Equal(t, "Ultra Repair", pe.ExtractLineName(payload))
	})

	t.Run("overlong detail content is ignored", func(t *testing.T) {
		long := make([]byte, 120)
		for i := range long {
			long[i] = 'x'
		}
		payload := decodePayload(t, `{
			"name": "Neutrogena Hydro Boost 50mL",
			"brand": {"brand_name": "Neutrogena"},
			"details": [{"content_label": "About this range", "content": "`+string(long)+`"}]
		}`)
		assert.Equal(t, "Hydro Boost", pe.ExtractLineName(payload))
	})

	t.Run("brand stripped from name", func(t *testing.T) {
		payload := decodePayload(t, `{
			"name": "La Roche-Posay Effaclar Duo Plus",
			"brand": {"brand_name": "La Roche-Posay"}
		}`)
		assert.Equal(t, "Effaclar Duo Plus", pe.ExtractLineName(payload))
	})

	t.Run("generic product words rejected", func(t *testing.T) {
		payload := decodePayload(t, `{
			"name": "CeraVe Moisturising Cream Pump",
			"brand": {"brand_name": "CeraVe"}
		}`)
		assert.Equal(t, "N/A", pe.ExtractLineName(payload))
	})

	t.Run("no brand means no line", func(t *testing.T) {
		payload := decodePayload(t, `{"name": "Unbranded Soothing Balm"}`)
		assert.Equal(t, "N/A", pe.ExtractLineName(payload))
	})
}
