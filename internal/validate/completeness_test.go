package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"twc-crawler/internal/models"
)

func fullProduct() models.Product {
	return models.Product{
		ProductID:   "123401",
		Name:        "Hydra Boost Gel Cream 50mL",
		LineName:    "Hydra Boost",
		BrandName:   "Neutrogena",
		Description: "A lightweight gel cream for dry skin.",
		Images:      "https://cdn.example.com/a.jpg|https://cdn.example.com/b.jpg",
		Barcode:     "9300607123456",
		Price:       "24.99",
		SizeVolume:  "50mL",
		Ingredients: "Aqua, Glycerin",
		SkinConcern: "dry skin",
		SourceURL:   "https://terrywhitechemmart.com.au/shop/product/hydra-boost-gel-cream",
	}
}

func TestCheckCompleteRow(t *testing.T) {
	c := New()

	ok, missing := c.Check(fullProduct())
	assert.True(t, ok)
	assert.Empty(t, missing)
}

func TestCheckLineNameMayBeMissing(t *testing.T) {
	c := New()

	p := fullProduct()
	p.LineName = "N/A"
	ok, _ := c.Check(p)
	assert.True(t, ok)

	p.LineName = ""
	ok, _ = c.Check(p)
	assert.True(t, ok)
}

func TestCheckReportsFirstMissingColumn(t *testing.T) {
	c := New()

	tests := []struct {
		name   string
		mutate func(*models.Product)
		want   string
	}{
		{"empty price", func(p *models.Product) { p.Price = "" }, "Price"},
		{"placeholder barcode", func(p *models.Product) { p.Barcode = "N/A" }, "Barcode (EAN/UPC)"},
		{"placeholder ingredients", func(p *models.Product) { p.Ingredients = "N/A" }, "Ingredients"},
		{"empty product id", func(p *models.Product) { p.ProductID = "" }, "Product ID"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := fullProduct()
			tc.mutate(&p)
			ok, missing := c.Check(p)
			assert.False(t, ok)
			assert.Equal(t, tc.want, missing)
		})
	}
}

func TestCheckReportsColumnsInOrder(t *testing.T) {
	c := New()

	// With several fields missing the first one in column order wins.
	p := fullProduct()
	p.BrandName = ""
	p.SkinConcern = "N/A"
	ok, missing := c.Check(p)
	assert.False(t, ok)
	assert.Equal(t, "Brand Name", missing)
}
