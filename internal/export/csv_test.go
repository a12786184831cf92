package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twc-crawler/internal/models"
)

func sampleProduct(id, brand string) models.Product {
	return models.Product{
		ProductID:   id,
		Name:        "Sample Product " + id,
		LineName:    "Sample Line",
		BrandName:   brand,
		Description: "A sample product used in tests.",
		Images:      "https://cdn.twc.test/" + id + ".jpg",
		Barcode:     "930060700" + id,
		Price:       "19.99",
		SizeVolume:  "50mL",
		Ingredients: "Aqua, Glycerin",
		SkinConcern: "dry skin",
		SourceURL:   "https://twc.test/shop/product/sample-" + id,
	}
}

func TestExportNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	var report bytes.Buffer
	ce := &CSVExporter{out: &report}

	require.NoError(t, ce.Export(path, nil))
	assert.Contains(t, report.String(), "No data to save.")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file should be written without data")
}

func TestExportWritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	var report bytes.Buffer
	ce := &CSVExporter{out: &report}

	incomplete := sampleProduct("102", "CeraVe")
	incomplete.LineName = "N/A"
	incomplete.Price = "N/A"
	products := []models.Product{sampleProduct("101", "Neutrogena"), incomplete}

	require.NoError(t, ce.Export(path, products))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, models.ProductColumns, records[0])
	assert.Equal(t, products[0].Row(), records[1])
	assert.Equal(t, products[1].Row(), records[2])

	out := report.String()
	assert.Contains(t, out, "Total products: 2")
	assert.Contains(t, out, "Unique brands: 2")
	assert.Contains(t, out, "OK Product Name: 2/2 (100.0%)")
	assert.Contains(t, out, "!!! Product Line Name: 1/2 (50.0%)")
	assert.Contains(t, out, "!!! Price: 1/2 (50.0%)")
}

func TestExportReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale partial data"), 0o644))

	ce := &CSVExporter{out: &bytes.Buffer{}}
	require.NoError(t, ce.Export(path, []models.Product{sampleProduct("103", "Sukin")}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale")
	assert.Contains(t, string(content), "Product ID")
	assert.Contains(t, string(content), "sample-103")
}

func TestSummaryMarkers(t *testing.T) {
	var report bytes.Buffer
	ce := &CSVExporter{out: &report}

	products := make([]models.Product, 5)
	for i := range products {
		products[i] = sampleProduct(string(rune('0'+i)), "Brand")
		products[i].LineName = ""
	}
	// 4 of 5 sizes present puts Size/Volume exactly on the 80% line.
	products[4].SizeVolume = "N/A"

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, ce.Export(path, products))

	out := report.String()
	assert.Contains(t, out, "Unique brands: 1")
	assert.Contains(t, out, "  OK Product Name: 5/5 (100.0%)")
	assert.Contains(t, out, "  ! Size/Volume: 4/5 (80.0%)")
	assert.Contains(t, out, "  !!! Product Line Name: 0/5 (0.0%)")
}
