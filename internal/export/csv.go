// internal/export/csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"

	"twc-crawler/internal/models"
)

// CSVExporter writes completed product rows to the output file and
// prints the completeness report.
type CSVExporter struct {
	out io.Writer
}

// NewCSVExporter creates a new CSVExporter reporting to stdout
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{out: os.Stdout}
}

// Export writes the products as CSV to path. The file only replaces an
// existing export once it is fully written, so an aborted run never
// leaves a truncated file behind.
func (ce *CSVExporter) Export(path string, products []models.Product) error {
	if len(products) == 0 {
		fmt.Fprintln(ce.out, "No data to save.")
		return nil
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending CSV file: %w", err)
	}
	defer func() {
		// Cleanup removes the temp file if it was not committed
		_ = pending.Cleanup()
	}()

	w := csv.NewWriter(pending)
	if err := w.Write(models.ProductColumns); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, p := range products {
		if err := w.Write(p.Row()); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace CSV file: %w", err)
	}

	ce.printSummary(path, products)
	return nil
}

// printSummary reports row counts and per-column completeness so a
// glance at the console shows how good the export is.
func (ce *CSVExporter) printSummary(path string, products []models.Product) {
	fmt.Fprintf(ce.out, "\nData saved to %s\n", path)
	fmt.Fprintf(ce.out, "Total products: %d\n", len(products))
	fmt.Fprintf(ce.out, "Unique brands: %d\n", countUniqueBrands(products))

	fmt.Fprintf(ce.out, "\nData completeness:\n")
	total := len(products)
	rows := make([][]string, total)
	for i, p := range products {
		rows[i] = p.Row()
	}

	for ci, column := range models.ProductColumns {
		filled := 0
		for _, row := range rows {
			if row[ci] != "" && row[ci] != "N/A" {
				filled++
			}
		}
		percentage := float64(filled) * 100 / float64(total)

		status := "!!!"
		if percentage == 100 {
			status = "OK"
		} else if percentage >= 80 {
			status = "!"
		}
		fmt.Fprintf(ce.out, "  %s %s: %d/%d (%.1f%%)\n", status, column, filled, total, percentage)
	}
}

func countUniqueBrands(products []models.Product) int {
	brands := make(map[string]bool)
	for _, p := range products {
		if p.BrandName != "" && p.BrandName != "N/A" {
			brands[p.BrandName] = true
		}
	}
	return len(brands)
}
