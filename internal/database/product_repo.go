package database

import (
	"database/sql"

	"twc-crawler/internal/models"
)

// ProductRepository handles persisted product rows
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db.GetConn()}
}

// InsertProduct stores a complete product row. A slug crawled twice
// keeps its first row.
func (pr *ProductRepository) InsertProduct(slug string, p models.Product) error {
	_, err := pr.db.Exec(`
		INSERT OR IGNORE INTO products (
			slug, product_id, name, line_name, brand_name, description,
			images, barcode, price, size_volume, ingredients, skin_concern,
			source_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, slug, p.ProductID, p.Name, p.LineName, p.BrandName, p.Description,
		p.Images, p.Barcode, p.Price, p.SizeVolume, p.Ingredients, p.SkinConcern,
		p.SourceURL)
	return err
}

// GetAllProducts returns every stored row in insertion order
func (pr *ProductRepository) GetAllProducts() ([]models.Product, error) {
	rows, err := pr.db.Query(`
		SELECT product_id, name, line_name, brand_name, description,
			images, barcode, price, size_volume, ingredients, skin_concern,
			source_url
		FROM products
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var lineName sql.NullString
		if err := rows.Scan(&p.ProductID, &p.Name, &lineName, &p.BrandName,
			&p.Description, &p.Images, &p.Barcode, &p.Price, &p.SizeVolume,
			&p.Ingredients, &p.SkinConcern, &p.SourceURL); err != nil {
			return nil, err
		}
		p.LineName = lineName.String
		products = append(products, p)
	}

	return products, rows.Err()
}

// CountProducts returns the number of stored rows
func (pr *ProductRepository) CountProducts() (int, error) {
	var count int
	err := pr.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// CountDistinctBrands returns how many different brands the stored
// rows cover. "N/A" rows are not a brand.
func (pr *ProductRepository) CountDistinctBrands() (int, error) {
	var count int
	err := pr.db.QueryRow(`
		SELECT COUNT(DISTINCT brand_name) FROM products
		WHERE brand_name != '' AND brand_name != 'N/A'
	`).Scan(&count)
	return count, err
}
