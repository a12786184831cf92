package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// Category is a catalogue section with its discovery cursor. NextPage
// is the next listing page to fetch; a category is exhausted once the
// API returns an empty page for it.
type Category struct {
	Slug         string
	NextPage     int
	FetchedCount int
	Exhausted    bool
}

// CategoryRepository handles category discovery cursors
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db.GetConn()}
}

// SeedCategories inserts the configured category slugs. Existing
// cursors keep their position.
func (cr *CategoryRepository) SeedCategories(slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}

	tx, err := cr.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO categories (slug) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, err := stmt.Exec(slug); err != nil {
			return fmt.Errorf("failed to insert category %s: %w", slug, err)
		}
	}

	return tx.Commit()
}

// GetActiveCategories returns categories that still have pages left
func (cr *CategoryRepository) GetActiveCategories() ([]Category, error) {
	rows, err := cr.db.Query(`
		SELECT slug, next_page, fetched_count, exhausted
		FROM categories
		WHERE exhausted = 0
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Slug, &c.NextPage, &c.FetchedCount, &c.Exhausted); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// AdvancePage moves the cursor to the next listing page after a fetch
func (cr *CategoryRepository) AdvancePage(slug string, fetched int) error {
	_, err := cr.db.Exec(`
		UPDATE categories
		SET next_page = next_page + 1,
			fetched_count = fetched_count + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE slug = ?
	`, fetched, slug)
	return err
}

// MarkCategoryExhausted records that a category has no pages left
func (cr *CategoryRepository) MarkCategoryExhausted(slug string) error {
	_, err := cr.db.Exec(`
		UPDATE categories
		SET exhausted = 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE slug = ?
	`, slug)
	return err
}

// ResetCategories reopens every category at page 1. Used when the whole
// catalogue was swept once but more products are still wanted, since
// listings change between runs. The lifetime fetched_count is kept.
func (cr *CategoryRepository) ResetCategories() error {
	_, err := cr.db.Exec(`
		UPDATE categories
		SET next_page = 1,
			exhausted = 0,
			updated_at = CURRENT_TIMESTAMP
	`)
	return err
}

// CountActiveCategories returns the count of categories with pages left
func (cr *CategoryRepository) CountActiveCategories() (int, error) {
	var count int
	err := cr.db.QueryRow(`
		SELECT COUNT(*) FROM categories WHERE exhausted = 0
	`).Scan(&count)
	return count, err
}
