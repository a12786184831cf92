package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// SlugStatus represents the crawl state of a product slug
type SlugStatus string

const (
	SlugStatusPending         SlugStatus = "pending"
	SlugStatusComplete        SlugStatus = "complete"
	SlugStatusIncomplete      SlugStatus = "incomplete"
	SlugStatusFailed          SlugStatus = "failed"
	SlugStatusPermanentFailed SlugStatus = "permanent_failed"
)

// QueuedSlug pairs a product slug with the category it was found in.
type QueuedSlug struct {
	Slug     string
	Category string
}

// SlugRepository handles the product slug work queue
type SlugRepository struct {
	db *sql.DB
}

// NewSlugRepository creates a new slug repository
func NewSlugRepository(db *DB) *SlugRepository {
	return &SlugRepository{db: db.GetConn()}
}

// EnqueueSlugs inserts newly discovered slugs (batch insert). Slugs
// already present keep their state, so re-discovering is harmless.
func (sr *SlugRepository) EnqueueSlugs(slugs []QueuedSlug) error {
	if len(slugs) == 0 {
		return nil
	}

	tx, err := sr.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO slugs (slug, category) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, qs := range slugs {
		slug := strings.TrimSpace(qs.Slug)
		if slug == "" {
			continue
		}
		if _, err := stmt.Exec(slug, qs.Category); err != nil {
			return fmt.Errorf("failed to insert slug %s: %w", slug, err)
		}
	}

	return tx.Commit()
}

// GetPendingSlugs returns slugs that need to be processed
func (sr *SlugRepository) GetPendingSlugs(limit int) ([]string, error) {
	query := `SELECT slug FROM slugs WHERE status = 'pending' ORDER BY id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := sr.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlugs(rows)
}

// GetSlugsByStatus returns slugs with a specific status
func (sr *SlugRepository) GetSlugsByStatus(status SlugStatus) ([]string, error) {
	rows, err := sr.db.Query(`SELECT slug FROM slugs WHERE status = ?`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlugs(rows)
}

// UpdateSlugStatus updates the status of a slug
func (sr *SlugRepository) UpdateSlugStatus(slug string, status SlugStatus) error {
	_, err := sr.db.Exec(`
		UPDATE slugs
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE slug = ?
	`, status, slug)
	return err
}

// MarkSlugIncomplete records a fetched slug whose row misses required
// data. The missing column is kept for the run report.
func (sr *SlugRepository) MarkSlugIncomplete(slug string, missingColumn string) error {
	_, err := sr.db.Exec(`
		UPDATE slugs
		SET status = ?,
			last_error = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE slug = ?
	`, SlugStatusIncomplete, "missing "+missingColumn, slug)
	return err
}

// IncrementRetryCount increments the retry count for a slug
func (sr *SlugRepository) IncrementRetryCount(slug string, lastError string) error {
	_, err := sr.db.Exec(`
		UPDATE slugs
		SET retry_count = retry_count + 1,
			last_error = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE slug = ?
	`, lastError, slug)
	return err
}

// GetSlugStats returns statistics about the slug queue
func (sr *SlugRepository) GetSlugStats() (map[string]int, error) {
	rows, err := sr.db.Query(`
		SELECT status, COUNT(*) as count
		FROM slugs
		GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Add total count
	var total int
	err = sr.db.QueryRow(`SELECT COUNT(*) FROM slugs`).Scan(&total)
	if err != nil {
		return nil, err
	}
	stats["total"] = total

	return stats, nil
}

// GetRemainingSlugs returns slugs that still need processing, least
// retried first
func (sr *SlugRepository) GetRemainingSlugs() ([]string, error) {
	rows, err := sr.db.Query(`
		SELECT slug FROM slugs
		WHERE status IN ('pending', 'failed')
		ORDER BY retry_count ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlugs(rows)
}

// CountRemainingSlugs returns the count of slugs that need processing
func (sr *SlugRepository) CountRemainingSlugs() (int, error) {
	var count int
	err := sr.db.QueryRow(`
		SELECT COUNT(*) FROM slugs
		WHERE status IN ('pending', 'failed')
	`).Scan(&count)
	return count, err
}

func scanSlugs(rows *sql.Rows) ([]string, error) {
	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}
