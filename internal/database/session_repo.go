package database

import (
	"database/sql"
	"fmt"
)

// SessionRepository handles device identifier sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.GetConn()}
}

// AddSession adds a new session
func (sr *SessionRepository) AddSession(deviceID string) error {
	_, err := sr.db.Exec(`
		INSERT OR IGNORE INTO sessions (device_identifier) VALUES (?)
	`, deviceID)
	return err
}

// AddSessions adds multiple sessions (batch insert)
func (sr *SessionRepository) AddSessions(deviceIDs []string) error {
	if len(deviceIDs) == 0 {
		return nil
	}

	tx, err := sr.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO sessions (device_identifier) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range deviceIDs {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
	}

	return tx.Commit()
}

// GetValidSessions returns all valid device identifiers, least
// recently used first
func (sr *SessionRepository) GetValidSessions() ([]string, error) {
	rows, err := sr.db.Query(`
		SELECT device_identifier FROM sessions
		WHERE is_valid = 1
		ORDER BY COALESCE(last_used_at, created_at) ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// MarkSessionAsUsed updates the last used timestamp
func (sr *SessionRepository) MarkSessionAsUsed(deviceID string) error {
	_, err := sr.db.Exec(`
		UPDATE sessions
		SET last_used_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE device_identifier = ?
	`, deviceID)
	return err
}

// InvalidateSession marks a session as invalid
func (sr *SessionRepository) InvalidateSession(deviceID string) error {
	_, err := sr.db.Exec(`
		UPDATE sessions
		SET is_valid = 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE device_identifier = ?
	`, deviceID)
	return err
}

// RevalidateSession marks a session as valid again. Used when a probe
// shows a previously failed identifier works after all.
func (sr *SessionRepository) RevalidateSession(deviceID string) error {
	_, err := sr.db.Exec(`
		UPDATE sessions
		SET is_valid = 1,
			failure_count = 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE device_identifier = ?
	`, deviceID)
	return err
}

// IncrementSessionFailure increments failure count
func (sr *SessionRepository) IncrementSessionFailure(deviceID string) error {
	_, err := sr.db.Exec(`
		UPDATE sessions
		SET failure_count = failure_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE device_identifier = ?
	`, deviceID)
	return err
}

// GetValidSessionCount returns the count of valid sessions
func (sr *SessionRepository) GetValidSessionCount() (int, error) {
	var count int
	err := sr.db.QueryRow(`
		SELECT COUNT(*) FROM sessions WHERE is_valid = 1
	`).Scan(&count)
	return count, err
}
