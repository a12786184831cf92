// internal/storage/db_storage.go
package storage

import (
	"fmt"
	"os"
	"strings"

	"twc-crawler/internal/database"
)

// DBStorage manages all crawl state using SQLite
type DBStorage struct {
	DB           *database.DB
	SlugRepo     *database.SlugRepository
	ProductRepo  *database.ProductRepository
	SessionRepo  *database.SessionRepository
	CategoryRepo *database.CategoryRepository
}

// NewDBStorage creates a new database storage
func NewDBStorage(dbPath string) (*DBStorage, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	return &DBStorage{
		DB:           db,
		SlugRepo:     database.NewSlugRepository(db),
		ProductRepo:  database.NewProductRepository(db),
		SessionRepo:  database.NewSessionRepository(db),
		CategoryRepo: database.NewCategoryRepository(db),
	}, nil
}

// Close closes the database connection
func (ds *DBStorage) Close() error {
	return ds.DB.Close()
}

// SeedCategories registers the configured category slugs. Categories
// already known keep their page cursors.
func (ds *DBStorage) SeedCategories(categories []string) error {
	return ds.CategoryRepo.SeedCategories(categories)
}

// SeedSession stores the configured device identifier so a fresh
// database starts with at least one usable session.
func (ds *DBStorage) SeedSession(deviceIdentifier string) error {
	deviceIdentifier = strings.TrimSpace(deviceIdentifier)
	if deviceIdentifier == "" {
		return nil
	}
	return ds.SessionRepo.AddSession(deviceIdentifier)
}

// ImportSlugsFromFile enqueues product slugs from a seed file, one
// slug per line or "category,slug" pairs. Comment lines start with #.
func (ds *DBStorage) ImportSlugsFromFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		// No seed file is OK
		return nil
	}

	lines := strings.Split(string(content), "\n")
	var slugs []database.QueuedSlug

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		queued := database.QueuedSlug{Slug: line}
		if strings.Contains(line, ",") {
			parts := strings.SplitN(line, ",", 2)
			queued.Category = strings.TrimSpace(parts[0])
			queued.Slug = strings.TrimSpace(parts[1])
		}
		if queued.Slug != "" {
			slugs = append(slugs, queued)
		}
	}

	return ds.SlugRepo.EnqueueSlugs(slugs)
}

// SessionStorage reads and writes device identifier sessions through
// the database.
type SessionStorage struct {
	dbStorage *DBStorage
}

// NewSessionStorage creates a SessionStorage. Until SetDBStorage is
// called it works against the globally initialized storage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{}
}

// SetDBStorage pins the database storage this SessionStorage uses
func (ss *SessionStorage) SetDBStorage(ds *DBStorage) {
	ss.dbStorage = ds
}

func (ss *SessionStorage) storage() (*DBStorage, error) {
	if ss.dbStorage != nil {
		return ss.dbStorage, nil
	}
	if globalDBStorage != nil {
		return globalDBStorage, nil
	}
	return nil, fmt.Errorf("database storage not initialized")
}

// LoadSessions returns valid device identifiers, least recently used
// first.
func (ss *SessionStorage) LoadSessions() ([]string, error) {
	ds, err := ss.storage()
	if err != nil {
		return nil, err
	}
	return ds.SessionRepo.GetValidSessions()
}

// SaveSessions stores freshly validated device identifiers. A session
// invalidated in an earlier run becomes valid again, it just passed
// validation.
func (ss *SessionStorage) SaveSessions(sessions []string) error {
	ds, err := ss.storage()
	if err != nil {
		return err
	}
	if err := ds.SessionRepo.AddSessions(sessions); err != nil {
		return err
	}
	for _, session := range sessions {
		if err := ds.SessionRepo.RevalidateSession(session); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateSession marks a rejected device identifier as unusable
func (ss *SessionStorage) InvalidateSession(session string) error {
	ds, err := ss.storage()
	if err != nil {
		return err
	}
	return ds.SessionRepo.InvalidateSession(session)
}

// MarkSessionUsed bumps the last-used timestamp that drives rotation
// order.
func (ss *SessionStorage) MarkSessionUsed(session string) error {
	ds, err := ss.storage()
	if err != nil {
		return err
	}
	return ds.SessionRepo.MarkSessionAsUsed(session)
}

// RecordSessionFailure counts a soft failure (rate limit, timeout)
// against a session without invalidating it.
func (ss *SessionStorage) RecordSessionFailure(session string) error {
	ds, err := ss.storage()
	if err != nil {
		return err
	}
	return ds.SessionRepo.IncrementSessionFailure(session)
}

var (
	globalDBStorage      *DBStorage
	globalSessionStorage = NewSessionStorage()
)

// InitializeDatabase initializes the global database storage
func InitializeDatabase(dbPath string) error {
	ds, err := NewDBStorage(dbPath)
	if err != nil {
		return err
	}

	globalDBStorage = ds
	globalSessionStorage.SetDBStorage(ds)

	return nil
}

// CloseDatabase closes the global database
func CloseDatabase() error {
	if globalDBStorage != nil {
		err := globalDBStorage.Close()
		globalDBStorage = nil
		return err
	}
	return nil
}

// GetDBStorage returns the global database storage
func GetDBStorage() *DBStorage {
	return globalDBStorage
}

// GetSessionStorage returns the global session storage
func GetSessionStorage() *SessionStorage {
	return globalSessionStorage
}
