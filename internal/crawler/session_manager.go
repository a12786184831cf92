package crawler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"twc-crawler/internal/models"
	"twc-crawler/internal/storage"
)

// SessionManager handles device identifier rotation. All state lives
// on the ProductCrawler, guarded by its SessionMutex.
type SessionManager struct{}

// GetSession returns a random valid device identifier
func (sm *SessionManager) GetSession(pc *models.ProductCrawler) string {
	pc.SessionMutex.Lock()
	defer pc.SessionMutex.Unlock()

	validSessions := []string{}
	for _, session := range pc.Sessions {
		if !pc.InvalidSessions[session] {
			validSessions = append(validSessions, session)
		}
	}

	if len(validSessions) == 0 {
		if len(pc.Sessions) > 0 {
			return pc.Sessions[0]
		}
		return ""
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	idx := r.Intn(len(validSessions))
	return validSessions[idx]
}

// AreAllSessionsFailed checks if all sessions have failed
func (sm *SessionManager) AreAllSessionsFailed(pc *models.ProductCrawler) bool {
	pc.SessionMutex.Lock()
	defer pc.SessionMutex.Unlock()
	return pc.AllSessionsFailed
}

// MarkSessionAsInvalid marks a session as invalid
func (sm *SessionManager) MarkSessionAsInvalid(pc *models.ProductCrawler, session string) {
	pc.SessionMutex.Lock()
	defer pc.SessionMutex.Unlock()
	pc.InvalidSessions[session] = true
}

// SetAllSessionsFailed sets the flag indicating all sessions have failed
func (sm *SessionManager) SetAllSessionsFailed(pc *models.ProductCrawler, failed bool) {
	pc.SessionMutex.Lock()
	defer pc.SessionMutex.Unlock()
	pc.AllSessionsFailed = failed
}

// GetValidSessionCount returns the number of valid sessions
func (sm *SessionManager) GetValidSessionCount(pc *models.ProductCrawler) int {
	pc.SessionMutex.Lock()
	defer pc.SessionMutex.Unlock()

	validCount := 0
	for _, session := range pc.Sessions {
		if !pc.InvalidSessions[session] {
			validCount++
		}
	}
	return validCount
}

// CheckIfAllSessionsInvalid checks if all sessions are now invalid and updates the flag
func (sm *SessionManager) CheckIfAllSessionsInvalid(pc *models.ProductCrawler) bool {
	pc.SessionMutex.Lock()
	defer pc.SessionMutex.Unlock()

	invalidCount := 0
	for _, session := range pc.Sessions {
		if pc.InvalidSessions[session] {
			invalidCount++
		}
	}

	if invalidCount >= len(pc.Sessions) {
		pc.AllSessionsFailed = true
		return true
	}
	return false
}

// ValidatorService handles session validation operations
type ValidatorService struct {
	sessionStorage *storage.SessionStorage
}

// NewValidatorService creates a new ValidatorService instance
func NewValidatorService() *ValidatorService {
	return &ValidatorService{
		sessionStorage: storage.NewSessionStorage(),
	}
}

// probeCategory picks the category used for health checks.
func probeCategory(config models.Config) string {
	if len(config.Categories) > 0 {
		return config.Categories[0]
	}
	return "beauty"
}

// HasValidSessions checks if the stored sessions still pass a quick
// probe against the catalogue
func (vs *ValidatorService) HasValidSessions(config models.Config) bool {
	existingSessions, err := vs.sessionStorage.LoadSessions()
	if err != nil || len(existingSessions) == 0 {
		return false
	}

	// Quick check on a few sessions
	tempCrawler, err := New(config)
	if err != nil {
		return false
	}
	defer Close(tempCrawler)

	tempCrawler.Sessions = existingSessions
	tempCrawler.InvalidSessions = make(map[string]bool)

	category := probeCategory(config)
	queryService := NewQueryService()

	validCount := 0
	checkLimit := 3 // Only check first 3 sessions to save time

	for i, session := range existingSessions {
		if i >= checkLimit {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, statusCode, err := queryService.DoFetchProductList(tempCrawler, ctx, config, category, 1, session)
		cancel()

		if err == nil && (statusCode == 200 || statusCode == 429 || statusCode == 500) {
			validCount++
		}
	}

	return validCount >= 1
}

// ValidateExistingSessions probes stored sessions one by one and keeps
// the working ones. Sessions rejected by the API are invalidated in
// the database.
func (vs *ValidatorService) ValidateExistingSessions(sessions []string, config models.Config) ([]string, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions to validate")
	}

	tempCrawler, err := New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary crawler: %w", err)
	}
	defer Close(tempCrawler)

	tempCrawler.Sessions = sessions
	tempCrawler.InvalidSessions = make(map[string]bool)

	category := probeCategory(config)
	fmt.Printf("🔍 Checking %d sessions against category: %s\n", len(sessions), category)

	queryService := NewQueryService()

	var validSessions []string
	for i, session := range sessions {
		fmt.Printf("  🔑 Checking session %d/%d...\n", i+1, len(sessions))

		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		_, statusCode, err := queryService.DoFetchProductList(tempCrawler, ctx, config, category, 1, session)
		cancel()

		if err == nil || statusCode == 429 || statusCode == 500 {
			validSessions = append(validSessions, session)
			if markErr := vs.sessionStorage.MarkSessionUsed(session); markErr != nil {
				fmt.Printf("  ⚠️ Could not update session usage: %v\n", markErr)
			}
			fmt.Printf("  ✅ Session %d valid (status: %d)\n", i+1, statusCode)
		} else {
			fmt.Printf("  ❌ Session %d invalid (status: %d, error: %v)\n", i+1, statusCode, err)
			// Only invalidate on 401 or 403, NOT on transient errors
			if statusCode == 401 || statusCode == 403 {
				if err := vs.sessionStorage.InvalidateSession(session); err != nil {
					fmt.Printf("  ⚠️ Could not invalidate session: %v\n", err)
				} else {
					fmt.Printf("  🗑️ Invalidated rejected session\n")
				}
			}
		}

		time.Sleep(1 * time.Second)
	}

	fmt.Printf("✅ Check result: %d/%d sessions valid\n", len(validSessions), len(sessions))
	return validSessions, nil
}

// ValidateSessionsBatch validates freshly minted sessions immediately
// after extraction. Nothing is invalidated here, rejects are simply
// dropped.
func (vs *ValidatorService) ValidateSessionsBatch(sessions []string, config models.Config) ([]string, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions to validate")
	}

	tempCrawler, err := New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary crawler: %w", err)
	}
	defer Close(tempCrawler)

	tempCrawler.Sessions = sessions
	tempCrawler.InvalidSessions = make(map[string]bool)

	category := probeCategory(config)
	queryService := NewQueryService()

	var validSessions []string
	for i, session := range sessions {
		fmt.Printf("    🔑 Checking session %d/%d...\n", i+1, len(sessions))

		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		_, statusCode, err := queryService.DoFetchProductList(tempCrawler, ctx, config, category, 1, session)
		cancel()

		if err == nil || statusCode == 429 || statusCode == 500 {
			validSessions = append(validSessions, session)
			fmt.Printf("    ✅ Session %d valid (status: %d)\n", i+1, statusCode)
		} else {
			fmt.Printf("    ❌ Session %d invalid (status: %d, error: %v) - skipping\n", i+1, statusCode, err)
		}

		time.Sleep(1 * time.Second)
	}

	return validSessions, nil
}
