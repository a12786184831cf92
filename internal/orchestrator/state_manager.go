package orchestrator

import (
	"fmt"

	"twc-crawler/internal/database"
)

// StateManager answers progress questions from the database, which is
// the single source of truth for crawl state
type StateManager struct {
	autoCrawler *AutoCrawler
}

// NewStateManager creates a new StateManager instance
func NewStateManager(ac *AutoCrawler) *StateManager {
	return &StateManager{
		autoCrawler: ac,
	}
}

func (sm *StateManager) HasSlugsToProcess() bool {
	dbStorage := sm.autoCrawler.GetDBStorage()
	count, err := dbStorage.SlugRepo.CountRemainingSlugs()
	if err != nil {
		return false
	}
	return count > 0
}

func (sm *StateManager) CountRemainingSlugs() int {
	dbStorage := sm.autoCrawler.GetDBStorage()
	count, err := dbStorage.SlugRepo.CountRemainingSlugs()
	if err != nil {
		return 0
	}
	return count
}

func (sm *StateManager) GetRemainingSlugs() []string {
	dbStorage := sm.autoCrawler.GetDBStorage()
	slugs, err := dbStorage.SlugRepo.GetRemainingSlugs()
	if err != nil {
		return []string{}
	}
	return slugs
}

// TargetMet reports whether enough complete products are stored
func (sm *StateManager) TargetMet() bool {
	dbStorage := sm.autoCrawler.GetDBStorage()
	count, err := dbStorage.ProductRepo.CountProducts()
	if err != nil {
		return false
	}
	return count >= sm.autoCrawler.GetConfig().MaxProducts
}

// SaveStateOnShutdown reports what the database holds so the next run
// can pick up from there. Every status change was already committed,
// nothing needs flushing.
func (sm *StateManager) SaveStateOnShutdown() {
	dbStorage := sm.autoCrawler.GetDBStorage()
	config := sm.autoCrawler.GetConfig()

	stats, err := dbStorage.SlugRepo.GetSlugStats()
	if err != nil {
		fmt.Printf("⚠️ Could not read crawl state: %v\n", err)
		return
	}

	productCount, _ := dbStorage.ProductRepo.CountProducts()
	remaining := stats[string(database.SlugStatusPending)] + stats[string(database.SlugStatusFailed)]

	if remaining == 0 {
		fmt.Println("📝 Every known slug has been processed")
	}

	fmt.Printf("💾 State saved in %s: %d complete products, %d slugs remaining (rerun to resume)\n",
		config.DatabasePath, productCount, remaining)
}
