package orchestrator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"twc-crawler/internal/database"
	"twc-crawler/internal/export"
	"twc-crawler/internal/log"
	"twc-crawler/internal/models"
	"twc-crawler/internal/storage"
	"twc-crawler/internal/utils"
)

// AutoCrawler orchestrates the product crawling process
type AutoCrawler struct {
	config            models.Config
	crawler           *models.ProductCrawler
	crawlerMutex      sync.RWMutex
	shutdownRequested int32

	logger zerolog.Logger

	// Database storage
	dbStorage      *storage.DBStorage
	sessionStorage *storage.SessionStorage

	// Processing services
	batchProcessor *BatchProcessor
	retryHandler   *RetryHandler
	stateManager   *StateManager
	exporter       *export.CSVExporter
}

// New creates a new AutoCrawler instance with SQLite support
func New(config models.Config) (*AutoCrawler, error) {
	// Initialize database
	if err := storage.InitializeDatabase(config.DatabasePath); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	dbStorage := storage.GetDBStorage()

	fmt.Println("📥 Preparing crawl state...")

	// Seed categories; ones seen before keep their page cursor
	if err := dbStorage.SeedCategories(config.Categories); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	// Seed the configured device identifier as a starting session
	if err := dbStorage.SeedSession(config.DeviceIdentifier); err != nil {
		return nil, fmt.Errorf("failed to seed session: %w", err)
	}

	// Import slug seed file if configured
	if config.SlugFile != "" {
		if err := dbStorage.ImportSlugsFromFile(config.SlugFile); err != nil {
			fmt.Printf("⚠️ Could not import slug seed file: %v\n", err)
		}
	}

	// Get stats from database
	stats, err := dbStorage.SlugRepo.GetSlugStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get slug stats: %w", err)
	}

	sessionCount, _ := dbStorage.SessionRepo.GetValidSessionCount()
	categoryCount, _ := dbStorage.CategoryRepo.CountActiveCategories()

	ac := &AutoCrawler{
		config:         config,
		logger:         log.WithComponent("orchestrator"),
		dbStorage:      dbStorage,
		sessionStorage: storage.GetSessionStorage(),
		exporter:       export.NewCSVExporter(),
	}

	// Initialize processing services
	ac.batchProcessor = NewBatchProcessor(ac)
	ac.retryHandler = NewRetryHandler(ac)
	ac.stateManager = NewStateManager(ac)

	// Setup signal handling
	utils.SetupSignalHandling(&ac.shutdownRequested, ac.stateManager.SaveStateOnShutdown)

	fmt.Printf("✅ Database initialized successfully:\n")
	fmt.Printf("   🛍️ Known slugs: %d (complete: %d)\n", stats["total"], stats[string(database.SlugStatusComplete)])
	fmt.Printf("   📂 Active categories: %d\n", categoryCount)
	fmt.Printf("   🔑 Valid sessions: %d\n", sessionCount)
	fmt.Println(strings.Repeat("=", 80))

	return ac, nil
}

// Run starts the crawling process
func (ac *AutoCrawler) Run() error {
	defer storage.CloseDatabase()

	fmt.Printf("🚀 Starting Terry White Chemmart product crawler\n")

	// Get stats from database
	stats, _ := ac.dbStorage.SlugRepo.GetSlugStats()
	productCount, _ := ac.dbStorage.ProductRepo.CountProducts()
	sessionCount, _ := ac.dbStorage.SessionRepo.GetValidSessionCount()

	fmt.Printf("📊 Database stats:\n")
	fmt.Printf("   🛍️ Known slugs: %d\n", stats["total"])
	fmt.Printf("   ⏳ Pending: %d\n", stats[string(database.SlugStatusPending)])
	fmt.Printf("   ✅ Complete products: %d/%d\n", productCount, ac.config.MaxProducts)
	fmt.Printf("   🔑 Valid sessions: %d\n", sessionCount)
	fmt.Println(strings.Repeat("=", 80))

	// Phase 1 - discover and crawl until the target is met
	if err := ac.batchProcessor.ProcessAllSlugs(); err != nil {
		return err
	}

	// Phase 2 - retry slugs that did not make it
	if err := ac.retryHandler.RetryFailedSlugs(); err != nil {
		fmt.Printf("⚠️ Error retrying remaining slugs: %v\n", err)
	}

	// Export whatever is complete, also after Ctrl+C
	if err := ac.exportResults(); err != nil {
		fmt.Printf("⚠️ Error exporting results: %v\n", err)
	}

	// Print final results
	ac.printFinalResults()

	return nil
}

// exportResults writes every stored complete product to the output CSV
func (ac *AutoCrawler) exportResults() error {
	products, err := ac.dbStorage.ProductRepo.GetAllProducts()
	if err != nil {
		return fmt.Errorf("failed to load products for export: %w", err)
	}

	ac.logger.Info().Int("products", len(products)).Str("file", ac.config.OutputFile).Msg("exporting results")
	return ac.exporter.Export(ac.config.OutputFile, products)
}

// printFinalResults prints the final crawling results from database
func (ac *AutoCrawler) printFinalResults() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("🎉 CRAWL FINISHED!")
	fmt.Println(strings.Repeat("=", 80))

	// Get final stats from database
	stats, err := ac.dbStorage.SlugRepo.GetSlugStats()
	if err != nil {
		fmt.Printf("⚠️ Error reading final stats: %v\n", err)
		return
	}

	total := stats["total"]
	complete := stats[string(database.SlugStatusComplete)]
	incomplete := stats[string(database.SlugStatusIncomplete)]
	failed := stats[string(database.SlugStatusFailed)]
	permanentFailed := stats[string(database.SlugStatusPermanentFailed)]
	pending := stats[string(database.SlugStatusPending)]

	totalProcessed := complete + incomplete + failed + permanentFailed

	productCount, _ := ac.dbStorage.ProductRepo.CountProducts()
	brandCount, _ := ac.dbStorage.ProductRepo.CountDistinctBrands()

	fmt.Printf("📈 FINAL SUMMARY:\n")
	if total > 0 {
		fmt.Printf("   📊 Slugs attempted:      %d/%d (%.1f%%)\n", totalProcessed, total, float64(totalProcessed)*100/float64(total))
	}
	fmt.Printf("   ✅ Complete products:    %d (target %d)\n", productCount, ac.config.MaxProducts)
	fmt.Printf("   🏷️ Distinct brands:      %d\n", brandCount)
	fmt.Printf("   \n")
	fmt.Printf("   📭 Incomplete data:      %d slugs\n", incomplete)
	fmt.Printf("   ⏳ Never attempted:      %d slugs\n", pending)
	fmt.Printf("   ❌ Need retry:           %d slugs\n", failed)
	fmt.Printf("   💀 Permanently failed:   %d slugs\n", permanentFailed)

	if productCount > 0 {
		fmt.Printf("\n🎉 COLLECTED %d COMPLETE PRODUCTS - results in file: %s\n", productCount, ac.config.OutputFile)
	} else {
		fmt.Printf("\n😔 No complete products collected\n")
	}

	fmt.Println(strings.Repeat("=", 80))
}

// PrintCurrentStats prints current processing statistics from database
func (ac *AutoCrawler) PrintCurrentStats() {
	stats, err := ac.dbStorage.SlugRepo.GetSlugStats()
	if err != nil {
		return
	}

	productCount, _ := ac.dbStorage.ProductRepo.CountProducts()

	complete := stats[string(database.SlugStatusComplete)]
	incomplete := stats[string(database.SlugStatusIncomplete)]
	failed := stats[string(database.SlugStatusFailed)]
	permanent := stats[string(database.SlugStatusPermanentFailed)]

	fmt.Printf("📊 Stats: ✅%d 📭%d ❌%d 💀%d | Products: %d/%d\n",
		complete, incomplete, failed, permanent, productCount, ac.config.MaxProducts)
}

// GetDBStorage returns the database storage
func (ac *AutoCrawler) GetDBStorage() *storage.DBStorage {
	return ac.dbStorage
}

// GetSessionStorage returns the session storage wrapper
func (ac *AutoCrawler) GetSessionStorage() *storage.SessionStorage {
	return ac.sessionStorage
}

// Getter methods for service access
func (ac *AutoCrawler) GetConfig() models.Config {
	return ac.config
}

func (ac *AutoCrawler) GetShutdownRequested() *int32 {
	return &ac.shutdownRequested
}

func (ac *AutoCrawler) GetCrawler() *models.ProductCrawler {
	ac.crawlerMutex.RLock()
	defer ac.crawlerMutex.RUnlock()
	return ac.crawler
}

func (ac *AutoCrawler) SetCrawler(crawler *models.ProductCrawler) {
	ac.crawlerMutex.Lock()
	defer ac.crawlerMutex.Unlock()
	ac.crawler = crawler
}
