package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"twc-crawler/internal/auth"
	"twc-crawler/internal/crawler"
	"twc-crawler/internal/database"
	"twc-crawler/internal/log"
	"twc-crawler/internal/models"
	"twc-crawler/internal/validate"
)

// BatchProcessor handles batch crawling of product slugs
type BatchProcessor struct {
	autoCrawler      *AutoCrawler
	sessionExtractor *auth.SessionExtractor
	queryService     *crawler.QueryService
	validatorService *crawler.ValidatorService
	sessionManager   *crawler.SessionManager
	productExtractor *crawler.ProductExtractor
	completeness     *validate.Completeness
	discovery        *DiscoveryService
	logger           zerolog.Logger

	// Detail fetches across every batch of this run
	attempts int32
}

// NewBatchProcessor creates a new BatchProcessor instance
func NewBatchProcessor(ac *AutoCrawler) *BatchProcessor {
	queryService := crawler.NewQueryService()
	bp := &BatchProcessor{
		autoCrawler:      ac,
		sessionExtractor: auth.NewSessionExtractor(ac.GetConfig()),
		queryService:     queryService,
		validatorService: crawler.NewValidatorService(),
		sessionManager:   &crawler.SessionManager{},
		productExtractor: crawler.NewProductExtractor(),
		completeness:     validate.New(),
		logger:           log.WithComponent("batch"),
	}
	bp.discovery = NewDiscoveryService(ac, queryService)
	return bp
}

// ProcessAllSlugs runs Phase 1: discover slugs and crawl them with
// session rotation until the product target is met, the attempt budget
// runs out, or the catalogue has nothing left to offer.
func (bp *BatchProcessor) ProcessAllSlugs() error {
	fmt.Println("🔄 Phase 1: Crawling products with session rotation...")

	stateManager := bp.autoCrawler.stateManager
	config := bp.autoCrawler.GetConfig()
	budget := config.AttemptFactor * config.MaxProducts

	// Main loop - continue until the target is met or nothing is left
	for {
		if atomic.LoadInt32(bp.autoCrawler.GetShutdownRequested()) == 1 {
			fmt.Println("⚠️ Shutdown requested, leaving main loop")
			break
		}

		if stateManager.TargetMet() {
			fmt.Printf("🎯 Reached the target of %d complete products!\n", config.MaxProducts)
			break
		}

		attempted := int(atomic.LoadInt32(&bp.attempts))
		if attempted >= budget {
			fmt.Printf("⌛ Attempt budget spent (%d/%d), stopping Phase 1\n", attempted, budget)
			break
		}

		// Display current status
		fmt.Printf("\n%s\n", strings.Repeat("─", 60))
		bp.autoCrawler.PrintCurrentStats()
		fmt.Printf("🧮 Attempt budget: %d/%d\n", attempted, budget)

		// STEP 1: make sure there are usable sessions
		validSessions, err := bp.ensureSessions()
		if err != nil {
			fmt.Printf("⚠️ Error preparing sessions: %v\n", err)
		}
		if len(validSessions) == 0 {
			fmt.Println("💀 No sessions available, stopping")
			break
		}

		// STEP 2: top up the work queue from category listings
		pending, err := bp.autoCrawler.GetDBStorage().SlugRepo.GetPendingSlugs(0)
		if err != nil {
			return fmt.Errorf("failed to load pending slugs: %w", err)
		}
		if len(pending) == 0 {
			batchSize := budget - attempted + 10
			if batchSize > 50 {
				batchSize = 50
			}

			added, err := bp.discoverSlugs(validSessions, batchSize)
			if err != nil {
				fmt.Printf("⚠️ Discovery error: %v\n", err)
			}
			if added == 0 {
				fmt.Println("❌ No more products to discover, stopping")
				break
			}

			pending, err = bp.autoCrawler.GetDBStorage().SlugRepo.GetPendingSlugs(0)
			if err != nil {
				return fmt.Errorf("failed to load pending slugs: %w", err)
			}
		}

		if len(pending) == 0 {
			fmt.Println("✅ Nothing left to crawl")
			break
		}

		// The budget caps how many slugs this batch may try
		if left := budget - attempted; len(pending) > left {
			pending = pending[:left]
		}

		// STEP 3: crawl the batch with the sessions we have
		fmt.Printf("▶️ CRAWLING %d slugs with %d sessions...\n", len(pending), len(validSessions))
		fmt.Printf("%s\n\n", strings.Repeat("─", 60))

		if _, err := bp.crawlSlugs(pending, validSessions); err != nil {
			fmt.Printf("⚠️ Batch stopped early: %v\n", err)
		}

		if stateManager.TargetMet() {
			fmt.Printf("🎯 Reached the target of %d complete products!\n", config.MaxProducts)
			break
		}

		// Short break before the next round
		time.Sleep(2 * time.Second)
	}

	return nil
}

// ensureSessions loads and validates stored sessions, minting fresh
// ones in the browser when the pool falls below the configured minimum.
func (bp *BatchProcessor) ensureSessions() ([]string, error) {
	config := bp.autoCrawler.GetConfig()
	sessionStorage := bp.autoCrawler.GetSessionStorage()

	var validSessions []string

	if bp.validatorService.HasValidSessions(config) {
		fmt.Println("🔍 Found stored sessions, loading and validating...")
		stored, err := sessionStorage.LoadSessions()
		if err == nil && len(stored) > 0 {
			fmt.Printf("📂 %d stored sessions, checking them against the API...\n", len(stored))
			validSessions, err = bp.validatorService.ValidateExistingSessions(stored, config)
			if err != nil {
				fmt.Printf("⚠️ Error validating sessions: %v\n", err)
				validSessions = []string{}
			}
		}
	} else {
		fmt.Println("🔍 No usable stored sessions, new ones are needed")
	}

	if len(validSessions) < config.MinSessions {
		fmt.Printf("📊 Have %d valid sessions, want at least %d\n", len(validSessions), config.MinSessions)

		needed := config.MaxSessions - len(validSessions)
		if needed > 0 {
			minted := bp.mintSessions(needed)
			if len(minted) > 0 {
				// Keep them for the next run too
				if err := sessionStorage.SaveSessions(minted); err != nil {
					fmt.Printf("⚠️ Error saving sessions: %v\n", err)
				}
				validSessions = mergeSessions(validSessions, minted)
				fmt.Printf("✅ %d sessions ready for crawling\n", len(validSessions))
			} else if len(validSessions) > 0 {
				fmt.Printf("🔋 Continuing with the %d sessions left...\n", len(validSessions))
			}
		}
	} else {
		fmt.Printf("✅ Enough sessions (%d) to continue crawling\n", len(validSessions))
	}

	return validSessions, nil
}

// mergeSessions appends minted sessions, skipping ones already present
func mergeSessions(existing []string, minted []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range minted {
		if !seen[s] {
			existing = append(existing, s)
			seen[s] = true
		}
	}
	return existing
}

// mintSessions drives a headless browser against the storefront to
// mint count fresh device identifiers, validating each against the API.
func (bp *BatchProcessor) mintSessions(count int) []string {
	config := bp.autoCrawler.GetConfig()

	fmt.Printf("🎯 Goal: mint %d new sessions\n", count)

	if atomic.LoadInt32(bp.autoCrawler.GetShutdownRequested()) == 1 {
		fmt.Println("⚠️ Shutdown requested, skipping session minting")
		return nil
	}

	results := bp.sessionExtractor.ExtractSessionsBatch(context.Background(), count)

	var minted []string
	for _, result := range results {
		if result.Error == nil && result.DeviceIdentifier != "" {
			minted = append(minted, result.DeviceIdentifier)
		}
	}

	if len(minted) == 0 {
		fmt.Println("❌ Browser minted no usable sessions")
		// The storefront hands the same identifier to plain HTTP
		// clients, so the configured one may still work.
		if config.DeviceIdentifier != "" {
			fmt.Println("🔋 Falling back to the configured device identifier")
			minted = append(minted, config.DeviceIdentifier)
		}
	}

	if len(minted) == 0 {
		return nil
	}

	fmt.Printf("🔍 Validating %d minted sessions...\n", len(minted))
	validated, err := bp.validatorService.ValidateSessionsBatch(minted, config)
	if err != nil {
		fmt.Printf("⚠️ Error validating minted sessions: %v\n", err)
		return minted
	}
	fmt.Printf("✅ %d/%d minted sessions are valid\n", len(validated), len(minted))
	return validated
}

// discoverSlugs walks category listings for new slugs using a throwaway
// crawler for request pacing and session rotation.
func (bp *BatchProcessor) discoverSlugs(sessions []string, batchSize int) (int, error) {
	config := bp.autoCrawler.GetConfig()

	discoveryCrawler, err := crawler.New(config)
	if err != nil {
		return 0, fmt.Errorf("failed to create discovery crawler: %w", err)
	}
	discoveryCrawler.Sessions = sessions
	discoveryCrawler.InvalidSessions = make(map[string]bool)
	defer crawler.Close(discoveryCrawler)

	return bp.discovery.TopUpQueue(discoveryCrawler.Ctx, discoveryCrawler, batchSize)
}

// initializeCrawler initializes the product crawler with sessions
func (bp *BatchProcessor) initializeCrawler(sessions []string) error {
	config := bp.autoCrawler.GetConfig()

	newCrawler, err := crawler.New(config)
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	newCrawler.Sessions = sessions
	newCrawler.InvalidSessions = make(map[string]bool)

	bp.autoCrawler.SetCrawler(newCrawler)

	fmt.Printf("✅ Crawler ready with %d sessions\n", len(sessions))
	return nil
}

// crawlSlugs pushes one batch of slugs through the worker pool
func (bp *BatchProcessor) crawlSlugs(slugs []string, sessions []string) (int, error) {
	if len(slugs) == 0 {
		return 0, nil
	}

	if err := bp.initializeCrawler(sessions); err != nil {
		return 0, fmt.Errorf("failed to initialize crawler: %w", err)
	}
	defer func() {
		crawlerInstance := bp.autoCrawler.GetCrawler()
		if crawlerInstance != nil {
			crawler.Close(crawlerInstance)
			bp.autoCrawler.SetCrawler(nil)
		}
	}()

	config := bp.autoCrawler.GetConfig()
	budget := config.AttemptFactor * config.MaxProducts

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fresh stats for this batch
	crawlerInstance := bp.autoCrawler.GetCrawler()
	if crawlerInstance != nil {
		atomic.StoreInt32(&crawlerInstance.Stats.Attempted, 0)
		atomic.StoreInt32(&crawlerInstance.Stats.Complete, 0)
		atomic.StoreInt32(&crawlerInstance.Stats.Incomplete, 0)
		atomic.StoreInt32(&crawlerInstance.Stats.Failed, 0)
		crawlerInstance.AllSessionsFailed = false
	}

	slugCh := make(chan string, 100)
	done := make(chan struct{})

	// Status ticker
	statusTicker := time.NewTicker(1 * time.Second)
	go func() {
		defer statusTicker.Stop()
		lastDisplay := ""
		isFirstDisplay := true

		for {
			select {
			case <-ctx.Done():
				if !isFirstDisplay {
					fmt.Fprintf(os.Stderr, "\r\033[A\033[K\033[K\r")
				}
				fmt.Println()
				return
			case <-statusTicker.C:
				crawlerInstance := bp.autoCrawler.GetCrawler()
				if crawlerInstance == nil {
					continue
				}

				// If sessions failed, stop crawling to mint new ones
				if crawlerInstance.AllSessionsFailed {
					fmt.Printf("\n❌ Every session expired, fresh ones are needed\n")
					cancel()
					return
				}

				batchAttempted := atomic.LoadInt32(&crawlerInstance.Stats.Attempted)
				batchComplete := atomic.LoadInt32(&crawlerInstance.Stats.Complete)
				batchIncomplete := atomic.LoadInt32(&crawlerInstance.Stats.Incomplete)
				batchFailed := atomic.LoadInt32(&crawlerInstance.Stats.Failed)
				activeReqs := atomic.LoadInt32(&crawlerInstance.ActiveRequests)
				validSessionCount := bp.sessionManager.GetValidSessionCount(crawlerInstance)
				totalSessions := len(crawlerInstance.Sessions)

				productCount, _ := bp.autoCrawler.GetDBStorage().ProductRepo.CountProducts()
				attempts := atomic.LoadInt32(&bp.attempts)

				batchPercent := 0.0
				if len(slugs) > 0 {
					batchPercent = float64(batchAttempted) * 100 / float64(len(slugs))
				}
				targetPercent := float64(productCount) * 100 / float64(config.MaxProducts)

				// Progress bar
				barWidth := 25
				completedWidth := int(float64(barWidth) * batchPercent / 100)
				bar := "["
				for i := 0; i < barWidth; i++ {
					if i < completedWidth {
						bar += "█"
					} else if i == completedWidth && batchPercent > 0 && completedWidth < barWidth {
						bar += "▓"
					} else {
						bar += "░"
					}
				}
				bar += "]"

				line1 := fmt.Sprintf("🔄 Batch: %s %.1f%% (%d/%d) | ✅ %d | 📭 %d | ❌ %d | Active: %d | Sessions: %d/%d",
					bar, batchPercent, batchAttempted, len(slugs), batchComplete, batchIncomplete, batchFailed, activeReqs, validSessionCount, totalSessions)

				line2 := fmt.Sprintf("📊 Products: %d/%d (%.1f%%) | Attempts: %d/%d",
					productCount, config.MaxProducts, targetPercent, attempts, budget)

				newDisplay := line1 + "\n" + line2

				if newDisplay != lastDisplay {
					if !isFirstDisplay {
						fmt.Fprintf(os.Stderr, "\r\033[A\033[K\033[K")
					}
					fmt.Fprintf(os.Stderr, "%s\n%s", line1, line2)
					lastDisplay = newDisplay
					isFirstDisplay = false
				}
			}
		}
	}()

	// Producer goroutine
	go func() {
		defer close(slugCh)
		for _, slug := range slugs {
			select {
			case <-ctx.Done():
				return
			case slugCh <- slug:
			}
		}
	}()

	// Consumer goroutines
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		maxConcurrency := int(config.MaxConcurrency)

		for i := 0; i < maxConcurrency; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for slug := range slugCh {
					select {
					case <-ctx.Done():
						return
					default:
					}

					if atomic.LoadInt32(bp.autoCrawler.GetShutdownRequested()) == 1 {
						return
					}

					// Check sessions before fetching the detail
					crawlerInstance := bp.autoCrawler.GetCrawler()
					if crawlerInstance == nil {
						return
					}
					if crawlerInstance.AllSessionsFailed {
						fmt.Printf("\n❌ Sessions expired mid-crawl, stopping worker\n")
						cancel()
						return
					}

					atomic.AddInt32(&crawlerInstance.Stats.Attempted, 1)
					atomic.AddInt32(&bp.attempts, 1)

					if ok := bp.attemptSlugWithRetries(ctx, slug, config.MaxSlugRetries); !ok {
						bp.logger.Debug().Str("slug", slug).Msg("slug kept for a later retry")
					}

					if bp.autoCrawler.stateManager.TargetMet() {
						cancel()
						return
					}
				}
			}()
		}
		wg.Wait()
	}()

	// Wait for completion
	select {
	case <-done:
		statusTicker.Stop()
		fmt.Fprintf(os.Stderr, "\r\033[A\033[K\033[K\r")
		fmt.Println()

		attempted, complete, incomplete, failed := batchStats(bp.autoCrawler.GetCrawler())
		fmt.Printf("✅ Batch done: attempted %d | complete %d | incomplete %d | failed %d\n",
			attempted, complete, incomplete, failed)
		return int(attempted), nil

	case <-ctx.Done():
		statusTicker.Stop()
		fmt.Fprintf(os.Stderr, "\r\033[A\033[K\033[K\r")
		fmt.Println()

		attempted, _, _, _ := batchStats(bp.autoCrawler.GetCrawler())
		switch {
		case atomic.LoadInt32(bp.autoCrawler.GetShutdownRequested()) == 1:
			fmt.Printf("⚠️ Crawling stopped by Ctrl+C: %d slugs attempted\n", attempted)
		case bp.autoCrawler.stateManager.TargetMet():
			fmt.Printf("🎯 Batch cut short, target met: %d slugs attempted\n", attempted)
			return int(attempted), nil
		default:
			fmt.Printf("🔄 Crawling paused for fresh sessions: %d slugs attempted\n", attempted)
		}
		return int(attempted), ctx.Err()
	}
}

func batchStats(pc *models.ProductCrawler) (attempted, complete, incomplete, failed int32) {
	if pc == nil {
		return
	}
	return atomic.LoadInt32(&pc.Stats.Attempted),
		atomic.LoadInt32(&pc.Stats.Complete),
		atomic.LoadInt32(&pc.Stats.Incomplete),
		atomic.LoadInt32(&pc.Stats.Failed)
}

// attemptSlugWithRetries fetches one product detail with retries.
// Returns true when the slug reached a final state (stored, incomplete
// or permanently gone), false when it stays queued for a later pass.
func (bp *BatchProcessor) attemptSlugWithRetries(ctx context.Context, slug string, maxRetries int) bool {
	config := bp.autoCrawler.GetConfig()
	crawlerInstance := bp.autoCrawler.GetCrawler()
	dbStorage := bp.autoCrawler.GetDBStorage()

	if crawlerInstance == nil {
		return false
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if atomic.LoadInt32(bp.autoCrawler.GetShutdownRequested()) == 1 {
			return false
		}
		if crawlerInstance.AllSessionsFailed {
			bp.logger.Warn().Str("slug", slug).Msg("all sessions failed, slug left for retry")
			return false
		}

		reqCtx, reqCancel := context.WithTimeout(ctx, config.RequestTimeout)
		payload, statusCode, err := bp.queryService.FetchProductWithRetryLogic(crawlerInstance, reqCtx, config, slug)
		reqCancel()

		evt := bp.logger.Debug().Str("slug", slug).Int("attempt", attempt).Int("status", statusCode)
		if err != nil {
			evt = evt.Err(err)
		}
		evt.Msg("detail fetch")

		if statusCode == 200 && err == nil {
			product := bp.productExtractor.ExtractProduct(payload, slug, config.BaseURL)

			if ok, missing := bp.completeness.Check(product); ok {
				// COMPLETE ROW - store it
				if err := dbStorage.ProductRepo.InsertProduct(slug, product); err != nil {
					bp.logger.Error().Err(err).Str("slug", slug).Msg("failed to store product")
				}
				if err := dbStorage.SlugRepo.UpdateSlugStatus(slug, database.SlugStatusComplete); err != nil {
					bp.logger.Error().Err(err).Str("slug", slug).Msg("failed to update slug status")
				}
				bp.logger.Info().Str("slug", slug).Str("name", product.Name).Msg("complete product stored")
				atomic.AddInt32(&crawlerInstance.Stats.Complete, 1)
			} else {
				// MISSING DATA - remember which column was short
				if err := dbStorage.SlugRepo.MarkSlugIncomplete(slug, missing); err != nil {
					bp.logger.Error().Err(err).Str("slug", slug).Msg("failed to mark slug incomplete")
				}
				bp.logger.Info().Str("slug", slug).Str("missing", missing).Msg("product missing required data, skipped")
				atomic.AddInt32(&crawlerInstance.Stats.Incomplete, 1)
			}

			return true
		}

		// A slug the catalogue no longer carries will never succeed
		if statusCode == 404 {
			if err := dbStorage.SlugRepo.UpdateSlugStatus(slug, database.SlugStatusPermanentFailed); err != nil {
				bp.logger.Error().Err(err).Str("slug", slug).Msg("failed to update slug status")
			}
			bp.logger.Info().Str("slug", slug).Msg("product gone from catalogue")
			atomic.AddInt32(&crawlerInstance.Stats.Failed, 1)
			return true
		}

		// If not last attempt and not successful, wait before retry
		if attempt < maxRetries {
			r := rand.New(rand.NewSource(time.Now().UnixNano()))
			delayMs := 200 + r.Intn(401)
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}
	}

	// Still failing after every retry: keep it for Phase 2
	if err := dbStorage.SlugRepo.UpdateSlugStatus(slug, database.SlugStatusFailed); err != nil {
		bp.logger.Error().Err(err).Str("slug", slug).Msg("failed to update slug status")
	}
	if err := dbStorage.SlugRepo.IncrementRetryCount(slug, "failed after max retries"); err != nil {
		bp.logger.Error().Err(err).Str("slug", slug).Msg("failed to update retry count")
	}

	crawlerInstance = bp.autoCrawler.GetCrawler()
	if crawlerInstance != nil {
		atomic.AddInt32(&crawlerInstance.Stats.Failed, 1)
	}
	return false
}
