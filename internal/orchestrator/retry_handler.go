package orchestrator

import (
	"fmt"
	"sync/atomic"
	"time"
)

// RetryHandler handles retry logic for slugs that did not make it
type RetryHandler struct {
	autoCrawler *AutoCrawler
}

// NewRetryHandler creates a new RetryHandler instance
func NewRetryHandler(ac *AutoCrawler) *RetryHandler {
	return &RetryHandler{
		autoCrawler: ac,
	}
}

// RetryFailedSlugs handles Phase 2 - reprocesses ALL remaining slugs,
// both never attempted and failed, in up to seven passes. Stops early
// once the target is met or a pass makes no progress.
func (rh *RetryHandler) RetryFailedSlugs() error {
	maxRetry := 7

	for i := 1; i <= maxRetry; i++ {
		if atomic.LoadInt32(rh.autoCrawler.GetShutdownRequested()) == 1 {
			fmt.Println("⚠️ Shutdown requested, skipping retry phase")
			return nil
		}

		stateManager := rh.autoCrawler.stateManager
		if stateManager.TargetMet() {
			fmt.Println("🎯 Target already met, no retry needed")
			return nil
		}

		retrySlugs := stateManager.GetRemainingSlugs()
		if len(retrySlugs) == 0 {
			fmt.Println("✅ No slugs left to retry")
			return nil
		}

		fmt.Printf("🔄 Phase 2 - Pass %d: retrying %d remaining slugs...\n", i, len(retrySlugs))
		fmt.Println("⏳ Waiting 10 seconds before retrying...")
		time.Sleep(10 * time.Second)

		// Sessions for the retry pass
		batchProcessor := rh.autoCrawler.batchProcessor
		validSessions, err := batchProcessor.ensureSessions()
		if err != nil {
			return fmt.Errorf("failed to prepare sessions for retry: %w", err)
		}
		if len(validSessions) == 0 {
			fmt.Println("❌ No valid sessions for retry")
			return nil
		}

		fmt.Printf("🔄 Retrying with %d valid sessions...\n", len(validSessions))

		// Record slug count before retry
		slugsBefore := len(retrySlugs)
		if _, err := batchProcessor.crawlSlugs(retrySlugs, validSessions); err != nil {
			fmt.Printf("⚠️ Retry pass %d stopped early: %v\n", i, err)
		}

		// Check after retry
		slugsAfter := stateManager.CountRemainingSlugs()

		if slugsAfter == 0 {
			fmt.Println("✅ Retried everything, no slugs left.")
			break
		}

		if stateManager.TargetMet() {
			fmt.Println("🎯 Target met during retry")
			break
		}

		if slugsAfter >= slugsBefore {
			fmt.Println("⚠️ No progress in this retry pass, stopping")
			break
		}

		fmt.Printf("📊 Retry pass %d: %d -> %d slugs remaining\n", i, slugsBefore, slugsAfter)
	}
	return nil
}
