package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"twc-crawler/internal/crawler"
	"twc-crawler/internal/database"
	"twc-crawler/internal/log"
	"twc-crawler/internal/models"
)

// DiscoveryService walks the category listings to find product slugs
// worth fetching. Each category keeps a page cursor in the database, so
// a rerun continues where the last one stopped instead of rereading the
// same pages.
type DiscoveryService struct {
	autoCrawler  *AutoCrawler
	queryService *crawler.QueryService
	logger       zerolog.Logger

	// Set after cursors were rewound once; a second sweep of an
	// unchanged catalogue would only repeat itself.
	cursorsReset bool
}

// NewDiscoveryService creates a new DiscoveryService instance
func NewDiscoveryService(ac *AutoCrawler, qs *crawler.QueryService) *DiscoveryService {
	return &DiscoveryService{
		autoCrawler:  ac,
		queryService: qs,
		logger:       log.WithComponent("discovery"),
	}
}

// TopUpQueue pulls roughly batchSize fresh slugs out of the active
// categories and enqueues them. Returns how many slugs were enqueued.
func (ds *DiscoveryService) TopUpQueue(ctx context.Context, pc *models.ProductCrawler, batchSize int) (int, error) {
	config := ds.autoCrawler.GetConfig()
	dbStorage := ds.autoCrawler.GetDBStorage()

	categories, err := dbStorage.CategoryRepo.GetActiveCategories()
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 && !ds.cursorsReset {
		// The whole catalogue was swept in an earlier run. Rewind the
		// cursors once, listings gain and lose products over time.
		fmt.Println("🔁 Every category exhausted, rewinding cursors for a fresh sweep")
		if err := dbStorage.CategoryRepo.ResetCategories(); err != nil {
			return 0, fmt.Errorf("failed to reset categories: %w", err)
		}
		ds.cursorsReset = true

		categories, err = dbStorage.CategoryRepo.GetActiveCategories()
		if err != nil {
			return 0, fmt.Errorf("failed to load categories: %w", err)
		}
	}
	if len(categories) == 0 {
		fmt.Println("📭 Every category is exhausted")
		return 0, nil
	}

	// Spread the batch across categories, overfetching a little since
	// some slugs will be duplicates or already known.
	quota := batchSize / len(categories)
	if quota < 1 {
		quota = 1
	}
	quota += config.PerCategoryOverfetch

	fmt.Printf("🔎 Discovering ~%d slugs across %d categories (quota %d each)...\n",
		batchSize, len(categories), quota)

	// One listing call per ListDelay keeps discovery polite
	limiter := rate.NewLimiter(rate.Every(config.ListDelay), 1)

	var collected []database.QueuedSlug
	for _, category := range categories {
		if ctx.Err() != nil {
			break
		}

		slugs, err := ds.collectCategorySlugs(ctx, pc, limiter, category, quota)
		if err != nil {
			ds.logger.Warn().Err(err).Str("category", category.Slug).Msg("category discovery failed")
		}
		collected = append(collected, slugs...)
	}

	unique := dedupeSlugs(collected)

	// More candidates than asked for: shuffle before trimming so the
	// crawl samples the catalogue instead of draining the first
	// categories in order.
	if len(unique) > batchSize {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		r.Shuffle(len(unique), func(i, j int) {
			unique[i], unique[j] = unique[j], unique[i]
		})
		unique = unique[:batchSize]
	}

	if len(unique) == 0 {
		return 0, nil
	}

	if err := dbStorage.SlugRepo.EnqueueSlugs(unique); err != nil {
		return 0, fmt.Errorf("failed to enqueue slugs: %w", err)
	}

	fmt.Printf("✅ Enqueued %d candidate slugs\n", len(unique))
	return len(unique), nil
}

// collectCategorySlugs pages through one category from its stored
// cursor until quota slugs were seen or the category runs dry.
func (ds *DiscoveryService) collectCategorySlugs(ctx context.Context, pc *models.ProductCrawler, limiter *rate.Limiter, category database.Category, quota int) ([]database.QueuedSlug, error) {
	config := ds.autoCrawler.GetConfig()
	dbStorage := ds.autoCrawler.GetDBStorage()

	var slugs []database.QueuedSlug
	page := category.NextPage
	fetched := 0

	for fetched < quota {
		if err := limiter.Wait(ctx); err != nil {
			return slugs, err
		}

		summaries, statusCode, err := ds.queryService.FetchProductListWithRetryLogic(pc, ctx, config, category.Slug, page)
		if err != nil {
			return slugs, fmt.Errorf("list page %d failed (status %d): %w", page, statusCode, err)
		}

		// An empty page means the listing ran out of products
		if len(summaries) == 0 {
			if err := dbStorage.CategoryRepo.MarkCategoryExhausted(category.Slug); err != nil {
				ds.logger.Warn().Err(err).Str("category", category.Slug).Msg("failed to mark category exhausted")
			}
			fmt.Printf("  📭 Category %s exhausted at page %d\n", category.Slug, page)
			break
		}

		for _, summary := range summaries {
			if summary.Slug == "" {
				continue
			}
			slugs = append(slugs, database.QueuedSlug{Slug: summary.Slug, Category: category.Slug})
		}
		fetched += len(summaries)

		if err := dbStorage.CategoryRepo.AdvancePage(category.Slug, len(summaries)); err != nil {
			ds.logger.Warn().Err(err).Str("category", category.Slug).Msg("failed to advance category cursor")
		}
		page++
	}

	ds.logger.Debug().Str("category", category.Slug).Int("slugs", len(slugs)).Int("next_page", page).Msg("category pass done")
	return slugs, nil
}

// dedupeSlugs drops duplicate slugs while keeping first-seen order
func dedupeSlugs(slugs []database.QueuedSlug) []database.QueuedSlug {
	seen := make(map[string]bool, len(slugs))
	var unique []database.QueuedSlug
	for _, qs := range slugs {
		if seen[qs.Slug] {
			continue
		}
		seen[qs.Slug] = true
		unique = append(unique, qs)
	}
	return unique
}
