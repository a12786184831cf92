package config

import (
	"time"

	"github.com/joho/godotenv"

	"twc-crawler/internal/models"
)

// Env variable names understood by Load. Everything has a default, so
// the crawler runs with an empty environment.
const (
	envBaseURL          = "TWC_BASE_URL"
	envCategories       = "TWC_CATEGORIES"
	envUserAgent        = "TWC_USER_AGENT"
	envDeviceIdentifier = "TWC_DEVICE_IDENTIFIER"
	envMaxProducts      = "TWC_MAX_PRODUCTS"
	envAttemptFactor    = "TWC_ATTEMPT_FACTOR"
	envPageSize         = "TWC_PAGE_SIZE"
	envOverfetch        = "TWC_CATEGORY_OVERFETCH"
	envMaxConcurrency   = "TWC_MAX_CONCURRENCY"
	envRequestsPerSec   = "TWC_REQUESTS_PER_SEC"
	envRequestTimeout   = "TWC_REQUEST_TIMEOUT"
	envListDelay        = "TWC_LIST_DELAY"
	envMaxSlugRetries   = "TWC_MAX_SLUG_RETRIES"
	envMinSessions      = "TWC_MIN_SESSIONS"
	envMaxSessions      = "TWC_MAX_SESSIONS"
	envHeadless         = "TWC_HEADLESS"
	envDatabasePath     = "TWC_DB_PATH"
	envSlugFile         = "TWC_SLUG_FILE"
	envOutputFile       = "TWC_OUTPUT_FILE"
	envLogFile          = "TWC_LOG_FILE"
	envLogLevel         = "TWC_LOG_LEVEL"
	envVerbose          = "TWC_VERBOSE"
)

// DefaultConfig returns the default configuration for the crawler
func DefaultConfig() models.Config {
	return models.Config{
		BaseURL: "https://terrywhitechemmart.com.au",
		Categories: []string{
			"beauty",
			"cosmetics",
			"diabetes-ndss",
			"general-health",
			"gifting-fragrances",
			"household",
			"medicines",
			"mother-baby",
			"personal-care",
			"skin-care",
			"vitamins-nutrition",
			"weight-management",
		},
		UserAgent:            "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
		DeviceIdentifier:     "YmTmalS1e8tKERfvJL8DxElPWlAd24_L5OkwBpF_xek",
		MaxProducts:          10,
		AttemptFactor:        5,
		PageSize:             24,
		PerCategoryOverfetch: 5,
		MaxConcurrency:       4,
		RequestsPerSec:       1.0,
		RequestTimeout:       30 * time.Second,
		ListDelay:            1 * time.Second,
		MaxSlugRetries:       5,
		MinSessions:          1,
		MaxSessions:          3,
		Headless:             true,
		DatabasePath:         "crawler.db",
		OutputFile:           "Product_data.csv",
		LogFile:              "crawler.log",
		LogLevel:             "info",
		Verbose:              true,
	}
}

// Load builds the runtime configuration: defaults, then a .env file if
// one exists, then process environment variables. The .env file never
// overrides variables already set in the environment.
func Load() models.Config {
	// Ignore the error, a missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.BaseURL = parseString(envBaseURL, cfg.BaseURL)
	cfg.Categories = parseStringSlice(envCategories, cfg.Categories)
	cfg.UserAgent = parseString(envUserAgent, cfg.UserAgent)
	cfg.DeviceIdentifier = parseString(envDeviceIdentifier, cfg.DeviceIdentifier)
	cfg.MaxProducts = parseInt(envMaxProducts, cfg.MaxProducts)
	cfg.AttemptFactor = parseInt(envAttemptFactor, cfg.AttemptFactor)
	cfg.PageSize = parseInt(envPageSize, cfg.PageSize)
	cfg.PerCategoryOverfetch = parseInt(envOverfetch, cfg.PerCategoryOverfetch)
	cfg.MaxConcurrency = parseInt64(envMaxConcurrency, cfg.MaxConcurrency)
	cfg.RequestsPerSec = parseFloat(envRequestsPerSec, cfg.RequestsPerSec)
	cfg.RequestTimeout = parseDuration(envRequestTimeout, cfg.RequestTimeout)
	cfg.ListDelay = parseDuration(envListDelay, cfg.ListDelay)
	cfg.MaxSlugRetries = parseInt(envMaxSlugRetries, cfg.MaxSlugRetries)
	cfg.MinSessions = parseInt(envMinSessions, cfg.MinSessions)
	cfg.MaxSessions = parseInt(envMaxSessions, cfg.MaxSessions)
	cfg.Headless = parseBool(envHeadless, cfg.Headless)
	cfg.DatabasePath = parseString(envDatabasePath, cfg.DatabasePath)
	cfg.SlugFile = parseString(envSlugFile, cfg.SlugFile)
	cfg.OutputFile = parseString(envOutputFile, cfg.OutputFile)
	cfg.LogFile = parseString(envLogFile, cfg.LogFile)
	cfg.LogLevel = parseString(envLogLevel, cfg.LogLevel)
	cfg.Verbose = parseBool(envVerbose, cfg.Verbose)
	return cfg
}
