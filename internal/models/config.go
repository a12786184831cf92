package models

import "time"

// Config represents the application configuration
type Config struct {
	// Target shop.
	BaseURL    string
	Categories []string
	UserAgent  string

	// Seed device identifier used until the browser mints fresh ones.
	DeviceIdentifier string

	// Crawl budget.
	MaxProducts          int // stop once this many complete rows exist
	AttemptFactor        int // attempt budget = AttemptFactor * MaxProducts
	PageSize             int
	PerCategoryOverfetch int

	// HTTP behaviour.
	MaxConcurrency int64
	RequestsPerSec float64
	RequestTimeout time.Duration
	ListDelay      time.Duration // polite gap between catalogue pages

	// Per-slug retry budget inside one crawl pass.
	MaxSlugRetries int

	// Session pool.
	MinSessions int
	MaxSessions int
	Headless    bool

	// Paths.
	DatabasePath string
	SlugFile     string // optional seed file of slugs to crawl first
	OutputFile   string
	LogFile      string
	LogLevel     string

	Verbose bool
}
