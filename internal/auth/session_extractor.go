package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"twc-crawler/internal/models"
	"twc-crawler/internal/utils"
)

// deviceIdentifierScript probes the storefront's own storage for the
// device identifier the shopping API expects. The key name drifted
// across frontend releases, so several spellings are tried before the
// cookie fallback.
const deviceIdentifierScript = `(() => {
	const keys = ["device_identifier", "deviceIdentifier", "device_id"];
	for (const key of keys) {
		const value = window.localStorage.getItem(key);
		if (value) {
			return value;
		}
	}
	const match = document.cookie.match(/(?:^|;\s*)device_identifier=([^;]+)/);
	return match ? decodeURIComponent(match[1]) : "";
})()`

// SessionExtractor mints device identifier sessions by loading the
// storefront in Chrome and reading what the frontend registers.
type SessionExtractor struct {
	browserManager *BrowserManager
	config         models.Config
}

// NewSessionExtractor creates a new SessionExtractor instance
func NewSessionExtractor(config models.Config) *SessionExtractor {
	return &SessionExtractor{
		browserManager: NewBrowserManager(),
		config:         config,
	}
}

// ExtractSession opens a fresh browser, loads the storefront and
// returns the device identifier it minted.
func (se *SessionExtractor) ExtractSession(ctx context.Context) (string, error) {
	browserCtx, cancel, err := se.browserManager.CreateBrowserContext(ctx, se.config.Headless, se.config.UserAgent)
	if err != nil {
		return "", err
	}
	defer cancel()

	// A page that never settles must not stall the whole crawl.
	runCtx, runCancel := context.WithTimeout(browserCtx, 90*time.Second)
	defer runCancel()

	var deviceID string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(se.config.BaseURL),
		chromedp.Sleep(5*time.Second),

		chromedp.ActionFunc(func(ctx context.Context) error {
			return se.browserManager.AcceptCookieBanner(ctx)
		}),

		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(deviceIdentifierScript, &deviceID),
	)
	if err != nil {
		return "", fmt.Errorf("failed to load storefront: %w", err)
	}

	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return "", fmt.Errorf("storefront did not expose a device identifier")
	}

	return deviceID, nil
}

// ExtractSessionsBatch mints up to count sessions, one browser run
// each. Failures are returned alongside successes so the caller can
// report them.
func (se *SessionExtractor) ExtractSessionsBatch(ctx context.Context, count int) []models.SessionResult {
	var results []models.SessionResult

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}

		fmt.Printf("🌐 Minting session %d/%d from %s...\n", i+1, count, se.config.BaseURL)

		deviceID, err := se.ExtractSession(ctx)
		results = append(results, models.SessionResult{DeviceIdentifier: deviceID, Error: err})

		if err != nil {
			fmt.Printf("❌ Session %d/%d failed: %v\n", i+1, count, err)
		} else {
			fmt.Printf("✅ Minted device identifier %s\n", utils.Snippet(deviceID, 12))
		}

		// Rest between browser runs (except after the last one)
		if i+1 < count {
			time.Sleep(2 * time.Second)
		}
	}

	return results
}
