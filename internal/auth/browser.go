package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserManager handles Chrome browser automation
type BrowserManager struct{}

// NewBrowserManager creates a new BrowserManager instance
func NewBrowserManager() *BrowserManager {
	return &BrowserManager{}
}

// CreateBrowserContext creates and configures a Chrome browser context
func (bm *BrowserManager) CreateBrowserContext(ctx context.Context, headless bool, userAgent string) (context.Context, context.CancelFunc, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-plugins", true),
		chromedp.Flag("disable-images", true),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Enable network events
	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		cancel()
		browserCancel()
		return nil, nil, fmt.Errorf("failed to enable network events: %v", err)
	}

	// Return a combined cancel function
	combinedCancel := func() {
		browserCancel()
		cancel()
	}

	return browserCtx, combinedCancel, nil
}

// AcceptCookieBanner dismisses the consent banner when one is shown so
// the storefront scripts finish booting.
func (bm *BrowserManager) AcceptCookieBanner(ctx context.Context) error {
	selectors := []string{
		`#onetrust-accept-btn-handler`,
		`button[aria-label*="Accept"]`,
		`button[data-testid*="accept"]`,
		`button[id*="cookie-accept"]`,
	}

	for _, selector := range selectors {
		var exists bool
		evalScript := fmt.Sprintf(`document.querySelector('%s') !== null`, selector)
		if err := chromedp.Evaluate(evalScript, &exists).Do(ctx); err != nil {
			return err
		}

		if exists {
			fmt.Printf("✅ Found cookie banner (%s), clicking accept...\n", selector)
			if err := chromedp.Click(selector, chromedp.ByQuery).Do(ctx); err != nil {
				return err
			}
			chromedp.Sleep(2 * time.Second).Do(ctx)
			return nil
		}
	}

	return nil
}
