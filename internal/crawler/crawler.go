package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"twc-crawler/internal/models"
)

// New creates a new ProductCrawler instance
func New(config models.Config) (*models.ProductCrawler, error) {
	if config.RequestsPerSec <= 0 {
		return nil, fmt.Errorf("requests per second must be positive, got %v", config.RequestsPerSec)
	}

	transport := &http.Transport{
		MaxIdleConns:           int(config.MaxConcurrency),
		MaxIdleConnsPerHost:    int(config.MaxConcurrency),
		MaxConnsPerHost:        int(config.MaxConcurrency),
		IdleConnTimeout:        30 * time.Second,
		DisableCompression:     false,
		ForceAttemptHTTP2:      true,
		DisableKeepAlives:      false,
		MaxResponseHeaderBytes: 1 << 20, // 1MB limit
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
	}

	client := &http.Client{
		Timeout:   config.RequestTimeout,
		Transport: transport,
	}

	// Context for goroutine cleanup
	ctx, cancel := context.WithCancel(context.Background())

	requestChan := make(chan struct{}, 50)

	// Fill initial request permits
	for i := 0; i < 50 && i < int(config.RequestsPerSec); i++ {
		select {
		case requestChan <- struct{}{}:
		case <-ctx.Done():
			break
		}
	}

	// Refill permits at the configured rate. Float division keeps
	// fractional rates like 0.5 req/s working.
	requestTicker := time.NewTicker(time.Duration(float64(time.Second) / config.RequestsPerSec))
	go func() {
		defer requestTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-requestTicker.C:
				select {
				case requestChan <- struct{}{}:
				default:
					// Channel is full, skip this tick
				}
			}
		}
	}()

	return &models.ProductCrawler{
		Client:           client,
		MaxConcurrency:   config.MaxConcurrency,
		StartTime:        time.Now(),
		InvalidSessions:  make(map[string]bool),
		RequestSemaphore: semaphore.NewWeighted(config.MaxConcurrency),
		RequestTicker:    requestTicker,
		RequestChan:      requestChan,
		Ctx:              ctx,
		Cancel:           cancel,
	}, nil
}

// Close cleans up resources to prevent goroutine and connection leaks
func Close(pc *models.ProductCrawler) error {
	if pc.Cancel != nil {
		pc.Cancel()
	}

	if pc.RequestTicker != nil {
		pc.RequestTicker.Stop()
	}

	if pc.RequestChan != nil {
		// Drain channel
		for {
			select {
			case <-pc.RequestChan:
			default:
				close(pc.RequestChan)
				goto channelClosed
			}
		}
	channelClosed:
		pc.RequestChan = nil
	}

	// Close HTTP transport connections
	if pc.Client != nil && pc.Client.Transport != nil {
		if transport, ok := pc.Client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}

	return nil
}
