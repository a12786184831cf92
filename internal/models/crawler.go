package models

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ProductCrawler represents the core crawler state shared by the query
// and session services. Session handling lives in
// internal/crawler.SessionManager, persistence in internal/database.
type ProductCrawler struct {
	Sessions        []string
	InvalidSessions map[string]bool
	Client          *http.Client
	MaxConcurrency  int64
	Stats           struct {
		Attempted  int32 // detail fetches tried
		Complete   int32 // rows stored with every required field
		Incomplete int32 // fetched fine but missing required fields
		Failed     int32 // fetch errors after retries
	}
	StartTime         time.Time
	AllSessionsFailed bool
	SessionMutex      sync.Mutex
	ActiveRequests    int32
	RequestSemaphore  *semaphore.Weighted
	RequestTicker     *time.Ticker
	RequestChan       chan struct{}
	Ctx               context.Context
	Cancel            context.CancelFunc
}
