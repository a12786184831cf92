package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"twc-crawler/internal/models"
	"twc-crawler/internal/storage"
)

const (
	productListPath   = "/shopping-api/v2/get-product-list"
	productDetailPath = "/shopping-api/v2/get-product"
)

// ErrAllSessionsFailed is returned once every device identifier in the
// pool was rejected by the API.
var ErrAllSessionsFailed = errors.New("all sessions have failed")

// QueryService handles shopping API queries
type QueryService struct {
	sessionManager *SessionManager
	sessionStorage *storage.SessionStorage
}

// NewQueryService creates a new QueryService instance
func NewQueryService() *QueryService {
	return &QueryService{
		sessionManager: &SessionManager{},
		sessionStorage: storage.NewSessionStorage(),
	}
}

// fetchWithSessionRotation runs one API call under the rate limiter
// and concurrency semaphore, switching device identifiers on 429 and
// dropping them on 401/403. The do callback performs the actual
// request with the session it is handed.
func (qs *QueryService) fetchWithSessionRotation(pc *models.ProductCrawler, ctx context.Context, do func(session string) (int, error)) (int, error) {
	if qs.sessionManager.AreAllSessionsFailed(pc) {
		return 0, ErrAllSessionsFailed
	}

	// Wait for rate limit permit (requests per second max)
	select {
	case <-pc.RequestChan:
		// Got permission to make request
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	// Acquire semaphore to limit concurrent requests
	if err := pc.RequestSemaphore.Acquire(ctx, 1); err != nil {
		return 0, err
	}

	atomic.AddInt32(&pc.ActiveRequests, 1)
	defer func() {
		pc.RequestSemaphore.Release(1)
		atomic.AddInt32(&pc.ActiveRequests, -1)
	}()

	session := qs.sessionManager.GetSession(pc)
	statusCode, err := do(session)

	if statusCode == 429 {
		if recErr := qs.sessionStorage.RecordSessionFailure(session); recErr != nil {
			fmt.Printf("⚠️ Could not record session failure: %v\n", recErr)
		}

		activeCount := qs.sessionManager.GetValidSessionCount(pc)

		if activeCount > 1 {
			// More than one session active, rotate away from the
			// rate limited one for the rest of this run.
			fmt.Printf("🔄 Session rate limited (429), switching (%d sessions active)\n", activeCount)
			qs.sessionManager.MarkSessionAsInvalid(pc, session)

			newSession := qs.sessionManager.GetSession(pc)
			if newSession != "" && newSession != session {
				session = newSession
				statusCode, err = do(session)
			}
		} else {
			time.Sleep(1 * time.Second)
			// Retry with the same session
			statusCode, err = do(session)
		}
	} else if statusCode == 401 || statusCode == 403 {
		// The API rejected the device identifier, drop it for good
		qs.sessionManager.MarkSessionAsInvalid(pc, session)

		if invErr := qs.sessionStorage.InvalidateSession(session); invErr != nil {
			fmt.Printf("⚠️ Could not invalidate session: %v\n", invErr)
		} else {
			fmt.Printf("🗑️ Invalidated rejected session (status: %d)\n", statusCode)
		}

		if qs.sessionManager.CheckIfAllSessionsInvalid(pc) {
			return statusCode, ErrAllSessionsFailed
		}

		newSession := qs.sessionManager.GetSession(pc)
		if newSession != "" {
			session = newSession
			statusCode, err = do(session)
		}
	}

	// Rotation order feeds off last_used_at
	if statusCode == http.StatusOK && session != "" {
		if markErr := qs.sessionStorage.MarkSessionUsed(session); markErr != nil {
			fmt.Printf("⚠️ Could not update session usage: %v\n", markErr)
		}
	}

	return statusCode, err
}

// FetchProductListWithRetryLogic fetches one catalogue page with
// session rotation. It returns the listing entries of the page, an
// empty slice means the category is exhausted.
func (qs *QueryService) FetchProductListWithRetryLogic(pc *models.ProductCrawler, ctx context.Context, config models.Config, category string, page int) ([]models.ProductSummary, int, error) {
	var results []models.ProductSummary
	statusCode, err := qs.fetchWithSessionRotation(pc, ctx, func(session string) (int, error) {
		var status int
		var ferr error
		results, status, ferr = qs.doFetchProductList(pc, ctx, config, category, page, session)
		return status, ferr
	})
	return results, statusCode, err
}

// FetchProductWithRetryLogic fetches one product detail payload. The
// detail endpoint takes no device identifier, but the call still runs
// through the rotation wrapper for rate limiting and 429 backoff.
func (qs *QueryService) FetchProductWithRetryLogic(pc *models.ProductCrawler, ctx context.Context, config models.Config, slug string) (map[string]any, int, error) {
	var payload map[string]any
	statusCode, err := qs.fetchWithSessionRotation(pc, ctx, func(string) (int, error) {
		var status int
		var ferr error
		payload, status, ferr = qs.doFetchProduct(pc, ctx, config, slug)
		return status, ferr
	})
	return payload, statusCode, err
}

// DoFetchProductList performs the actual catalogue page request with a
// fixed session (exported for the validator probes)
func (qs *QueryService) DoFetchProductList(pc *models.ProductCrawler, ctx context.Context, config models.Config, category string, page int, session string) ([]models.ProductSummary, int, error) {
	return qs.doFetchProductList(pc, ctx, config, category, page, session)
}

// doFetchProductList performs the actual HTTP request to the
// get-product-list endpoint
func (qs *QueryService) doFetchProductList(pc *models.ProductCrawler, ctx context.Context, config models.Config, category string, page int, session string) ([]models.ProductSummary, int, error) {
	reqBody := models.ProductListRequest{
		AppIdentifier:    config.UserAgent,
		DeviceIdentifier: session,
		Parameters: models.ListParameters{
			Categories:  []string{category},
			UseSemantic: true,
		},
		Page:     page,
		PageSize: config.PageSize,
	}

	respBody, statusCode, err := qs.postJSON(pc, ctx, config, config.BaseURL+productListPath, reqBody)
	if err != nil {
		return nil, statusCode, err
	}

	var decoded models.ProductListResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, statusCode, fmt.Errorf("failed to decode product list: %w", err)
	}

	return decoded.Results, statusCode, nil
}

// doFetchProduct performs the actual HTTP request to the get-product
// endpoint
func (qs *QueryService) doFetchProduct(pc *models.ProductCrawler, ctx context.Context, config models.Config, slug string) (map[string]any, int, error) {
	reqBody := models.ProductDetailRequest{
		ProductSlug: slug,
		Extensions:  map[string]any{},
	}

	respBody, statusCode, err := qs.postJSON(pc, ctx, config, config.BaseURL+productDetailPath, reqBody)
	if err != nil {
		return nil, statusCode, err
	}

	var decoded models.ProductDetailResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, statusCode, fmt.Errorf("failed to decode product detail: %w", err)
	}
	if decoded.Product == nil {
		return nil, statusCode, fmt.Errorf("no product payload for slug %s", slug)
	}

	return decoded.Product, statusCode, nil
}

// postJSON sends one JSON POST and returns the raw response body with
// the HTTP status mapped onto typed errors.
func (qs *QueryService) postJSON(pc *models.ProductCrawler, ctx context.Context, config models.Config, url string, body any) ([]byte, int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, err
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json, text/plain, */*")
	req.Header.Add("User-Agent", config.UserAgent)
	req.Header.Add("Connection", "keep-alive")
	req.Header.Add("X-Request-Id", uuid.New().String())

	resp, err := pc.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	statusCode := resp.StatusCode

	if statusCode != http.StatusOK {
		switch statusCode {
		case http.StatusUnauthorized:
			return nil, statusCode, fmt.Errorf("session authentication failed (401 Unauthorized): %s", resp.Status)
		case http.StatusForbidden:
			return nil, statusCode, fmt.Errorf("session rejected (403 Forbidden): %s", resp.Status)
		case http.StatusNotFound:
			return nil, statusCode, fmt.Errorf("resource not found (404): %s", resp.Status)
		case http.StatusTooManyRequests:
			return nil, statusCode, fmt.Errorf("rate limited (429 Too Many Requests): %s", resp.Status)
		case http.StatusInternalServerError:
			return nil, statusCode, fmt.Errorf("internal server error (500): %s", resp.Status)
		}
		return nil, statusCode, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, statusCode, err
	}

	return respBody, statusCode, nil
}
