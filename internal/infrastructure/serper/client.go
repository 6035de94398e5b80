package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/transport"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Serper API root
const DefaultBaseURL = "https://google.serper.dev"

const maxResponseBytes = 2 << 20

// Config holds Serper client settings
type Config struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// Client handles communication with the Serper Google search API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new Serper API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:  transport.NewHTTPClient(transport.ClientConfig{Timeout: cfg.Timeout}),
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: transport.NewLimiter(cfg.RatePerMinute),
		logger:      logger.Named("serper"),
	}
}

// doRequest executes the search POST with proper headers
func (c *Client) doRequest(ctx context.Context, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", transport.APIUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
	}

	return resp, nil
}

// Search runs one query localized for language and returns up to limit hits
func (c *Client) Search(ctx context.Context, query, language string, limit int) ([]domain.SearchHit, error) {
	log := c.logger.With(zap.String("query", query), zap.String("language", language))

	payload, err := json.Marshal(searchRequest{
		Q:   query,
		Num: limit,
		GL:  countryFor(language),
		HL:  hostLanguageFor(language),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= transport.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := transport.Sleep(ctx, transport.Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		resp, err := c.doRequest(ctx, payload)
		if err != nil {
			log.Warn("request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: failed to read response: %v", domain.ErrSearchFailure, readErr)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			log.Warn("api error", zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(body, 256)))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSearchFailure, resp.StatusCode)
			if !transport.RetryableStatus(resp.StatusCode) {
				return nil, lastErr
			}
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrSearchFailure, err)
		}

		hits := MapToSearchHits(searchResp.Organic, language, limit)
		log.Debug("search completed", zap.Int("hits", len(hits)))
		return hits, nil
	}

	log.Warn("all retries failed", zap.Error(lastErr))
	return nil, lastErr
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
