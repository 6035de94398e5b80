package scraper

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

// DefaultFirecrawlBaseURL is the Firecrawl API root
const DefaultFirecrawlBaseURL = "https://api.firecrawl.dev"

const maxFirecrawlResponseBytes = 8 << 20

type firecrawlRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	Timeout         int      `json:"timeout,omitempty"` // milliseconds
}

type firecrawlResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title      string `json:"title"`
			StatusCode int    `json:"statusCode"`
		} `json:"metadata"`
	} `json:"data"`
}

// FirecrawlConfig holds Firecrawl client settings
type FirecrawlConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// FirecrawlClient scrapes pages to markdown through the Firecrawl API
type FirecrawlClient struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewFirecrawlClient creates a new Firecrawl API client
func NewFirecrawlClient(cfg FirecrawlConfig, logger *zap.Logger) *FirecrawlClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultFirecrawlBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FirecrawlClient{
		httpClient:  transport.NewHTTPClient(transport.ClientConfig{Timeout: cfg.Timeout}),
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		timeout:     cfg.Timeout,
		rateLimiter: transport.NewLimiter(cfg.RatePerMinute),
		logger:      logger.Named("firecrawl"),
	}
}

// Scrape returns the main content of url as markdown
func (c *FirecrawlClient) Scrape(ctx context.Context, url string) (string, error) {
	log := c.logger.With(zap.String("url", url))

	payload, err := json.Marshal(firecrawlRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         int(c.timeout.Milliseconds()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= transport.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := transport.Sleep(ctx, transport.Backoff(attempt-1)); err != nil {
				return "", err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", transport.APIUserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Debug("request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrScrapeFailure, err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxFirecrawlResponseBytes))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: failed to read response: %v", domain.ErrScrapeFailure, readErr)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			log.Debug("api error", zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode))
			lastErr = fmt.Errorf("%w: firecrawl status %d", domain.ErrScrapeFailure, resp.StatusCode)
			if !transport.RetryableStatus(resp.StatusCode) {
				return "", lastErr
			}
			continue
		}

		var scraped firecrawlResponse
		if err := json.Unmarshal(body, &scraped); err != nil {
			return "", fmt.Errorf("%w: failed to decode response: %v", domain.ErrScrapeFailure, err)
		}
		if !scraped.Success {
			return "", fmt.Errorf("%w: %s", domain.ErrScrapeFailure, scraped.Error)
		}

		return scraped.Data.Markdown, nil
	}

	return "", lastErr
}
