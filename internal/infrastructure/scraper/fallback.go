package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"go.uber.org/zap"
)

// FallbackScraper tries a primary scraper and falls back to a secondary one
// when the primary fails or returns nothing
type FallbackScraper struct {
	primary  domain.Scraper
	fallback domain.Scraper
	logger   *zap.Logger
}

// NewFallbackScraper chains two scrapers
func NewFallbackScraper(primary, fallback domain.Scraper, logger *zap.Logger) *FallbackScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackScraper{primary: primary, fallback: fallback, logger: logger}
}

// Scrape returns the first non-empty content of the two scrapers
func (s *FallbackScraper) Scrape(ctx context.Context, url string) (string, error) {
	content, primaryErr := s.primary.Scrape(ctx, url)
	if primaryErr == nil && strings.TrimSpace(content) != "" {
		return content, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	s.logger.Debug("primary scraper gave nothing, falling back", zap.String("url", url), zap.Error(primaryErr))

	content, fallbackErr := s.fallback.Scrape(ctx, url)
	if fallbackErr != nil {
		if primaryErr == nil {
			return "", fallbackErr
		}
		return "", fmt.Errorf("%w: primary: %v; fallback: %v", domain.ErrScrapeFailure, primaryErr, fallbackErr)
	}
	return content, nil
}
