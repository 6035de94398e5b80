package domain

import (
	"context"
	"time"
)

// Analyzer turns a desire into search queries and page content into products
type Analyzer interface {
	AnalyzeDesire(ctx context.Context, desire string) (*DesireAnalysis, error)
	ExtractProduct(ctx context.Context, content, desire string) (*Product, error)
}

// SearchClient performs a web search for one query in one language
type SearchClient interface {
	Search(ctx context.Context, query, language string, limit int) ([]SearchHit, error)
}

// Scraper fetches a page and returns its main content as markdown text
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// CacheRepository defines the interface for caching hunt results
type CacheRepository interface {
	Get(ctx context.Context, key string) (*HuntResult, error)
	Set(ctx context.Context, key string, value *HuntResult, ttl time.Duration) error
}
