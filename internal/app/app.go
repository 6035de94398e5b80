// Package app wires configuration into a ready hunt service.
package app

import (
	"github.com/eirinkan/Desire-Hunter/config"
	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/cache"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/llm"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/scraper"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/serper"
	"github.com/eirinkan/Desire-Hunter/internal/logging"
	"github.com/eirinkan/Desire-Hunter/internal/usecase"
	"go.uber.org/zap"
)

// NewLogger builds the process logger from cfg.Log
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
}

// NewScraper prefers Firecrawl when a key is configured and falls back to
// fetching pages directly
func NewScraper(cfg *config.Config, logger *zap.Logger) domain.Scraper {
	direct := scraper.NewDirectFetcher(scraper.DirectConfig{
		Timeout:      cfg.Scrape.Timeout,
		UserAgent:    cfg.Scrape.UserAgent,
		MaxBodyBytes: cfg.Scrape.MaxBodyBytes,
	}, logger)

	if cfg.Scrape.FirecrawlAPIKey == "" {
		return direct
	}

	firecrawl := scraper.NewFirecrawlClient(scraper.FirecrawlConfig{
		APIKey:        cfg.Scrape.FirecrawlAPIKey,
		BaseURL:       cfg.Scrape.FirecrawlBaseURL,
		Timeout:       cfg.Scrape.Timeout,
		RatePerMinute: cfg.Scrape.RatePerMinute,
	}, logger)
	return scraper.NewFallbackScraper(firecrawl, direct, logger)
}

// ServerHuntConfig is the pipeline configuration of the HTTP API. The API
// always runs with the pipeline defaults; only the cache TTL is configurable.
func ServerHuntConfig(cfg *config.Config) usecase.HuntConfig {
	return usecase.HuntConfig{CacheTTL: cfg.Cache.TTL}
}

// CLIHuntConfig applies the hunt section of cfg on top of the defaults
func CLIHuntConfig(cfg *config.Config) usecase.HuntConfig {
	return usecase.HuntConfig{
		MaxQueries:        cfg.Hunt.MaxQueries,
		ResultsPerQuery:   cfg.Hunt.ResultsPerQuery,
		MaxCandidates:     cfg.Hunt.MaxCandidates,
		MinContentLength:  cfg.Hunt.MinContentLength,
		MinRelevanceScore: cfg.Hunt.MinRelevanceScore,
		MaxProducts:       cfg.Hunt.MaxProducts,
		CacheTTL:          cfg.Cache.TTL,
	}
}

// NewHuntService builds the hunt service and its clients. The returned
// cleanup stops background work and must be called on shutdown.
func NewHuntService(cfg *config.Config, hunt usecase.HuntConfig, logger *zap.Logger) (*usecase.HuntService, func()) {
	analyzer := llm.NewClient(llm.Config{
		APIKey:          cfg.Analysis.APIKey,
		BaseURL:         cfg.Analysis.BaseURL,
		Model:           cfg.Analysis.Model,
		MaxTokens:       cfg.Analysis.MaxTokens,
		Temperature:     cfg.Analysis.Temperature,
		Timeout:         cfg.Analysis.Timeout,
		MaxContentChars: cfg.Analysis.MaxContentChars,
		RatePerMinute:   cfg.Analysis.RatePerMinute,
		Languages:       cfg.Search.Languages,
	}, logger)

	searchClient := serper.NewClient(serper.Config{
		APIKey:        cfg.Search.APIKey,
		BaseURL:       cfg.Search.BaseURL,
		Timeout:       cfg.Search.Timeout,
		RatePerMinute: cfg.Search.RatePerMinute,
	}, logger)

	cleanup := func() {}
	var resultCache domain.CacheRepository
	if cfg.Cache.Enabled {
		memoryCache := cache.NewMemoryCache(cache.DefaultCleanupInterval)
		resultCache = memoryCache
		cleanup = memoryCache.Stop
	}

	service := usecase.NewHuntService(
		analyzer,
		searchClient,
		NewScraper(cfg, logger),
		resultCache,
		hunt,
		logger,
	)

	return service, cleanup
}
