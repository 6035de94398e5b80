package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/metrics"
	"go.uber.org/zap"
)

// Pipeline defaults
const (
	DefaultMaxQueries        = 2
	DefaultResultsPerQuery   = 3
	DefaultMaxCandidates     = 5
	DefaultMinContentLength  = 100
	DefaultMinRelevanceScore = 5
	DefaultMaxProducts       = 5
	DefaultCacheTTL          = time.Hour
)

// HuntConfig holds configuration for the hunt service. Zero values fall
// back to the defaults above.
type HuntConfig struct {
	MaxQueries        int
	ResultsPerQuery   int
	MaxCandidates     int
	MinContentLength  int
	MinRelevanceScore int
	MaxProducts       int
	CacheTTL          time.Duration
}

func (c HuntConfig) withDefaults() HuntConfig {
	if c.MaxQueries <= 0 {
		c.MaxQueries = DefaultMaxQueries
	}
	if c.ResultsPerQuery <= 0 {
		c.ResultsPerQuery = DefaultResultsPerQuery
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = DefaultMaxCandidates
	}
	if c.MinContentLength <= 0 {
		c.MinContentLength = DefaultMinContentLength
	}
	if c.MinRelevanceScore <= 0 {
		c.MinRelevanceScore = DefaultMinRelevanceScore
	}
	if c.MaxProducts <= 0 {
		c.MaxProducts = DefaultMaxProducts
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	return c
}

// HuntService runs the desire-to-products pipeline
type HuntService struct {
	analyzer     domain.Analyzer
	searchClient domain.SearchClient
	scraper      domain.Scraper
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	config       HuntConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewHuntService creates a new hunt service with dependencies.
// cache and logger may be nil.
func NewHuntService(
	analyzer domain.Analyzer,
	searchClient domain.SearchClient,
	scraper domain.Scraper,
	cache domain.CacheRepository,
	config HuntConfig,
	logger *zap.Logger,
) *HuntService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HuntService{
		analyzer:     analyzer,
		searchClient: searchClient,
		scraper:      scraper,
		cache:        cache,
		preprocessor: NewQueryPreprocessor(),
		config:       config.withDefaults(),
		logger:       logger,
		now:          time.Now,
	}
}

// RunHunt turns a desire into a ranked list of products.
// Flow: check cache -> analyze -> search fan-out -> merge -> scrape+extract fan-out -> aggregate
//
// Only analysis failure, an invalid desire or an expired context produce an
// error; every other failure is absorbed by its branch.
func (s *HuntService) RunHunt(ctx context.Context, desire string) (*domain.HuntResult, error) {
	start := time.Now()

	normalized, err := s.preprocessor.NormalizeDesire(desire)
	if err != nil {
		return nil, err
	}

	cacheKey := s.preprocessor.CacheKey(normalized)
	if cached := s.getFromCache(ctx, cacheKey); cached != nil {
		cached.Desire = desire
		s.logger.Info("hunt served from cache", zap.String("desire", normalized))
		metrics.RecordHunt(metrics.OutcomeCacheHit, time.Since(start), len(cached.Products))
		return cached, nil
	}

	analysis, err := s.analyzer.AnalyzeDesire(ctx, desire)
	if err == nil && analysis == nil {
		err = errors.New("analyzer returned no analysis")
	}
	if err != nil {
		s.recordFailure(ctx, start)
		s.logger.Error("desire analysis failed", zap.String("desire", normalized), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailure, err)
	}

	queries := s.preprocessor.PrepareQueries(analysis.TranslatedQueries, normalized)
	s.logger.Info("desire analyzed",
		zap.String("desire", normalized),
		zap.String("refined", analysis.RefinedDesire),
		zap.Int("queries", len(queries)),
	)

	hits, searchErrors := s.searchFanOut(ctx, queries)
	candidates := mergeCandidates(hits, s.config.MaxCandidates)
	slots := s.scrapeFanOut(ctx, candidates, desire)

	// A hunt that overran its deadline is not reported partially
	if err := ctx.Err(); err != nil {
		s.recordFailure(ctx, start)
		s.logger.Warn("hunt exceeded its deadline", zap.String("desire", normalized), zap.Error(err))
		return nil, err
	}

	products := aggregateProducts(slots, s.config.MinRelevanceScore, s.config.MaxProducts)

	result := &domain.HuntResult{
		Desire:        desire,
		Products:      products,
		TotalSearched: len(hits),
		TotalScraped:  len(candidates),
		Errors:        searchErrors,
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}

	s.logger.Info("hunt completed",
		zap.String("desire", normalized),
		zap.Int("searched", result.TotalSearched),
		zap.Int("scraped", result.TotalScraped),
		zap.Int("products", len(result.Products)),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	metrics.RecordHunt(metrics.OutcomeSuccess, time.Since(start), len(products))

	// Don't cache results that lost a search branch
	if len(result.Errors) == 0 {
		s.setInCache(ctx, cacheKey, result)
	}

	return result, nil
}

// HuntBatch runs hunts one after another. A failed hunt is reported in its
// own result's errors and does not stop the batch; a cancelled context does.
func (s *HuntService) HuntBatch(ctx context.Context, desires []string) ([]*domain.HuntResult, error) {
	results := make([]*domain.HuntResult, 0, len(desires))
	for i, desire := range desires {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		s.logger.Info("batch hunt", zap.Int("index", i+1), zap.Int("total", len(desires)), zap.String("desire", desire))

		result, err := s.RunHunt(ctx, desire)
		if err != nil {
			result = &domain.HuntResult{
				Desire:   desire,
				Products: []domain.Product{},
				Errors:   []string{err.Error()},
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *HuntService) recordFailure(ctx context.Context, start time.Time) {
	outcome := metrics.OutcomeFailure
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		outcome = metrics.OutcomeTimeout
	}
	metrics.RecordHunt(outcome, time.Since(start), 0)
}

func (s *HuntService) getFromCache(ctx context.Context, key string) *domain.HuntResult {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return cached
}

func (s *HuntService) setInCache(ctx context.Context, key string, result *domain.HuntResult) {
	if s.cache == nil {
		return
	}
	// Log but don't fail if caching fails
	if err := s.cache.Set(ctx, key, result, s.config.CacheTTL); err != nil {
		s.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}
