package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eirinkan/Desire-Hunter/config"
	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/scraper"
	"github.com/eirinkan/Desire-Hunter/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{APIKey: "sk-test", Model: "gpt-4o-mini", Timeout: time.Second},
		Search:   config.SearchConfig{APIKey: "serper-test", Languages: []string{"en", "ja"}, Timeout: time.Second},
		Scrape:   config.ScrapeConfig{Timeout: time.Second},
		Cache:    config.CacheConfig{Enabled: true, TTL: time.Hour},
		Log:      config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestNewScraper(t *testing.T) {
	t.Run("direct fetch without a Firecrawl key", func(t *testing.T) {
		s := NewScraper(testConfig(), zap.NewNop())
		assert.IsType(t, &scraper.DirectFetcher{}, s)
	})

	t.Run("Firecrawl with direct fallback", func(t *testing.T) {
		cfg := testConfig()
		cfg.Scrape.FirecrawlAPIKey = "fc-test"

		s := NewScraper(cfg, zap.NewNop())
		assert.IsType(t, &scraper.FallbackScraper{}, s)
	})
}

func TestNewHuntService(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := testConfig()
		cfg.Cache.Enabled = enabled

		service, cleanup := NewHuntService(cfg, ServerHuntConfig(cfg), zap.NewNop())
		require.NotNil(t, service)
		require.NotNil(t, cleanup)
		cleanup()
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(testConfig())
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg := testConfig()
	cfg.Log.Level = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}

// looseHuntConfig asks for limits beyond the API's bounds
func looseHuntConfig() *config.Config {
	cfg := testConfig()
	cfg.Hunt = config.HuntConfig{
		MaxQueries:        6,
		ResultsPerQuery:   10,
		MaxCandidates:     20,
		MinContentLength:  1,
		MinRelevanceScore: 3,
		MaxProducts:       10,
	}
	return cfg
}

func TestServerHuntConfig_IgnoresHuntOverrides(t *testing.T) {
	cfg := looseHuntConfig()

	assert.Equal(t, usecase.HuntConfig{CacheTTL: time.Hour}, ServerHuntConfig(cfg))
}

func TestCLIHuntConfig_AppliesHuntSection(t *testing.T) {
	got := CLIHuntConfig(looseHuntConfig())

	assert.Equal(t, 3, got.MinRelevanceScore)
	assert.Equal(t, 10, got.MaxProducts)
	assert.Equal(t, 6, got.MaxQueries)
	assert.Equal(t, time.Hour, got.CacheTTL)
}

// scoredAnalyzer yields one query per language and scores pages by the
// number embedded in their content
type scoredAnalyzer struct{}

func (scoredAnalyzer) AnalyzeDesire(ctx context.Context, desire string) (*domain.DesireAnalysis, error) {
	var queries []domain.TranslatedQuery
	for _, lang := range []string{"en", "ja", "de", "fr"} {
		queries = append(queries, domain.TranslatedQuery{Language: lang, Query: desire + " " + lang})
	}
	return &domain.DesireAnalysis{OriginalDesire: desire, TranslatedQueries: queries}, nil
}

func (scoredAnalyzer) ExtractProduct(ctx context.Context, content, desire string) (*domain.Product, error) {
	var name string
	var score int
	if _, err := fmt.Sscanf(content, "%s %d", &name, &score); err != nil {
		return nil, err
	}
	return &domain.Product{Name: name, RelevanceScore: score}, nil
}

type countingSearch struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSearch) Search(ctx context.Context, query, language string, limit int) ([]domain.SearchHit, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	hits := make([]domain.SearchHit, 0, 4)
	for i := 0; i < 4; i++ {
		hits = append(hits, domain.SearchHit{Link: fmt.Sprintf("https://%s.example/%d", language, i), Position: i + 1})
	}
	return hits, nil
}

// scoredPages gives every page a distinct product scored by its last path digit
type scoredPages struct{}

var scoreByDigit = map[byte]int{'0': 3, '1': 9, '2': 8, '3': 6}

func (scoredPages) Scrape(ctx context.Context, url string) (string, error) {
	score := scoreByDigit[url[len(url)-1]]
	return fmt.Sprintf("%s %d %s", strings.ReplaceAll(url, "/", "_"), score, strings.Repeat("detail ", 20)), nil
}

func TestServerHuntConfig_KeepsOutputBounds(t *testing.T) {
	cfg := looseHuntConfig()
	search := &countingSearch{}
	service := usecase.NewHuntService(scoredAnalyzer{}, search, scoredPages{}, nil, ServerHuntConfig(cfg), nil)

	result, err := service.RunHunt(context.Background(), "lamp")
	require.NoError(t, err)

	assert.Equal(t, 2, search.calls)
	assert.Equal(t, 6, result.TotalSearched)
	assert.Equal(t, 5, result.TotalScraped)

	var scores []int
	for _, p := range result.Products {
		scores = append(scores, p.RelevanceScore)
	}
	assert.Equal(t, []int{9, 9, 8}, scores)
}
