package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
)

// MockAnalyzer is a mock implementation of domain.Analyzer
type MockAnalyzer struct {
	mu sync.Mutex

	analysis    *domain.DesireAnalysis
	analyzeErr  error
	analyzeErrs map[string]error

	// products keyed by page content
	products   map[string]*domain.Product
	extractErr error

	analyzeCalls     int
	analyzedDesires  []string
	extractedContent []string
	extractedDesires []string
}

func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{
		analyzeErrs: make(map[string]error),
		products:    make(map[string]*domain.Product),
	}
}

func (m *MockAnalyzer) AnalyzeDesire(ctx context.Context, desire string) (*domain.DesireAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyzeCalls++
	m.analyzedDesires = append(m.analyzedDesires, desire)
	if err, ok := m.analyzeErrs[desire]; ok {
		return nil, err
	}
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	return m.analysis, nil
}

func (m *MockAnalyzer) ExtractProduct(ctx context.Context, content, desire string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractedContent = append(m.extractedContent, content)
	m.extractedDesires = append(m.extractedDesires, desire)
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	p, ok := m.products[content]
	if !ok {
		return nil, domain.ErrNoProduct
	}
	copied := *p
	return &copied, nil
}

func (m *MockAnalyzer) AnalyzeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyzeCalls
}

func (m *MockAnalyzer) ExtractCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.extractedContent)
}

// MockSearchClient is a mock implementation of domain.SearchClient
type MockSearchClient struct {
	mu sync.Mutex

	results map[string][]domain.SearchHit // keyed by language
	errs    map[string]error
	panics  map[string]bool

	queries []string
}

func NewMockSearchClient() *MockSearchClient {
	return &MockSearchClient{
		results: make(map[string][]domain.SearchHit),
		errs:    make(map[string]error),
		panics:  make(map[string]bool),
	}
}

func (m *MockSearchClient) Search(ctx context.Context, query, language string, limit int) ([]domain.SearchHit, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	err := m.errs[language]
	shouldPanic := m.panics[language]
	hits := append([]domain.SearchHit(nil), m.results[language]...)
	m.mu.Unlock()

	if shouldPanic {
		panic("search backend exploded")
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func (m *MockSearchClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// MockScraper is a mock implementation of domain.Scraper
type MockScraper struct {
	mu sync.Mutex

	pages map[string]string
	errs  map[string]error

	urls []string
}

func NewMockScraper() *MockScraper {
	return &MockScraper{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (m *MockScraper) Scrape(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = append(m.urls, url)
	if err, ok := m.errs[url]; ok {
		return "", err
	}
	return m.pages[url], nil
}

func (m *MockScraper) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.urls)
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string]domain.HuntResult
	getError  error
	setError  error
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string]domain.HuntResult)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (*domain.HuntResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return &value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value *domain.HuntResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = *value
	return nil
}
