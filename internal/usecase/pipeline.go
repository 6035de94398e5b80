package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// searchFanOut searches the first MaxQueries queries in parallel. Each branch
// writes only its own slot; results are flattened in query order. A failed
// branch contributes no hits and exactly one error naming its language.
func (s *HuntService) searchFanOut(ctx context.Context, queries []domain.TranslatedQuery) ([]domain.SearchHit, []string) {
	if len(queries) > s.config.MaxQueries {
		queries = queries[:s.config.MaxQueries]
	}

	branchHits := make([][]domain.SearchHit, len(queries))
	branchErrs := make([]error, len(queries))

	// Branches never return an error to the group so siblings keep running.
	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			hits, err := s.searchBranch(ctx, q)
			branchHits[i], branchErrs[i] = hits, err
			return nil
		})
	}
	_ = g.Wait()

	var (
		flattened []domain.SearchHit
		errs      []string
	)
	for i, q := range queries {
		if err := branchErrs[i]; err != nil {
			metrics.RecordBranchFailure(metrics.StageSearch)
			s.logger.Warn("search branch failed",
				zap.String("language", q.Language),
				zap.String("query", q.Query),
				zap.Error(err),
			)
			errs = append(errs, fmt.Sprintf("search failed (%s): %v", q.Language, err))
			continue
		}
		s.logger.Debug("search branch completed", zap.String("language", q.Language), zap.Int("hits", len(branchHits[i])))
		flattened = append(flattened, branchHits[i]...)
	}

	return flattened, errs
}

func (s *HuntService) searchBranch(ctx context.Context, q domain.TranslatedQuery) (hits []domain.SearchHit, err error) {
	defer func() {
		if r := recover(); r != nil {
			hits, err = nil, fmt.Errorf("%w: panic: %v", domain.ErrSearchFailure, r)
		}
	}()

	hits, err = s.searchClient.Search(ctx, q.Query, q.Language, s.config.ResultsPerQuery)
	if err != nil {
		return nil, err
	}
	if len(hits) > s.config.ResultsPerQuery {
		hits = hits[:s.config.ResultsPerQuery]
	}
	for i := range hits {
		if hits[i].Language == "" {
			hits[i].Language = q.Language
		}
	}
	return hits, nil
}

// mergeCandidates keeps the first occurrence of every link, in order, up to limit.
func mergeCandidates(hits []domain.SearchHit, limit int) []domain.Candidate {
	seen := make(map[string]bool, len(hits))
	candidates := make([]domain.Candidate, 0, limit)

	for _, hit := range hits {
		if len(candidates) >= limit {
			break
		}
		if hit.Link == "" || seen[hit.Link] {
			continue
		}
		seen[hit.Link] = true
		candidates = append(candidates, domain.Candidate{URL: hit.Link, Language: hit.Language})
	}

	return candidates
}

// scrapeFanOut scrapes and extracts every candidate in parallel. The returned
// slice has one slot per candidate, in candidate order; nil means no product.
func (s *HuntService) scrapeFanOut(ctx context.Context, candidates []domain.Candidate, desire string) []*domain.Product {
	slots := make([]*domain.Product, len(candidates))

	var g errgroup.Group
	for i, c := range candidates {
		g.Go(func() error {
			slots[i] = s.extractCandidate(ctx, c, desire)
			return nil
		})
	}
	_ = g.Wait()

	return slots
}

// extractCandidate never fails: scrape errors, short pages and extraction
// errors all yield nil without surfacing to the caller.
func (s *HuntService) extractCandidate(ctx context.Context, c domain.Candidate, desire string) (product *domain.Product) {
	log := s.logger.With(zap.String("url", c.URL), zap.String("language", c.Language))

	defer func() {
		if r := recover(); r != nil {
			log.Warn("candidate branch panicked", zap.Any("panic", r))
			product = nil
		}
	}()

	content, err := s.scraper.Scrape(ctx, c.URL)
	if err != nil {
		metrics.RecordBranchFailure(metrics.StageScrape)
		log.Debug("scrape failed", zap.Error(err))
		return nil
	}

	if utf8.RuneCountInString(content) < s.config.MinContentLength {
		log.Debug("skipping page", zap.Error(domain.ErrInsufficientContent), zap.Int("length", utf8.RuneCountInString(content)))
		return nil
	}

	extracted, err := s.analyzer.ExtractProduct(ctx, content, desire)
	if err != nil {
		if !errors.Is(err, domain.ErrNoProduct) {
			metrics.RecordBranchFailure(metrics.StageExtract)
			log.Warn("product extraction failed", zap.Error(err))
		} else {
			log.Debug("no product on page")
		}
		return nil
	}
	if extracted == nil {
		return nil
	}

	extracted.SourceURL = c.URL
	extracted.SourceLanguage = c.Language
	extracted.ExtractedAt = s.now()

	log.Debug("product extracted", zap.String("name", extracted.Name), zap.Int("score", extracted.RelevanceScore))
	return extracted
}

// aggregateProducts drops empty slots and low scores, removes duplicates by
// case-insensitive name or equal non-empty official URL (first wins), sorts
// by score descending keeping the original order on ties, and truncates.
func aggregateProducts(slots []*domain.Product, minScore, limit int) []domain.Product {
	products := make([]domain.Product, 0, len(slots))
	seenNames := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, p := range slots {
		if p == nil || p.RelevanceScore < minScore {
			continue
		}

		nameKey := strings.ToLower(p.Name)
		if seenNames[nameKey] || (p.HasOfficialURL() && seenURLs[p.OfficialURL]) {
			continue
		}
		seenNames[nameKey] = true
		if p.HasOfficialURL() {
			seenURLs[p.OfficialURL] = true
		}

		products = append(products, *p)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].RelevanceScore > products[j].RelevanceScore
	})

	if len(products) > limit {
		products = products[:limit]
	}
	return products
}
