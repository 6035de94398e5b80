package usecase

import (
	"regexp"
	"strings"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
)

// QueryPreprocessor normalizes desires and the translated queries derived from them
type QueryPreprocessor struct{}

// Compiled regex patterns for query preprocessing
var (
	// Runs of whitespace, including full-width spaces
	multiSpacePattern = regexp.MustCompile(`[\s\x{3000}]+`)
)

// productKeywords are appended to a desire when a query has to be built
// without the analyzer's help
var productKeywords = map[string]string{
	"en": "buy product shop",
	"zh": "购买 产品 商店",
	"de": "kaufen produkt shop",
	"ja": "購入 製品 ショップ",
	"fr": "acheter produit boutique",
	"es": "comprar producto tienda",
	"ko": "구매 제품 쇼핑",
}

const (
	defaultProductKeyword = "buy product"
	unknownLanguage       = "unknown"
)

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor() *QueryPreprocessor {
	return &QueryPreprocessor{}
}

// NormalizeDesire trims and collapses whitespace. A blank desire is invalid.
func (p *QueryPreprocessor) NormalizeDesire(desire string) (string, error) {
	normalized := collapseSpaces(desire)
	if normalized == "" {
		return "", domain.ErrInvalidDesire
	}
	return normalized, nil
}

// PrepareQueries cleans the analyzer's queries in place order. Queries with
// no text fall back to the desire plus product keywords for their language.
func (p *QueryPreprocessor) PrepareQueries(queries []domain.TranslatedQuery, desire string) []domain.TranslatedQuery {
	prepared := make([]domain.TranslatedQuery, 0, len(queries))
	for _, q := range queries {
		q.Language = strings.ToLower(strings.TrimSpace(q.Language))
		if q.Language == "" {
			q.Language = unknownLanguage
		}
		q.Query = collapseSpaces(q.Query)
		if q.Query == "" {
			q.Query = BuildQueryForLanguage(desire, q.Language)
		}
		prepared = append(prepared, q)
	}
	return prepared
}

// CacheKey returns the cache key for a desire.
// Format: "hunt:{lowercased desire, whitespace collapsed}". Punctuation is
// kept: "C++ books" and "C books" are different desires.
func (p *QueryPreprocessor) CacheKey(desire string) string {
	return "hunt:" + collapseSpaces(strings.ToLower(desire))
}

// BuildQueryForLanguage appends localized shopping keywords to the desire
func BuildQueryForLanguage(desire, language string) string {
	keyword, ok := productKeywords[language]
	if !ok {
		keyword = defaultProductKeyword
	}
	return collapseSpaces(desire) + " " + keyword
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}
