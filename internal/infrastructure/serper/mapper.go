package serper

import (
	"strings"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
)

// searchRequest is the body sent to the Serper search endpoint
type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

// searchResponse is the subset of the Serper response we read
type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

type organicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Country (gl) and interface language (hl) per query language
var (
	countryByLanguage = map[string]string{
		"en": "us",
		"ja": "jp",
		"zh": "cn",
		"de": "de",
		"fr": "fr",
		"es": "es",
		"ko": "kr",
	}

	hostLanguageByLanguage = map[string]string{
		"en": "en",
		"ja": "ja",
		"zh": "zh-cn",
		"de": "de",
		"fr": "fr",
		"es": "es",
		"ko": "ko",
	}
)

func countryFor(language string) string {
	if gl, ok := countryByLanguage[strings.ToLower(language)]; ok {
		return gl
	}
	return "us"
}

func hostLanguageFor(language string) string {
	if hl, ok := hostLanguageByLanguage[strings.ToLower(language)]; ok {
		return hl
	}
	return "en"
}

// MapToSearchHits converts organic results to domain hits, tagging each with
// the query language. Positions are 1-based in result order; results without
// a link are skipped.
func MapToSearchHits(results []organicResult, language string, limit int) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(results))
	for _, r := range results {
		if limit > 0 && len(hits) >= limit {
			break
		}
		if strings.TrimSpace(r.Link) == "" {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Title:    r.Title,
			Link:     strings.TrimSpace(r.Link),
			Snippet:  r.Snippet,
			Position: len(hits) + 1,
			Language: language,
		})
	}
	return hits
}
