package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

type analysisPayload struct {
	RefinedDesire     string   `json:"refined_desire"`
	Keywords          []string `json:"keywords"`
	Category          string   `json:"category"`
	TranslatedQueries []struct {
		Language     string `json:"language"`
		Query        string `json:"query"`
		SearchIntent string `json:"search_intent"`
	} `json:"translated_queries"`
}

type productPayload struct {
	Found       bool   `json:"found"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Price       *struct {
		Amount    *float64 `json:"amount"`
		Currency  string   `json:"currency"`
		Formatted string   `json:"formatted"`
	} `json:"price"`
	OfficialURL    string  `json:"official_url"`
	AmazonURL      string  `json:"amazon_url"`
	RakutenURL     string  `json:"rakuten_url"`
	InstagramURL   string  `json:"instagram_url"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// extractJSON pulls the JSON object out of a model reply that may be wrapped
// in a markdown fence or surrounded by prose
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return "", errors.New("no JSON object in model response")
	}
	return text[start : end+1], nil
}

func parseAnalysis(text, desire string) (*domain.DesireAnalysis, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid analysis JSON: %w", err)
	}

	analysis := &domain.DesireAnalysis{
		OriginalDesire:    desire,
		RefinedDesire:     strings.TrimSpace(payload.RefinedDesire),
		Keywords:          payload.Keywords,
		Category:          strings.TrimSpace(payload.Category),
		TranslatedQueries: make([]domain.TranslatedQuery, 0, len(payload.TranslatedQueries)),
	}
	for _, q := range payload.TranslatedQueries {
		analysis.TranslatedQueries = append(analysis.TranslatedQueries, domain.TranslatedQuery{
			Original:     desire,
			Language:     strings.ToLower(strings.TrimSpace(q.Language)),
			Query:        strings.TrimSpace(q.Query),
			SearchIntent: strings.TrimSpace(q.SearchIntent),
		})
	}
	return analysis, nil
}

func parseProduct(text string) (*domain.Product, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var payload productPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid product JSON: %w", err)
	}

	name := strings.TrimSpace(payload.Name)
	if !payload.Found || name == "" {
		return nil, domain.ErrNoProduct
	}

	product := &domain.Product{
		Name:           name,
		Brand:          strings.TrimSpace(payload.Brand),
		Description:    strings.TrimSpace(payload.Description),
		OfficialURL:    sanitizeURL(payload.OfficialURL),
		AmazonURL:      sanitizeURL(payload.AmazonURL),
		RakutenURL:     sanitizeURL(payload.RakutenURL),
		InstagramURL:   sanitizeURL(payload.InstagramURL),
		RelevanceScore: clampScore(payload.RelevanceScore),
		Reasoning:      strings.TrimSpace(payload.Reasoning),
	}

	if p := payload.Price; p != nil && (p.Amount != nil || p.Currency != "" || p.Formatted != "") {
		product.Price = &domain.PriceInfo{
			Amount:    p.Amount,
			Currency:  strings.ToUpper(strings.TrimSpace(p.Currency)),
			Formatted: strings.TrimSpace(p.Formatted),
		}
	}

	return product, nil
}

// sanitizeURL keeps absolute http(s) URLs and drops placeholders like "N/A"
func sanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

func clampScore(score float64) int {
	switch {
	case score < 0:
		return 0
	case score > 10:
		return 10
	default:
		return int(score + 0.5)
	}
}
