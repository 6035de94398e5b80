package domain

import "time"

// PriceInfo represents a product price as reported on the page
type PriceInfo struct {
	Amount    *float64 `json:"amount,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	Formatted string   `json:"formatted,omitempty"`
}

// Product represents a product extracted from a scraped page and scored
// against the desire
type Product struct {
	Name           string     `json:"name"`
	Brand          string     `json:"brand"`
	Description    string     `json:"description"`
	Price          *PriceInfo `json:"price,omitempty"`
	OfficialURL    string     `json:"officialUrl,omitempty"`
	AmazonURL      string     `json:"amazonUrl,omitempty"`
	RakutenURL     string     `json:"rakutenUrl,omitempty"`
	InstagramURL   string     `json:"instagramUrl,omitempty"`
	RelevanceScore int        `json:"relevanceScore"` // 0-10
	Reasoning      string     `json:"reasoning"`

	// Provenance, stamped by the pipeline
	SourceURL      string    `json:"sourceUrl,omitempty"`
	SourceLanguage string    `json:"sourceLanguage,omitempty"`
	ExtractedAt    time.Time `json:"extractedAt,omitzero"`
}

// HasOfficialURL reports whether the product carries a usable official URL
func (p *Product) HasOfficialURL() bool {
	return p.OfficialURL != ""
}
