package domain

// TranslatedQuery is one search query in a target language
type TranslatedQuery struct {
	Original     string `json:"original"`
	Language     string `json:"language"`
	Query        string `json:"query"`
	SearchIntent string `json:"searchIntent,omitempty"`
}

// DesireAnalysis is the output of the query analyzer
type DesireAnalysis struct {
	OriginalDesire    string            `json:"originalDesire"`
	RefinedDesire     string            `json:"refinedDesire,omitempty"`
	Keywords          []string          `json:"keywords,omitempty"`
	Category          string            `json:"category,omitempty"`
	TranslatedQueries []TranslatedQuery `json:"translatedQueries"`
}

// SearchHit is a single organic search result
type SearchHit struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"` // 1-based
	Language string `json:"language,omitempty"`
}

// Candidate is a unique page location selected for scraping
type Candidate struct {
	URL      string
	Language string
}

// HuntRequest represents the inbound hunt request body
type HuntRequest struct {
	Desire string `json:"desire"`
}

// HuntResult is the envelope returned to callers
type HuntResult struct {
	Desire        string    `json:"desire"`
	Products      []Product `json:"products"`
	TotalSearched int       `json:"totalSearched"`
	TotalScraped  int       `json:"totalScraped"`
	Errors        []string  `json:"errors"`
}
