package domain

import "errors"

var (
	// ErrInvalidDesire is returned when the desire is missing, not a string or blank
	ErrInvalidDesire = errors.New("desire is required and must be a non-empty string")

	// ErrAnalysisFailure is returned when the desire cannot be analyzed into queries
	ErrAnalysisFailure = errors.New("desire analysis failed")

	// ErrSearchFailure is returned when a web search request fails
	ErrSearchFailure = errors.New("web search request failed")

	// ErrScrapeFailure is returned when a page cannot be fetched or converted
	ErrScrapeFailure = errors.New("page scrape failed")

	// ErrInsufficientContent is returned when scraped content is too short to analyze
	ErrInsufficientContent = errors.New("insufficient page content")

	// ErrExtractionFailure is returned when product extraction fails
	ErrExtractionFailure = errors.New("product extraction failed")

	// ErrNoProduct is returned when a page does not describe a matching product
	ErrNoProduct = errors.New("no product found on page")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
