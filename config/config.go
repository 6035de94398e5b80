package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "DESIREHUNTER"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Analysis  AnalysisConfig
	Search    SearchConfig
	Scrape    ScrapeConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Hunt      HuntConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AnalysisConfig holds the language model API configuration
type AnalysisConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"` // any OpenAI-compatible endpoint
	Model           string        `mapstructure:"model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxContentChars int           `mapstructure:"max_content_chars"`
	RatePerMinute   int           `mapstructure:"rate_per_minute"`
}

// SearchConfig holds Serper search API configuration
type SearchConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Languages     []string      `mapstructure:"languages"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
}

// ScrapeConfig holds page scraping configuration
type ScrapeConfig struct {
	FirecrawlAPIKey  string        `mapstructure:"firecrawl_api_key"` // empty: direct fetch only
	FirecrawlBaseURL string        `mapstructure:"firecrawl_base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	RatePerMinute    int           `mapstructure:"rate_per_minute"`
	UserAgent        string        `mapstructure:"user_agent"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// HuntConfig holds pipeline limits for the CLI. The HTTP API ignores them
// and always runs with the pipeline defaults.
type HuntConfig struct {
	MaxQueries        int `mapstructure:"max_queries"`
	ResultsPerQuery   int `mapstructure:"results_per_query"`
	MaxCandidates     int `mapstructure:"max_candidates"`
	MinContentLength  int `mapstructure:"min_content_length"`
	MinRelevanceScore int `mapstructure:"min_relevance_score"`
	MaxProducts       int `mapstructure:"max_products"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
	File   string `mapstructure:"file"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/desire-hunter/")

	// Environment variable settings: server.port -> DESIREHUNTER_SERVER_PORT
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads KEY=value pairs from path without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.request_timeout", "60s")

	// Analysis defaults
	v.SetDefault("analysis.api_key", "")
	v.SetDefault("analysis.base_url", "https://api.openai.com/v1")
	v.SetDefault("analysis.model", "gpt-4o-mini")
	v.SetDefault("analysis.temperature", 0.2)
	v.SetDefault("analysis.max_tokens", 2048)
	v.SetDefault("analysis.timeout", "30s")
	v.SetDefault("analysis.max_content_chars", 8000)
	v.SetDefault("analysis.rate_per_minute", 60)

	// Search defaults
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "https://google.serper.dev")
	v.SetDefault("search.languages", []string{"en", "ja", "zh", "de", "fr"})
	v.SetDefault("search.timeout", "15s")
	v.SetDefault("search.rate_per_minute", 10)

	// Scrape defaults
	v.SetDefault("scrape.firecrawl_api_key", "")
	v.SetDefault("scrape.firecrawl_base_url", "https://api.firecrawl.dev")
	v.SetDefault("scrape.timeout", "30s")
	v.SetDefault("scrape.rate_per_minute", 5)
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.max_body_bytes", 5<<20)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)

	// Pipeline defaults
	v.SetDefault("hunt.max_queries", 2)
	v.SetDefault("hunt.results_per_query", 3)
	v.SetDefault("hunt.max_candidates", 5)
	v.SetDefault("hunt.min_content_length", 100)
	v.SetDefault("hunt.min_relevance_score", 5)
	v.SetDefault("hunt.max_products", 5)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Analysis.APIKey == "" {
		return fmt.Errorf("analysis API key is required (set %s_ANALYSIS_API_KEY)", EnvPrefix)
	}

	if config.Search.APIKey == "" {
		return fmt.Errorf("search API key is required (set %s_SEARCH_API_KEY)", EnvPrefix)
	}

	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request timeout must be positive, got: %s", config.Server.RequestTimeout)
	}

	for name, timeout := range map[string]time.Duration{
		"analysis": config.Analysis.Timeout,
		"search":   config.Search.Timeout,
		"scrape":   config.Scrape.Timeout,
	} {
		if timeout <= 0 {
			return fmt.Errorf("%s timeout must be positive, got: %s", name, timeout)
		}
	}

	if config.Hunt.MinRelevanceScore < 1 || config.Hunt.MinRelevanceScore > 10 {
		return fmt.Errorf("min relevance score must be between 1 and 10, got: %d", config.Hunt.MinRelevanceScore)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}
