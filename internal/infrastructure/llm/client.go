package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/transport"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Defaults for the analysis client
const (
	DefaultModel           = "gpt-4o-mini"
	DefaultMaxTokens       = 2048
	DefaultTemperature     = 0.2
	DefaultMaxContentChars = 8000
	DefaultTimeout         = 30 * time.Second
	defaultMaxRetries      = 2
)

// DefaultLanguages are the query languages requested from the model
var DefaultLanguages = []string{"en", "ja", "zh", "de", "fr"}

// Config holds analysis client settings
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxTokens       int
	Temperature     float64
	Timeout         time.Duration
	MaxContentChars int
	RatePerMinute   int
	Languages       []string
}

// Client implements domain.Analyzer on an OpenAI-compatible chat completions API
type Client struct {
	client          *openai.Client
	model           string
	maxTokens       int
	temperature     float64
	timeout         time.Duration
	maxContentChars int
	languages       []string
	rateLimiter     *rate.Limiter
	logger          *zap.Logger
}

// NewClient creates a new analysis client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = DefaultMaxContentChars
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(defaultMaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &Client{
		client:          &client,
		model:           cfg.Model,
		maxTokens:       cfg.MaxTokens,
		temperature:     cfg.Temperature,
		timeout:         cfg.Timeout,
		maxContentChars: cfg.MaxContentChars,
		languages:       cfg.Languages,
		rateLimiter:     transport.NewLimiter(cfg.RatePerMinute),
		logger:          logger.Named("llm"),
	}
}

// AnalyzeDesire asks the model for a refined desire and per-language queries
func (c *Client) AnalyzeDesire(ctx context.Context, desire string) (*domain.DesireAnalysis, error) {
	text, err := c.complete(ctx, analysisSystemPrompt, buildAnalysisPrompt(desire, c.languages))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailure, err)
	}

	analysis, err := parseAnalysis(text, desire)
	if err != nil {
		c.logger.Warn("unparseable analysis", zap.String("desire", desire), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailure, err)
	}

	c.logger.Debug("desire analyzed",
		zap.String("desire", desire),
		zap.String("category", analysis.Category),
		zap.Int("queries", len(analysis.TranslatedQueries)),
	)
	return analysis, nil
}

// ExtractProduct asks the model whether content describes a product that
// fulfils desire. Pages without one yield domain.ErrNoProduct.
func (c *Client) ExtractProduct(ctx context.Context, content, desire string) (*domain.Product, error) {
	prompt := buildExtractionPrompt(truncateRunes(content, c.maxContentChars), desire)

	text, err := c.complete(ctx, extractionSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailure, err)
	}

	product, err := parseProduct(text)
	if err != nil {
		if errors.Is(err, domain.ErrNoProduct) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailure, err)
	}
	return product, nil
}

// complete runs one JSON-mode chat completion and returns the message text
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jsonMode := shared.NewResponseFormatJSONObjectParam()
	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxTokens:      openai.Int(int64(c.maxTokens)),
		Temperature:    openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &jsonMode},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no response choices returned from model")
	}

	return response.Choices[0].Message.Content, nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
