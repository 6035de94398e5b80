package scraper

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/infrastructure/transport"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps how much of a page is read
const DefaultMaxBodyBytes = 5 << 20

// Elements that never carry product content
const noiseSelector = "script, style, noscript, iframe, svg, nav, header, footer, aside, form"

// DirectConfig holds direct fetcher settings
type DirectConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	MaxRedirects int
}

// DirectFetcher downloads pages itself and converts their HTML to markdown
type DirectFetcher struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewDirectFetcher creates a fetcher that needs no third-party service
func NewDirectFetcher(cfg DirectConfig, logger *zap.Logger) *DirectFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = transport.DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DirectFetcher{
		httpClient: transport.NewHTTPClient(transport.ClientConfig{
			Timeout:      cfg.Timeout,
			MaxRedirects: cfg.MaxRedirects,
		}),
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger.Named("direct"),
	}
}

// Scrape fetches rawURL and returns its main content as markdown. Plain
// text bodies are returned unchanged.
func (f *DirectFetcher) Scrape(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("%w: unsupported url %q", domain.ErrScrapeFailure, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrScrapeFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrScrapeFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read body: %v", domain.ErrScrapeFailure, err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "text/plain" || mediaType == "text/markdown":
		return strings.TrimSpace(string(body)), nil
	case mediaType == "" || strings.Contains(mediaType, "html"):
		content, err := htmlToMarkdown(string(body), pageURL.Host)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrScrapeFailure, err)
		}
		f.logger.Debug("page converted", zap.String("url", rawURL), zap.Int("length", len(content)))
		return content, nil
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", domain.ErrScrapeFailure, mediaType)
	}
}

// htmlToMarkdown strips page chrome and converts the main content to markdown
func htmlToMarkdown(html, host string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find(noiseSelector).Remove()

	content := doc.Find("main, article, [role=main]").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	converter := md.NewConverter(host, true, nil)
	markdown := strings.TrimSpace(converter.Convert(content))

	if title != "" && !strings.Contains(markdown, title) {
		markdown = "# " + title + "\n\n" + markdown
	}
	return markdown, nil
}
