package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<head><title>Focus Lamp | Lumen</title><style>body { color: red; }</style></head>
<body>
  <header><nav><a href="/">Home</a><a href="/shop">Shop</a></nav></header>
  <main>
    <h1>Focus Lamp</h1>
    <p>A <strong>daylight</strong> desk lamp that helps you concentrate.</p>
    <ul><li>5000K color temperature</li><li>Flicker free</li></ul>
    <a href="/buy">Buy now</a>
  </main>
  <script>trackVisitor();</script>
  <footer>Copyright Lumen</footer>
</body>
</html>`

func TestFirecrawlClient_Scrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-key", r.Header.Get("Authorization"))

		var req firecrawlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://lumen.example/lamp", req.URL)
		assert.Equal(t, []string{"markdown"}, req.Formats)
		assert.True(t, req.OnlyMainContent)

		w.Write([]byte(`{"success": true, "data": {"markdown": "# Focus Lamp\nA daylight lamp", "metadata": {"title": "Focus Lamp", "statusCode": 200}}}`))
	}))
	defer server.Close()

	client := NewFirecrawlClient(FirecrawlConfig{APIKey: "fc-key", BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	content, err := client.Scrape(context.Background(), "https://lumen.example/lamp")

	require.NoError(t, err)
	assert.Equal(t, "# Focus Lamp\nA daylight lamp", content)
}

func TestFirecrawlClient_Unsuccessful(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "blocked by robots.txt"}`))
	}))
	defer server.Close()

	client := NewFirecrawlClient(FirecrawlConfig{APIKey: "fc-key", BaseURL: server.URL}, nil)
	_, err := client.Scrape(context.Background(), "https://lumen.example/lamp")

	assert.ErrorIs(t, err, domain.ErrScrapeFailure)
	assert.Contains(t, err.Error(), "robots.txt")
}

func TestFirecrawlClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success": true, "data": {"markdown": "ok"}}`))
	}))
	defer server.Close()

	client := NewFirecrawlClient(FirecrawlConfig{APIKey: "fc-key", BaseURL: server.URL}, nil)
	content, err := client.Scrape(context.Background(), "https://lumen.example/lamp")

	require.NoError(t, err)
	assert.Equal(t, "ok", content)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFirecrawlClient_PaymentRequiredIsFinal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewFirecrawlClient(FirecrawlConfig{APIKey: "fc-key", BaseURL: server.URL}, nil)
	_, err := client.Scrape(context.Background(), "https://lumen.example/lamp")

	assert.ErrorIs(t, err, domain.ErrScrapeFailure)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDirectFetcher_HTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	fetcher := NewDirectFetcher(DirectConfig{Timeout: 5 * time.Second}, nil)
	content, err := fetcher.Scrape(context.Background(), server.URL+"/lamp")

	require.NoError(t, err)
	assert.Contains(t, content, "# Focus Lamp | Lumen")
	assert.Contains(t, content, "Focus Lamp")
	assert.Contains(t, content, "**daylight**")
	assert.Contains(t, content, "Flicker free")
	assert.NotContains(t, content, "trackVisitor")
	assert.NotContains(t, content, "color: red")
	assert.NotContains(t, content, "Copyright Lumen")
	assert.NotContains(t, content, "Home")
}

func TestDirectFetcher_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("  just text  "))
	}))
	defer server.Close()

	content, err := NewDirectFetcher(DirectConfig{}, nil).Scrape(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "just text", content)
}

func TestDirectFetcher_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/image":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 0x50})
		}
	}))
	defer server.Close()

	fetcher := NewDirectFetcher(DirectConfig{}, nil)

	tests := []struct {
		name string
		url  string
	}{
		{"non-200 status", server.URL + "/missing"},
		{"binary content", server.URL + "/image"},
		{"unsupported scheme", "ftp://files.example/lamp"},
		{"malformed url", "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetcher.Scrape(context.Background(), tt.url)
			assert.ErrorIs(t, err, domain.ErrScrapeFailure)
		})
	}
}

func TestHTMLToMarkdown_FallsBackToBody(t *testing.T) {
	content, err := htmlToMarkdown(`<html><body><div><p>Only body text here</p></div></body></html>`, "example.com")

	require.NoError(t, err)
	assert.Equal(t, "Only body text here", content)
}

type stubScraper struct {
	content string
	err     error
	calls   int
}

func (s *stubScraper) Scrape(ctx context.Context, url string) (string, error) {
	s.calls++
	return s.content, s.err
}

func TestFallbackScraper(t *testing.T) {
	t.Run("uses primary when it succeeds", func(t *testing.T) {
		primary := &stubScraper{content: "primary content"}
		fallback := &stubScraper{content: "fallback content"}

		content, err := NewFallbackScraper(primary, fallback, nil).Scrape(context.Background(), "https://a.example")

		require.NoError(t, err)
		assert.Equal(t, "primary content", content)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("falls back on primary error", func(t *testing.T) {
		primary := &stubScraper{err: errors.New("quota exceeded")}
		fallback := &stubScraper{content: "fallback content"}

		content, err := NewFallbackScraper(primary, fallback, nil).Scrape(context.Background(), "https://a.example")

		require.NoError(t, err)
		assert.Equal(t, "fallback content", content)
	})

	t.Run("falls back on blank primary content", func(t *testing.T) {
		primary := &stubScraper{content: "  \n "}
		fallback := &stubScraper{content: "fallback content"}

		content, err := NewFallbackScraper(primary, fallback, nil).Scrape(context.Background(), "https://a.example")

		require.NoError(t, err)
		assert.Equal(t, "fallback content", content)
	})

	t.Run("reports both failures", func(t *testing.T) {
		primary := &stubScraper{err: errors.New("quota exceeded")}
		fallback := &stubScraper{err: errors.New("connection refused")}

		_, err := NewFallbackScraper(primary, fallback, nil).Scrape(context.Background(), "https://a.example")

		assert.ErrorIs(t, err, domain.ErrScrapeFailure)
		assert.Contains(t, err.Error(), "quota exceeded")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("does not fall back once the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		primary := &stubScraper{err: context.Canceled}
		fallback := &stubScraper{content: "fallback content"}

		_, err := NewFallbackScraper(primary, fallback, nil).Scrape(ctx, "https://a.example")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, fallback.calls)
	})
}
