package transport

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultUserAgent is sent by page fetches that have no configured agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// APIUserAgent identifies API calls made by this service
const APIUserAgent = "DesireHunter/1.0"

// ClientConfig defines the setup for an outbound HTTP client
type ClientConfig struct {
	Timeout      time.Duration
	MaxRedirects int
}

// NewHTTPClient creates an http.Client with a timeout and redirect cap.
// A negative MaxRedirects disables redirects.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &http.Client{Timeout: cfg.Timeout}

	switch {
	case cfg.MaxRedirects < 0:
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	case cfg.MaxRedirects > 0:
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		}
	}

	return c
}
