package transport

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// MaxAttempts is the number of tries made for a transient failure
const MaxAttempts = 3

const baseBackoff = 500 * time.Millisecond

// Backoff returns the wait before retrying after the given 1-based attempt:
// 500ms, 1s, 2s, ...
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return baseBackoff << (attempt - 1)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryableStatus reports whether a response status is worth retrying
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// NewLimiter builds a token bucket allowing perMinute requests per minute
// with a burst of the same size. perMinute <= 0 disables limiting.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}
