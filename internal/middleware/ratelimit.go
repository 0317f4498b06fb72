package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lectio/lectio/internal/cache"
)

// IPRateLimiter checks a per-IP token bucket.
type IPRateLimiter interface {
	CheckIPRateLimit(ctx context.Context, scope, ip string, ratePerSecond float64, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter IPRateLimiter
	Enabled bool
	RPS     float64 // Tokens refilled per second
	Burst   int
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Buckets are kept apart by scope.
func RateLimitIP(scope string, cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)

			result, err := cfg.Limiter.CheckIPRateLimit(r.Context(), scope, ip, cfg.RPS, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("IP rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", scope),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.Burst, result.Remaining, result.ResetAt)

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("scope", scope),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// retryAfterSeconds rounds up to at least one second.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusTooManyRequests)
	msg := fmt.Sprintf(`{"message":"Rate limit exceeded. Retry after %d seconds."}`, retryAfterSeconds(retryAfter))
	_, _ = w.Write([]byte(msg))
}

// getClientIP extracts the client IP from the request, without the port.
// Checks X-Forwarded-For and X-Real-IP headers for proxied requests.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return stripPort(ip)
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return stripPort(xri)
	}

	return stripPort(r.RemoteAddr)
}

// stripPort drops a trailing port so every connection from one host
// shares a bucket. Values without a port are returned as is.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
