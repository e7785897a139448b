package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/internal/ratelimit"
)

const rateLimitMessage = "Rate limit exceeded. Please try again later."

// RateLimit rejects requests over the limiter's per-IP budget with 429 and a
// Retry-After header. Limiter store failures let the request through.
func RateLimit(limiter *ratelimit.Limiter, m *metrics.LeadMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Check(r.Context(), ClientIP(r))
			if !d.Degraded {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Limit-d.Count, 0)))
			}
			if !d.Allowed {
				m.ObserveRateLimited()
				retry := d.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(int(retry/time.Second)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": rateLimitMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is RemoteAddr without a port. Forwarding headers are never read
// here; the router rewrites RemoteAddr from them only when proxy headers are
// trusted, otherwise any caller could pick its own rate limit bucket.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
