package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/internal/ratelimit"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

func limitedHandler(t *testing.T, store ratelimit.Store, limit int) http.Handler {
	t.Helper()
	limiter, err := ratelimit.New(store, limit, time.Minute, logging.Discard())
	require.NoError(t, err)
	m := metrics.NewLeadMetrics(prometheus.NewRegistry())
	return RateLimit(limiter, m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	h := limitedHandler(t, ratelimit.NewMemoryStore(), 2)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/submit-lead", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/submit-lead", nil)
	req.RemoteAddr = "203.0.113.7:6001"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Rate limit exceeded. Please try again later.", body["error"])

	other := httptest.NewRequest(http.MethodPost, "/api/submit-lead", nil)
	other.RemoteAddr = "198.51.100.1:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("dial tcp: connection refused")
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := limitedHandler(t, brokenStore{}, 1)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/submit-lead", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.RemoteAddr = "192.0.2.10"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-Ip", "198.51.100.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.10")
	assert.Equal(t, "192.0.2.10", ClientIP(req), "forwarding headers are ignored")
}
