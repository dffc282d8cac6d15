package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/visa-leads/internal/entity"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer secret", http.StatusOK},
		{"lowercase scheme", "bearer secret", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := BearerAuth("secret")(okHandler(&called))

			req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, tc.want == http.StatusOK, called)

			if tc.want == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "Authentication required", body["error"])
			}
		})
	}
}

func TestBearerAuthEmptyConfiguredTokenRejectsAll(t *testing.T) {
	called := false
	h := BearerAuth("")(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ctx := context.Background()
	assert.True(t, rl.Allow(ctx, "1.1.1.1"))
	assert.True(t, rl.Allow(ctx, "1.1.1.1"))
	assert.False(t, rl.Allow(ctx, "1.1.1.1"))
	assert.True(t, rl.Allow(ctx, "2.2.2.2"), "keys are independent")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow(ctx, "1.1.1.1"))
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow(context.Background(), "a")
	now = now.Add(11 * time.Minute)
	rl.Allow(context.Background(), "b")

	_, exists := rl.visitors["a"]
	assert.False(t, exists)
}

func TestRateLimitMiddleware(t *testing.T) {
	called := false
	h := RateLimit(NewRateLimiter(1, time.Minute))(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	called = false
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, called)
}

func TestRedisRateLimiterWithoutClientAllows(t *testing.T) {
	l := NewRedisRateLimiter(nil, 1, time.Minute, zerolog.Nop())
	assert.True(t, l.Allow(context.Background(), "x"))
	assert.True(t, l.Allow(context.Background(), "x"))
}

func TestClientIPIgnoresForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.10:5555"
	assert.Equal(t, "192.168.1.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "192.168.1.10", ClientIP(req))
}

func TestRateLimitMiddlewareSpoofedForwardedFor(t *testing.T) {
	called := false
	h := RateLimit(NewRateLimiter(2, time.Minute))(okHandler(&called))

	accepted := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			accepted++
		}
	}
	assert.Equal(t, 2, accepted)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Lead not found"}`))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/leads/x", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, float64(404), line["status"])
	assert.Equal(t, "/api/leads/x", line["path"])
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/leads/{id}", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/leads/{id}", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/leads/abc", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/leads/{id}", "200"))

	assert.Equal(t, before+1, after)
}

func TestLeadMetrics(t *testing.T) {
	m := NewLeadMetrics()

	before := testutil.ToFloat64(leadStatusChanges.WithLabelValues("REACHED_OUT"))
	m.LeadStatusChanged(entity.LeadStatusReachedOut)
	assert.Equal(t, before+1, testutil.ToFloat64(leadStatusChanges.WithLabelValues("REACHED_OUT")))

	before = testutil.ToFloat64(leadsSubmitted)
	m.LeadSubmitted()
	assert.Equal(t, before+1, testutil.ToFloat64(leadsSubmitted))
}
