package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(limiter *RateLimiter, rules map[string]RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDKey, "guest:test-guest")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: AnalysisGroup,
		Limiter:  limiter,
		Rules:    rules,
	}))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/api/v1/analyses/:id", ok)
	r.POST("/api/v1/documents/:id/risks", ok)
	r.POST("/api/v1/query", ok)
	return r
}

func TestRateLimitAnalysisTighterThanDefault(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := limitedRouter(NewRateLimiter(func() time.Time { return now }), DefaultRules(1, 2))

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a-1", nil))
		require.Equal(t, http.StatusOK, resp.Code, "read request %d", i+1)
	}

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/documents/d-1/risks", nil))
		require.Equal(t, http.StatusOK, resp.Code, "analysis request %d", i+1)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/query", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code, "query shares the analysis bucket")
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := limitedRouter(NewRateLimiter(func() time.Time { return now }), DefaultRules(1, 1))

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/query", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/query", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(second.Body).Decode(&payload))
	assert.Equal(t, "rate_limited", payload.Error.Code)
	assert.EqualValues(t, 1000, payload.Error.Details["retryAfterMs"])
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 2, Burst: 1}

	ok, _ := limiter.Allow("k", rule)
	require.True(t, ok)
	ok, wait := limiter.Allow("k", rule)
	require.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	now = now.Add(500 * time.Millisecond)
	ok, _ = limiter.Allow("k", rule)
	assert.True(t, ok)
}

func TestRateLimitIgnoresRotatingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := gin.New()
	r.Use(Identity(false), RateLimit(RateLimitConfig{
		Rules:   map[string]RateLimitRule{GroupDefault: {Rate: 0.001, Burst: 1}},
		Limiter: limiter,
	}))
	r.GET("/api/v1/documents", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	allowed := 0
	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
		if i%2 == 0 {
			req.Header.Set("X-Guest-Id", strconv.Itoa(i))
		} else {
			req.Header.Set("X-User-Id", "user-"+strconv.Itoa(i))
		}
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, limiter.Len())

	other := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	other.RemoteAddr = "198.51.100.7:4000"
	other.Header.Set("X-Guest-Id", "0")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, other)
	assert.Equal(t, http.StatusOK, resp.Code, "another address has its own budget")
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	fast := RateLimitRule{Rate: 1, Burst: 5}
	slow := RateLimitRule{Rate: 0.001, Burst: 1}

	limiter.Allow("a", fast)
	limiter.Allow("slow", slow)
	require.Equal(t, 2, limiter.Len())

	now = now.Add(11 * time.Minute)
	limiter.Allow("c", fast)
	assert.NotContains(t, limiter.buckets, "a")
	assert.Contains(t, limiter.buckets, "slow", "a bucket still refilling is kept")
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(19 * time.Minute)
	limiter.Allow("d", fast)
	assert.Equal(t, 1, limiter.Len())
	assert.Contains(t, limiter.buckets, "d")
}
