package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"legal-backend/internal/shared/server/respond"
)

// Rate limit groups. Analysis routes call the remote service and get the
// tighter budget.
const (
	GroupDefault  = "DEFAULT"
	GroupAnalysis = "ANALYSIS"
)

// RateLimitRule is a token bucket: Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// RateLimitConfig selects a rule per request via GroupFor.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// idleSweepEvery bounds how often Allow scans for idle buckets.
const idleSweepEvery = time.Minute

// RateLimiter keeps one token bucket per client address and group. Buckets
// idle for IdleTTL, and at least long enough to refill, are dropped.
type RateLimiter struct {
	IdleTTL time.Duration

	mu        sync.Mutex
	buckets   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	// refill is how long an idle bucket takes to be full again.
	refill time.Duration
}

// NewRateLimiter builds a limiter. A nil now uses time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		IdleTTL: 10 * time.Minute,
		buckets: make(map[string]*limiterEntry),
		now:     now,
	}
}

// RateLimit rejects requests over budget with 429 and Retry-After.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = GroupDefault
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		// Identity headers are chosen by the caller, so they cannot key the budget.
		key := strings.TrimSpace(c.ClientIP()) + "|" + group
		allowed, retryAfter := cfg.Limiter.Allow(key, rule)
		if allowed {
			c.Next()
			return
		}
		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
			"retryAfterMs": retryAfterMs,
		})
	}
}

// Allow takes a token for key, or reports how long until one is available.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	l.sweep(now)
	entry, ok := l.buckets[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst),
			refill:  time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second)),
		}
		l.buckets[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len reports how many buckets are held.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops buckets that would be full again if recreated. l.mu is held.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleSweepEvery {
		return
	}
	l.lastSweep = now
	for key, entry := range l.buckets {
		idle := now.Sub(entry.lastSeen)
		if idle >= l.IdleTTL && idle >= entry.refill {
			delete(l.buckets, key)
		}
	}
}

// AnalysisGroup puts routes that reach the analysis service in GroupAnalysis.
func AnalysisGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return GroupDefault
	}
	switch c.FullPath() {
	case "/api/v1/documents/:id/risks",
		"/api/v1/documents/:id/summary",
		"/api/v1/documents/:id/insights",
		"/api/v1/simplify",
		"/api/v1/query":
		return GroupAnalysis
	}
	return GroupDefault
}

// DefaultRules derives the per-group rules from the analysis budget. Other
// routes get ten times that.
func DefaultRules(rps float64, burst int) map[string]RateLimitRule {
	return map[string]RateLimitRule{
		GroupAnalysis: {Rate: rps, Burst: burst},
		GroupDefault:  {Rate: rps * 10, Burst: burst * 10},
	}
}
