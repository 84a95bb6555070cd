package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"legal-backend/internal/shared/cache"
	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/telemetry"
	"legal-backend/internal/shared/util"
)

// CachingClient keeps analysis answers per document so repeated views do not
// hit the service again. Ingest and Simplify pass straight through.
type CachingClient struct {
	base  Client
	cache cache.Cache
	ttl   time.Duration
}

// WithCache wraps base with a read-through cache. A nil cache disables it.
func WithCache(base Client, c cache.Cache, ttl time.Duration) Client {
	if c == nil {
		return base
	}
	return &CachingClient{base: base, cache: c, ttl: ttl}
}

func (c *CachingClient) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	return c.base.Ingest(ctx, input)
}

func (c *CachingClient) Simplify(ctx context.Context, clause string) (string, error) {
	return c.base.Simplify(ctx, clause)
}

func (c *CachingClient) Risk(ctx context.Context, docID string) (Payload, error) {
	return c.cached(ctx, "risk:"+docID, func() (Payload, error) {
		return c.base.Risk(ctx, docID)
	})
}

func (c *CachingClient) Summarise(ctx context.Context, input SummariseInput) (Payload, error) {
	if input.DocID == "" {
		return c.base.Summarise(ctx, input)
	}
	return c.cached(ctx, "summary:"+input.DocID, func() (Payload, error) {
		return c.base.Summarise(ctx, input)
	})
}

func (c *CachingClient) Query(ctx context.Context, docID, question string) (Payload, error) {
	sum := sha256.Sum256([]byte(question))
	key := "query:" + docID + ":" + hex.EncodeToString(sum[:8])
	return c.cached(ctx, key, func() (Payload, error) {
		return c.base.Query(ctx, docID, question)
	})
}

func (c *CachingClient) cached(ctx context.Context, key string, load func() (Payload, error)) (Payload, error) {
	if !RefreshFromContext(ctx) {
		if p, ok := c.lookup(ctx, key); ok {
			metrics.CacheHit()
			return p, nil
		}
		metrics.CacheMiss()
	}

	p, err := load()
	if err != nil {
		return Payload{}, err
	}
	if p.Kind == KindEmpty || p.Kind == KindOther {
		return p, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return p, nil
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		telemetry.Warn("upstream.cache_set_failed", map[string]any{"key": key, "error": util.SanitizeError(err)})
	}
	return p, nil
}

func (c *CachingClient) lookup(ctx context.Context, key string) (Payload, bool) {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			telemetry.Warn("upstream.cache_get_failed", map[string]any{"key": key, "error": util.SanitizeError(err)})
		}
		return Payload{}, false
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, false
	}
	return p, true
}
