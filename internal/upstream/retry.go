package upstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"legal-backend/internal/shared/telemetry"
	"legal-backend/internal/shared/util"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base  Client
	delay time.Duration
}

// WithRetry wraps base so each call is retried once after a transient failure.
func WithRetry(base Client) Client {
	if base == nil {
		return nil
	}
	return retryingClient{base: base, delay: retryBaseDelay}
}

func (r retryingClient) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	return retryOnce(ctx, r.delay, "ingest", func() (IngestResult, error) {
		return r.base.Ingest(ctx, input)
	})
}

func (r retryingClient) Risk(ctx context.Context, docID string) (Payload, error) {
	return retryOnce(ctx, r.delay, "risk", func() (Payload, error) {
		return r.base.Risk(ctx, docID)
	})
}

func (r retryingClient) Summarise(ctx context.Context, input SummariseInput) (Payload, error) {
	return retryOnce(ctx, r.delay, "summarise", func() (Payload, error) {
		return r.base.Summarise(ctx, input)
	})
}

func (r retryingClient) Simplify(ctx context.Context, clause string) (string, error) {
	return retryOnce(ctx, r.delay, "simplify", func() (string, error) {
		return r.base.Simplify(ctx, clause)
	})
}

func (r retryingClient) Query(ctx context.Context, docID, question string) (Payload, error) {
	return retryOnce(ctx, r.delay, "query", func() (Payload, error) {
		return r.base.Query(ctx, docID, question)
	})
}

func retryOnce[T any](ctx context.Context, delay time.Duration, op string, call func() (T, error)) (T, error) {
	resp, err := call()
	if err == nil || !shouldRetry(err) {
		return resp, err
	}

	telemetry.Warn("upstream.retry", map[string]any{
		"op":      op,
		"attempt": 1,
		"error":   util.SanitizeError(err),
	})
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	return call()
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == http.StatusTooManyRequests || statusErr.Status >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof")
}
