package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDialRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := DialRedis(ctx, "127.0.0.1:1", "", 0, "legal:")
	assert.Error(t, err)
}

func TestRedisKeyPrefix(t *testing.T) {
	r := NewRedis(nil, "legal:")
	assert.Equal(t, "legal:risk:doc-1", r.key("risk:doc-1"))
}
