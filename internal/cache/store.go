package cache

import (
	"context"
	"time"
)

// Counter is a fixed-window counter shared by every server process. The
// rate limiter keys it by client and route.
type Counter interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Store is the shared Redis keyspace: rate limit windows plus the handshake
// identity cache. Get reports a missing key as (nil, false, nil).
type Store interface {
	Counter
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
