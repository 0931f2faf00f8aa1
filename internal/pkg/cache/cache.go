package cache

import (
	"context"
	"time"
)

// Cache is a lightweight read-through cache used for search responses.
// Implementations must treat a miss as (false, nil), not as an error.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Nop is a no-op Cache for deployments without Redis configured.
type Nop struct{}

func (Nop) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }

func (Nop) Set(ctx context.Context, key string, v any, ttl time.Duration) error { return nil }

func (Nop) Del(ctx context.Context, key string) error { return nil }
