package cache

import (
	"context"
	"time"
)

// Cache is the read-API response cache. ErrMiss-style sentinel errors
// are avoided: Get reports presence explicitly.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
