package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is an exported constant or variable used by the authentication engine.
var ErrMiss = errors.New("cache miss")

// ErrUnavailable is an exported constant or variable used by the authentication engine.
var ErrUnavailable = errors.New("cache unavailable")

// Store is the key-value surface the engine needs: Redis semantics with
// string values and per-key TTL. Implementations must distinguish a miss
// ([ErrMiss]) from a backend failure (wrapped [ErrUnavailable]).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
