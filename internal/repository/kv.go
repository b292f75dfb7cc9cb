package repository

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports an absent or expired key.
var ErrMiss = errors.New("kv: key not found")

// KV is the minimal key/value contract the session repository runs on.
// Production uses Redis; tests and Redis-less development use the in-memory
// implementation.
type KV interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
