// Package metadata is the terminal client's local key-value table. Keys are
// dotted names; everything under one prefix belongs to one owner, so the
// saved session is the "session." namespace.
package metadata

import (
	"context"
)

// Repository reads and writes raw values by key. Get reports a missing key
// with common.ErrorNotFound. An empty prefix matches every key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)
	Purge(ctx context.Context, prefix string) (int64, error)
}
