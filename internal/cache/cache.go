package cache

import "context"

// Store is a shared string-keyed byte store with no expiry of its own, the server-side
// stand-in for per-origin browser storage. Concurrent writers are last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
