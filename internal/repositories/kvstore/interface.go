// Package kvstore implements the persistence primitive for CoinKeeper:
// an async get/set/delete store over string keys and JSON-encoded values,
// backed by a single sqlite table.
package kvstore

import "context"

// Store is the sole persistence primitive. Get returns (nil, nil) when the
// key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
