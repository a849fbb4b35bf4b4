// Package kv is the SQLite-backed key/value table behind the credential
// store. Values are opaque bytes; encoding is the caller's business.
package kv

import "context"

// Repository is a flat key/value table. Get returns (nil, nil) for a key
// that was never written.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
