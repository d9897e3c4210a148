// Package flags is the key-value flag store: small JSON values under fixed
// key names, kept in the local SQLite file next to the document collections.
package flags

import (
	"context"
)

// Repository is the raw byte-level store. Get returns (nil, nil) for an
// absent key; absence is the normal first-run state.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	// Size returns the number of bytes taken by keys and values.
	Size(ctx context.Context) (int64, error)
}
