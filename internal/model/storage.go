package model

import "context"

// KeyValueStore is an opaque string store used to persist task collections.
// Get reports ok=false for a missing key; that is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
