package gamestate

import (
	"context"
)

// PrimitiveStorage is the key-value store the sync state is persisted to.
// The production implementation is Redis; tests run against miniredis.
type PrimitiveStorage[K comparable] interface {
	GetUInt64(ctx context.Context, key K) (uint64, error)
	GetBytes(ctx context.Context, key K) ([]byte, error)
	Set(ctx context.Context, key K, value any) error
	// Incr atomically advances the counter at key and returns the new value.
	// A key with no value yet starts the counter at 1.
	Incr(ctx context.Context, key K) (uint64, error)
	Delete(ctx context.Context, key K) error
	Keys(ctx context.Context) ([]K, error)
	StartTransaction(ctx context.Context) (Transaction[K], error)
	EndTransaction(ctx context.Context) error
	Close(ctx context.Context) error
}

type Transaction[K comparable] interface {
	PrimitiveStorage[K]
}
