package mystore

import (
	"context"
)

// Store is a typed key-value store with a bounded entry lifetime.
// Delete of an absent key is a no-op: transient flow secrets are cleared
// unconditionally and clearing twice must not fail.
//
//go:generate mockgen -source=api.go -package mystore -destination store_mock.go Store
type Store[T any] interface {
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	Delete(c context.Context, uid string) error
}
