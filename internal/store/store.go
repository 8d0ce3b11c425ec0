// Package store provides the flat key-value persistence the storefront keeps
// its session and cart documents in. Values are opaque JSON documents and are
// always replaced as a whole.
package store

import (
	"context"
	"errors"
)

type Store interface {
	// Get returns the stored document, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
