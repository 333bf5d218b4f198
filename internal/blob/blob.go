// Package blob stores uploaded file contents under opaque keys.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is a key-value byte store. Keys are generated by the caller and
// must be unique.
type Store interface {
	// Save writes r under key. size is -1 when unknown.
	Save(ctx context.Context, key string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
