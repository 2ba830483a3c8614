// Package blobstore is the byte store behind the composed-runtime cache.
//
// Entries are small (a few hundred KiB at most) and immutable once written,
// so the interface is whole-object Get/Put rather than streaming handles.
package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store reads and writes named blobs. Names use '/' separators.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	// Put replaces name atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes name. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
