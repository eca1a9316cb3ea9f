// Package objectstore stores opaque ciphertext blobs and small JSON sidecars
// at deterministic keys, with streaming upload/download support.
package objectstore

import (
	"context"
	"io"
)

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
}

// Store puts and retrieves opaque blobs and small JSON sidecars, keyed by
// the deterministic templates in internal/object.
type Store interface {
	// PutStream writes content from src to key, using chunked transfer
	// rather than buffering the whole object in memory.
	PutStream(ctx context.Context, key, contentType string, src io.Reader, size int64) error

	// PutSmall writes a small in-memory payload (sidecar JSON) to key.
	PutSmall(ctx context.Context, key, contentType string, content []byte) error

	// GetStream opens key for streaming read. The caller must close the
	// returned ReadCloser.
	GetStream(ctx context.Context, key string) (io.ReadCloser, error)

	// GetBytes reads the full content of key into memory; intended for
	// small objects such as sidecars.
	GetBytes(ctx context.Context, key string) ([]byte, error)

	// List enumerates objects under prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes key. Deleting a non-existent key is not an error.
	Delete(ctx context.Context, key string) error
}
