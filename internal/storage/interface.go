package storage

import (
	"context"
	"io"
)

// Storage is the object-store collaborator. Keys are human-readable,
// hierarchical strings; see BuildKey.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}
