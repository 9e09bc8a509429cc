package internal

import (
	"context"
	"io"
)

// Repository is durable storage for fetch artifacts and the merged index.
// Write must publish atomically: a reader never observes a partially
// written object, only absence or the complete content.
type Repository interface {
	Write(ctx context.Context, key string, reader io.Reader) error
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys starting with prefix, sorted lexicographically.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether key is present and non-empty. An empty object
	// is treated as absent so an interrupted run is retried.
	Exists(ctx context.Context, key string) (bool, error)
}
