package storage

import (
	"context"
	"io"
)

// Storage persists uploaded hotel media. Paths are relative and slash
// separated; the path under which an image is saved becomes part of its
// public URL.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
