package storage

import (
	"context"
	"io"
)

// BlobStorage stores vehicle images addressable by key and reachable
// over a URL. The local implementation keeps files on disk and serves
// them through the API server; a cloud bucket can replace it without
// touching callers.
type BlobStorage interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
