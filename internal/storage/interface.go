package storage

import (
	"context"
	"io"
)

// Storage holds uploaded spreadsheets and weld photos.
// Download returns errors.ErrFileNotFound for unknown keys.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
