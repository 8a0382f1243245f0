// Package storage keeps uploaded material files outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/daleel/daleel-backend/internal/config"
)

// ErrObjectNotFound is returned when a key has no stored object.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage is a flat key/value store for file contents.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the backend selected by cfg.StorageDriver.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageLocal, "":
		return NewLocalStorage(cfg.UploadDir)
	case config.StorageS3:
		return NewS3Storage(cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}
