// Package storage keeps uploaded lecture audio on local disk or in a Google Cloud Storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/lecture-service/internal/config"
)

var (
	ErrObjectNotFound = errors.New("audio object not found")
	ErrInvalidKey     = errors.New("invalid audio object key")
)

// AudioStore persists audio uploads under generated keys
type AudioStore interface {
	// Save writes r under a fresh key derived from filename and returns the key
	Save(ctx context.Context, filename string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

const keyPrefix = "audio/"

// NewKey builds a unique object key that keeps the upload's extension
func NewKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return keyPrefix + uuid.NewString() + ext
}

// validateKey rejects keys that were not produced by NewKey
func validateKey(key string) error {
	if !strings.HasPrefix(key, keyPrefix) || path.Clean(key) != key || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// NewAudioStore builds the configured driver
func NewAudioStore(ctx context.Context, cfg config.StorageConfig) (AudioStore, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal:
		return NewLocalStore(cfg.LocalDir)
	case config.StorageDriverGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
