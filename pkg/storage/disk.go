// Package storage abstracts where public files such as menu images live.
//
// Two drivers are available:
//   - "local": a directory on disk, served by the app under STORAGE_URL
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disks := storage.NewManager("local")
//	disks.Register("local", storage.NewLocalDisk("storage", "/storage"))
//	url := disks.URL("images/img1.jpg")
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when path does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Disk is implemented by every driver.
type Disk interface {
	// Put writes content to path, replacing any existing file.
	Put(ctx context.Context, path string, content []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	// URL returns the public URL for path.
	URL(path string) string
	// Delete removes path. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}
