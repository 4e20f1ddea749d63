// Package storage stores uploaded files on the local filesystem or in an
// S3-compatible bucket.
//
//	disk, err := storage.Open(ctx)
//	err = disk.Put(ctx, "uploads/chair.png", file, "image/png")
//	src := disk.URL("uploads/chair.png")
package storage

import (
	"context"
	"io"
)

// Disk is implemented by every driver. Paths are slash separated and
// relative to the disk root.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. A missing file is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the address clients use to fetch path.
	URL(path string) string
}
