// Package storage persists uploaded post images. The disk store is the
// default and backs the static /images/* route; the S3 store is an optional
// bucket-backed alternative selected through configuration.
package storage

import (
	"context"
	"io"
)

// ImageStore saves uploaded images and removes stale ones. Save returns the
// public path or URL under which the image is served.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// AllowedType reports whether the uploaded content type is an accepted image
// format.
func AllowedType(contentType string) bool {
	return allowedTypes[contentType]
}
