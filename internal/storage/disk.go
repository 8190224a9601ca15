package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const publicPrefix = "images"

// DiskStore stores images in a local directory served statically under
// /images/*.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a disk store rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the image under a unique name and returns its public path.
func (s *DiskStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if !AllowedType(contentType) {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	name := fmt.Sprintf("%s-%s", uuid.New().String(), sanitizeFilename(filename))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path.Join(publicPrefix, name), nil
}

// Remove deletes the stored file behind a public path.
func (s *DiskStore) Remove(ctx context.Context, publicPath string) error {
	name := strings.TrimPrefix(publicPath, publicPrefix+"/")
	name = filepath.Base(name)
	if name == "" || name == "." {
		return fmt.Errorf("invalid image path %q", publicPath)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// sanitizeFilename strips path separators and whitespace from client-supplied
// names so they are safe as a filename suffix.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "image"
	}
	return name
}
