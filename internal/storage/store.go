package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is the durable blob storage the document stage writes to. Keys are
// opaque to callers; ResolveURL turns a stored path into an externally
// fetchable reference.
type Store interface {
	Write(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
	ResolveURL(path string) string
}

// DiskStore persists blobs as files under a single directory and serves them
// through the /uploads/ HTTP mount.
type DiskStore struct {
	dir     string
	baseURL string
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore ensures dir exists and returns a store rooted at it.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory files are stored under.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Write(ctx context.Context, key string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, key)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", key, err)
	}

	return key, nil
}

func (s *DiskStore) Delete(ctx context.Context, path string) error {
	if err := os.Remove(filepath.Join(s.dir, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", path, err)
	}

	return nil
}

func (s *DiskStore) ResolveURL(path string) string {
	return s.baseURL + "/uploads/" + path
}
