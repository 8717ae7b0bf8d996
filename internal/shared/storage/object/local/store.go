package local

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobmatch-backend/internal/shared/storage/object"
)

// Store serves resume objects from a local directory. SignURL hands out
// file:// URLs relative to that directory, which only a fetcher with a file
// transport rooted at Dir can read.
type Store struct {
	baseDir string
}

// New creates a local store rooted at baseDir.
func New(baseDir string) *Store {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &Store{baseDir: baseDir}
}

// Dir is the directory file URLs resolve against.
func (s *Store) Dir() string { return s.baseDir }

// SignURL returns a file:///<objectID> URL for an object under Dir. The
// validity window is not enforced locally.
func (s *Store) SignURL(ctx context.Context, objectID string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_ = ttl

	clean := filepath.Clean(strings.TrimLeft(strings.TrimSpace(objectID), "/"))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", object.ErrInvalidKey
	}

	if _, err := os.Stat(filepath.Join(s.baseDir, clean)); err != nil {
		return "", fmt.Errorf("stat object: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: "/" + filepath.ToSlash(clean)}).String(), nil
}

var _ object.Signer = (*Store)(nil)
