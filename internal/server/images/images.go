// Package images stores uploaded entry photos and turns storage keys into
// resolvable URLs. Nothing here transforms image content.
package images

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedImage is returned for payloads that are not a known image format
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrImageTooLarge is returned when the upload exceeds the configured limit
	ErrImageTooLarge = errors.New("image too large")

	// ErrInvalidKey is returned for keys that escape the storage root
	ErrInvalidKey = errors.New("invalid image key")
)

// Store persists image blobs under opaque keys.
type Store interface {
	// Put writes data under key
	Put(ctx context.Context, key, contentType string, data []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// URL returns the absolute URL for key; origin is the scheme://host of
	// the current request and is used when no public base URL is configured
	URL(origin, key string) string
}

const (
	prefixLength = 2
	prefixDepth  = 2
)

// NewKey creates a sharded key like "5f/56/5f56692f-....jpg".
func NewKey(ext string) string {
	id := uuid.New().String()
	compact := strings.ReplaceAll(id, "-", "")

	parts := make([]string, 0, prefixDepth+1)
	for i := 0; i < prefixDepth; i++ {
		parts = append(parts, compact[i*prefixLength:(i+1)*prefixLength])
	}
	parts = append(parts, id+ext)

	return path.Join(parts...)
}

// cleanKey rejects absolute keys and parent traversal.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
