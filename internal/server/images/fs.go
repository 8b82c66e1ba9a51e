package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// FSStore keeps images on the local filesystem and serves them over HTTP.
type FSStore struct {
	logger    *slog.Logger
	basedir   string
	publicURL string
}

// NewFSStore creates basedir if needed. publicURL may be empty, in which case
// URLs are built from the request origin plus "/uploads".
func NewFSStore(logger *slog.Logger, basedir, publicURL string) (*FSStore, error) {
	if err := os.MkdirAll(basedir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	return &FSStore{
		logger:    logger,
		basedir:   basedir,
		publicURL: publicURL,
	}, nil
}

func (s *FSStore) filename(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basedir, filepath.FromSlash(cleaned)), nil
}

// Put пишет во временный файл и атомарно переименовывает
func (s *FSStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}

	s.logger.DebugContext(ctx, "image stored",
		slog.String("key", key),
		slog.String("content_type", contentType),
		slog.Int("size", len(data)))

	return nil
}

// Delete removes the file for key.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}

	s.logger.DebugContext(ctx, "image deleted", slog.String("key", key))
	return nil
}

// URL returns the public URL of key.
func (s *FSStore) URL(origin, key string) string {
	if s.publicURL != "" {
		return joinURL(s.publicURL, key)
	}
	return joinURL(origin+"/uploads", key)
}

// Handler serves stored images; mount it under "/uploads/" with the prefix stripped.
func (s *FSStore) Handler() http.Handler {
	return http.FileServer(noListing{http.Dir(s.basedir)})
}

// noListing hides directory indexes from the file server.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}

	return f, nil
}
