package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFSStore(t *testing.T, publicURL string) (*FSStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFSStore(slog.New(slog.NewTextHandler(io.Discard, nil)), dir, publicURL)
	require.NoError(t, err)
	return s, dir
}

func TestFSStore_PutDelete(t *testing.T) {
	ctx := context.Background()
	s, dir := setupFSStore(t, "")

	data := pngBytes(t, 2, 2)
	key := NewKey(".png")

	require.NoError(t, s.Put(ctx, key, "image/png", data))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.ErrorIs(t, err, os.ErrNotExist)

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, key))

	assert.ErrorIs(t, s.Put(ctx, "../escape.png", "image/png", data), ErrInvalidKey)
}

func TestFSStore_URL(t *testing.T) {
	s, _ := setupFSStore(t, "")
	assert.Equal(t, "http://localhost:8080/uploads/ab/cd/x.jpg", s.URL("http://localhost:8080", "ab/cd/x.jpg"))

	public, _ := setupFSStore(t, "https://cdn.example.com/photos/")
	assert.Equal(t, "https://cdn.example.com/photos/ab/cd/x.jpg", public.URL("http://localhost:8080", "ab/cd/x.jpg"))
}

func TestFSStore_Handler(t *testing.T) {
	ctx := context.Background()
	s, _ := setupFSStore(t, "")

	data := pngBytes(t, 2, 2)
	key := NewKey(".png")
	require.NoError(t, s.Put(ctx, key, "image/png", data))

	handler := http.StripPrefix("/uploads/", s.Handler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+key, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data, w.Body.Bytes())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+filepath.Dir(key)+"/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "directory listing must be hidden")
}
