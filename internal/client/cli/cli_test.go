package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/geojournal/internal/client/api"
	"github.com/iudanet/geojournal/internal/client/auth"
	"github.com/iudanet/geojournal/internal/client/iocli"
	"github.com/iudanet/geojournal/internal/client/storage"
	"github.com/iudanet/geojournal/internal/client/storage/boltdb"
	"github.com/iudanet/geojournal/internal/client/unlock"
	pkgapi "github.com/iudanet/geojournal/pkg/api"
)

type harness struct {
	cli     *Cli
	store   *boltdb.Storage
	mockIO  *iocli.IOMock
	mu      sync.Mutex
	out     strings.Builder
	inputs  []string
	secrets []string
}

func (h *harness) output() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.out.String()
}

func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{store: store}
	h.mockIO = &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			h.mu.Lock()
			defer h.mu.Unlock()
			fmt.Fprintln(&h.out, a...)
		},
		PrintfFunc: func(format string, a ...any) {
			h.mu.Lock()
			defer h.mu.Unlock()
			fmt.Fprintf(&h.out, format, a...)
		},
		WriteFunc: func(p []byte) (int, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.out.Write(p)
		},
		ReadInputFunc: func(prompt string) (string, error) {
			if len(h.inputs) == 0 {
				return "", fmt.Errorf("unexpected prompt %q", prompt)
			}
			v := h.inputs[0]
			h.inputs = h.inputs[1:]
			return v, nil
		},
		ConfirmFunc: func(prompt string) (bool, error) {
			if len(h.inputs) == 0 {
				return false, fmt.Errorf("unexpected confirmation %q", prompt)
			}
			v := h.inputs[0]
			h.inputs = h.inputs[1:]
			return iocli.IsYes(v), nil
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			if len(h.secrets) == 0 {
				return "", fmt.Errorf("unexpected password prompt %q", prompt)
			}
			v := h.secrets[0]
			h.secrets = h.secrets[1:]
			return v, nil
		},
	}

	client := api.NewClient(server.URL)
	h.cli = New(h.mockIO, client, auth.NewService(client, store), unlock.NewPIN(store, h.mockIO))
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.store.SaveSession(context.Background(), &storage.Session{
		Token:     "token-1",
		UserID:    "user-1",
		Name:      "Ann",
		Email:     "ann@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sampleEntry() pkgapi.Entry {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	return pkgapi.Entry{
		ID:          "entry-1",
		Title:       "Lake",
		Description: "Blue water",
		ImageURL:    "http://localhost/uploads/a.png",
		Latitude:    46.5,
		Longitude:   -120.25,
		CreatedAt:   created,
		UpdatedAt:   created,
		Owner:       pkgapi.Owner{ID: "user-1", Name: "Ann", Email: "ann@example.com"},
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	err := h.cli.Run(context.Background(), "sync", nil)
	assert.ErrorIs(t, err, ErrUsage)

	require.NoError(t, h.cli.Run(context.Background(), "help", nil))
	assert.Contains(t, h.output(), "GeoJournal Client")
}

func TestRegister(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		var req pkgapi.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusCreated, pkgapi.Response{Success: true, Data: pkgapi.AuthResponse{
			User:      pkgapi.User{ID: "user-1", Name: req.Name, Email: req.Email},
			Token:     "token-1",
			ExpiresAt: time.Now().Add(time.Hour),
		}})
	})
	h.inputs = []string{"Ann", "ann@example.com"}
	h.secrets = []string{"secret1", "secret1"}

	require.NoError(t, h.cli.Run(context.Background(), "register", nil))
	assert.Contains(t, h.output(), "Registration successful")

	session, err := h.store.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", session.Token)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be called")
	})
	h.inputs = []string{"Ann", "ann@example.com"}
	h.secrets = []string{"secret1", "secret2"}

	err := h.cli.Run(context.Background(), "register", nil)
	assert.EqualError(t, err, "passwords do not match")
}

func TestLoginLogoutStatus(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Data: pkgapi.AuthResponse{
			User:      pkgapi.User{ID: "user-1", Name: "Ann", Email: "ann@example.com"},
			Token:     "token-1",
			ExpiresAt: time.Now().Add(time.Hour),
		}})
	})
	ctx := context.Background()

	require.NoError(t, h.cli.Run(ctx, "status", nil))
	assert.Contains(t, h.output(), "Not authenticated")

	h.inputs = []string{"ann@example.com"}
	h.secrets = []string{"secret1"}
	require.NoError(t, h.cli.Run(ctx, "login", nil))

	require.NoError(t, h.cli.Run(ctx, "status", nil))
	assert.Contains(t, h.output(), "User: Ann <ann@example.com>")
	assert.Contains(t, h.output(), "Local lock: off")

	require.NoError(t, h.cli.Run(ctx, "logout", nil))
	_, err := h.store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestList(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2024-01-31", r.URL.Query().Get("endDate"))
		writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Data: pkgapi.EntryList{
			Entries:    []pkgapi.Entry{sampleEntry()},
			Pagination: pkgapi.Pagination{CurrentPage: 1, TotalPages: 1, TotalEntries: 1, EntriesPerPage: 20},
		}})
	})
	h.login(t)

	require.NoError(t, h.cli.Run(context.Background(), "list", []string{"-from", "2024-01-01", "-to", "2024-01-31"}))
	out := h.output()
	assert.Contains(t, out, "1. Lake")
	assert.Contains(t, out, "46.50000, -120.25000")
	assert.Contains(t, out, "Page 1 of 1, 1 entries total")
}

func TestList_HalfDateRange(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be called")
	})
	h.login(t)

	err := h.cli.Run(context.Background(), "list", []string{"-from", "2024-01-01"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestList_NotAuthenticated(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be called")
	})

	err := h.cli.Run(context.Background(), "list", nil)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestGet_ExpiredTokenClearsSession(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, pkgapi.ErrorResponse{Code: "EXPIRED_TOKEN", Message: "Not authorized, token expired"})
	})
	h.login(t)

	err := h.cli.Run(context.Background(), "get", []string{"entry-1"})
	assert.ErrorIs(t, err, auth.ErrSessionExpired)

	_, err = h.store.GetSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestGet_MissingID(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	h.login(t)

	err := h.cli.Run(context.Background(), "get", nil)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestAdd(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "lake.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("png-bytes"), 0o600))

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Lake", r.FormValue("title"))
		assert.Equal(t, "46.5", r.FormValue("latitude"))
		assert.Equal(t, "-120.25", r.FormValue("longitude"))
		_, header, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "lake.png", header.Filename)
		writeJSON(w, http.StatusCreated, pkgapi.Response{Success: true, Data: pkgapi.EntryResponse{Entry: sampleEntry()}})
	})
	h.login(t)
	h.inputs = []string{"46.5"}

	err := h.cli.Run(context.Background(), "add", []string{"-image", imagePath, "-title", "Lake", "-lon", "-120.25"})
	require.NoError(t, err)
	assert.Contains(t, h.output(), "Entry created")
	assert.Len(t, h.mockIO.ReadInputCalls(), 1)
}

func TestAdd_MissingImage(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	h.login(t)

	err := h.cli.Run(context.Background(), "add", []string{"-title", "Lake"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestUpdate_MergesCurrentFields(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/entries/entry-1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Data: pkgapi.EntryResponse{Entry: sampleEntry()}})
		case http.MethodPut:
			var req pkgapi.UpdateEntryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Sunset", req.Title)
			assert.Equal(t, "Blue water", req.Description)
			assert.Equal(t, json.Number("46.5"), req.Latitude)
			assert.Equal(t, json.Number("-120.25"), req.Longitude)
			e := sampleEntry()
			e.Title = req.Title
			writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Data: pkgapi.EntryResponse{Entry: e}})
		}
	})
	h.login(t)

	require.NoError(t, h.cli.Run(context.Background(), "update", []string{"entry-1", "-title", "Sunset"}))
	assert.Contains(t, h.output(), "Title:       Sunset")
}

func TestUpdate_NothingToChange(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	h.login(t)

	err := h.cli.Run(context.Background(), "update", []string{"entry-1"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestDelete(t *testing.T) {
	var deleted atomic.Bool
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Data: pkgapi.EntryResponse{Entry: sampleEntry()}})
		case http.MethodDelete:
			deleted.Store(true)
			writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Message: "Entry deleted successfully"})
		}
	})
	h.login(t)
	ctx := context.Background()

	h.inputs = []string{"no"}
	require.NoError(t, h.cli.Run(ctx, "delete", []string{"entry-1"}))
	assert.False(t, deleted.Load())
	assert.Contains(t, h.output(), "Deletion cancelled")

	require.NoError(t, h.cli.Run(ctx, "delete", []string{"-y", "entry-1"}))
	assert.True(t, deleted.Load())
	assert.Len(t, h.mockIO.ConfirmCalls(), 1, "-y skips the question")

	deleted.Store(false)
	h.inputs = []string{"Y"}
	require.NoError(t, h.cli.Run(ctx, "delete", []string{"entry-1"}))
	assert.True(t, deleted.Load())
}

func TestLock_GatesJournalCommands(t *testing.T) {
	var calls atomic.Int32
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Data: pkgapi.EntryResponse{Entry: sampleEntry()}})
	})
	h.login(t)
	ctx := context.Background()

	h.secrets = []string{"1234", "1234"}
	require.NoError(t, h.cli.Run(ctx, "lock", []string{"set"}))
	assert.Contains(t, h.output(), "Local lock enabled")

	h.secrets = []string{"0000", "1111", "2222"}
	err := h.cli.Run(ctx, "get", []string{"entry-1"})
	assert.ErrorIs(t, err, unlock.ErrLocked)
	assert.Zero(t, calls.Load())

	h.secrets = []string{"1234"}
	require.NoError(t, h.cli.Run(ctx, "get", []string{"entry-1"}))
	assert.Equal(t, int32(1), calls.Load())

	h.secrets = []string{"1234"}
	require.NoError(t, h.cli.Run(ctx, "lock", []string{"clear"}))
	assert.Contains(t, h.output(), "Local lock disabled")

	err = h.cli.Run(ctx, "lock", []string{"toggle"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestProfile_Update(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var req pkgapi.UpdateProfileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Name)
		assert.Nil(t, req.Password)
		writeJSON(w, http.StatusOK, pkgapi.Response{Success: true, Data: pkgapi.ProfileResponse{
			User: pkgapi.User{ID: "user-1", Name: *req.Name, Email: "ann@example.com"},
		}})
	})
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.cli.Run(ctx, "profile", []string{"-name", "Anna"}))

	session, err := h.store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Anna", session.Name)
}
