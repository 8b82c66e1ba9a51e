package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/geojournal/pkg/api"
)

func writeData(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(api.Response{Success: true, Data: data}))
}

func writeError(t *testing.T, w http.ResponseWriter, status int, resp api.ErrorResponse) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:5000/")

	assert.Equal(t, "http://localhost:5000", client.baseURL)
	require.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ann", req.Name)
		assert.Equal(t, "ann@example.com", req.Email)

		writeData(t, w, http.StatusCreated, api.AuthResponse{
			User:  api.User{ID: "user-1", Name: "Ann", Email: "ann@example.com"},
			Token: "token-1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Name:     "Ann",
		Email:    "ann@example.com",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-1", resp.Token)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestClient_LoginError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, http.StatusUnauthorized, api.ErrorResponse{
			Code:    "UNAUTHENTICATED",
			Message: "invalid email or password",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), api.LoginRequest{Email: "a@b.com", Password: "x"})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsExpired(err))
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestClient_ExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		writeError(t, w, http.StatusUnauthorized, api.ErrorResponse{
			Code:    "EXPIRED_TOKEN",
			Message: "Not authorized, token expired",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("stale")
	_, err := client.Profile(context.Background())

	require.Error(t, err)
	assert.True(t, IsExpired(err))
}

func TestClient_ValidationFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
			Errors:  []api.FieldError{{Field: "title", Message: "Title is required"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.UpdateEntry(context.Background(), "id-1", api.UpdateEntryRequest{})

	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Len(t, apiErr.Fields, 1)
	assert.Contains(t, err.Error(), "title: Title is required")
}

func TestClient_NonEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.DeleteEntry(context.Background(), "id-1")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestClient_CreateEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/entries", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Lake", r.FormValue("title"))
		assert.Equal(t, "46.5", r.FormValue("latitude"))
		assert.Equal(t, "-120.25", r.FormValue("longitude"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "lake.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))

		writeData(t, w, http.StatusCreated, api.EntryResponse{Entry: api.Entry{ID: "entry-1", Title: "Lake"}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("token-1")
	entry, err := client.CreateEntry(context.Background(), NewEntry{
		Title:       "Lake",
		Description: "Blue water",
		Latitude:    "46.5",
		Longitude:   "-120.25",
		Filename:    "lake.png",
		Image:       strings.NewReader("png-bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, "entry-1", entry.ID)
}

func TestClient_ListEntries(t *testing.T) {
	tests := []struct {
		name      string
		opts      ListOptions
		wantQuery string
	}{
		{name: "defaults", opts: ListOptions{}, wantQuery: ""},
		{name: "page and limit", opts: ListOptions{Page: 2, Limit: 5}, wantQuery: "limit=5&page=2"},
		{
			name:      "date range",
			opts:      ListOptions{StartDate: "2024-01-01", EndDate: "2024-01-31"},
			wantQuery: "endDate=2024-01-31&startDate=2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/entries", r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				writeData(t, w, http.StatusOK, api.EntryList{
					Entries:    []api.Entry{{ID: "entry-1"}},
					Pagination: api.Pagination{CurrentPage: 1, TotalPages: 1, TotalEntries: 1, EntriesPerPage: 20},
				})
			}))
			defer server.Close()

			list, err := NewClient(server.URL).ListEntries(context.Background(), tt.opts)
			require.NoError(t, err)
			require.Len(t, list.Entries, 1)
			assert.Equal(t, int64(1), list.Pagination.TotalEntries)
		})
	}
}

func TestClient_GetUpdateDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/entries/entry-1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeData(t, w, http.StatusOK, api.EntryResponse{Entry: api.Entry{ID: "entry-1", Title: "Old"}})
		case http.MethodPut:
			var req api.UpdateEntryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, json.Number("10.5"), req.Latitude)
			writeData(t, w, http.StatusOK, api.EntryResponse{Entry: api.Entry{ID: "entry-1", Title: req.Title}})
		case http.MethodDelete:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"message":"Entry deleted successfully"}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	entry, err := client.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	assert.Equal(t, "Old", entry.Title)

	entry, err = client.UpdateEntry(ctx, "entry-1", api.UpdateEntryRequest{
		Title:     "New",
		Latitude:  "10.5",
		Longitude: "20",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", entry.Title)

	require.NoError(t, client.DeleteEntry(ctx, "entry-1"))
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.HealthResponse{Success: true, Version: "1.0.0"})
	}))
	defer server.Close()

	health, err := NewClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Success)
	assert.Equal(t, "1.0.0", health.Version)
}
