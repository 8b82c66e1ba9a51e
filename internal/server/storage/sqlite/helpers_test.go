package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/geojournal/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) *models.User {
	userID := uuid.New().String()
	now := time.Now().UTC()
	user := &models.User{
		ID:           userID,
		Name:         "user " + userID[:8],
		Email:        "user_" + userID[:8] + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	return user
}

func createTestEntry(t *testing.T, ctx context.Context, s *Storage, owner *models.User, createdAt time.Time) *models.Entry {
	entry := &models.Entry{
		ID:          uuid.New().String(),
		Owner:       owner.Owner(),
		Title:       "entry at " + createdAt.Format(time.RFC3339),
		Description: "description",
		ImageURL:    "http://localhost:8080/uploads/" + uuid.NewString() + ".jpg",
		ImageKey:    uuid.NewString() + ".jpg",
		Latitude:    52.52,
		Longitude:   13.405,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	require.NoError(t, s.CreateEntry(ctx, entry))
	return entry
}
