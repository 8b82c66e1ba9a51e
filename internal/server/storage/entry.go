package storage

import (
	"context"

	"github.com/iudanet/geojournal/internal/models"
)

// EntryStorage defines interface for journal entry persistence.
// Every read and write is scoped by the owner's user ID.
type EntryStorage interface {
	// CreateEntry inserts a new entry
	CreateEntry(ctx context.Context, entry *models.Entry) error

	// GetEntry retrieves an entry owned by userID, with owner summary populated
	// Returns ErrEntryNotFound if entry doesn't exist or belongs to another user
	GetEntry(ctx context.Context, userID, entryID string) (*models.Entry, error)

	// UpdateEntry overwrites title, description, coordinates and updated_at
	// Returns ErrEntryNotFound under the same rule as GetEntry
	UpdateEntry(ctx context.Context, userID string, entry *models.Entry) error

	// DeleteEntry removes an entry owned by userID and returns it
	// Returns ErrEntryNotFound under the same rule as GetEntry
	DeleteEntry(ctx context.Context, userID, entryID string) (*models.Entry, error)

	// ListEntries returns one page of the owner's entries, newest first
	ListEntries(ctx context.Context, userID string, page models.Page) ([]*models.Entry, error)

	// ListEntriesInRange returns all owner's entries with created_at in [start, end], newest first
	ListEntriesInRange(ctx context.Context, userID string, r models.DateRange) ([]*models.Entry, error)

	// CountEntries returns the total number of entries owned by userID
	CountEntries(ctx context.Context, userID string) (int64, error)
}
