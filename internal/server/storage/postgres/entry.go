package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/server/storage"
)

const entryColumns = `
	e.id, e.user_id, u.name, u.email,
	e.title, e.description, e.image_url, e.image_key,
	e.latitude, e.longitude, e.created_at, e.updated_at
`

// CreateEntry inserts a new entry
func (s *Storage) CreateEntry(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (
			id, user_id, title, description, image_url, image_key,
			latitude, longitude, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.Owner.ID, entry.Title, entry.Description, entry.ImageURL, entry.ImageKey,
		entry.Latitude, entry.Longitude, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// GetEntry retrieves an entry owned by userID
func (s *Storage) GetEntry(ctx context.Context, userID, entryID string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.id = $1 AND e.user_id = $2
	`
	return getEntry(s.db.QueryRowContext(ctx, query, entryID, userID))
}

// UpdateEntry overwrites the mutable fields of an owned entry
func (s *Storage) UpdateEntry(ctx context.Context, userID string, entry *models.Entry) error {
	query := `
		UPDATE entries
		SET title = $1, description = $2, latitude = $3, longitude = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		entry.Title, entry.Description, entry.Latitude, entry.Longitude, entry.UpdatedAt, entry.ID, userID)
	if err != nil {
		if pgCode(err) == invalidTextRepresentation {
			return storage.ErrEntryNotFound
		}
		return fmt.Errorf("failed to update entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrEntryNotFound
	}

	return nil
}

// DeleteEntry removes an owned entry and returns what was deleted
func (s *Storage) DeleteEntry(ctx context.Context, userID, entryID string) (*models.Entry, error) {
	// RETURNING не умеет JOIN, владельца дочитываем в CTE
	query := `
		WITH deleted AS (
			DELETE FROM entries WHERE id = $1 AND user_id = $2 RETURNING *
		)
		SELECT ` + entryColumns + `
		FROM deleted e
		JOIN users u ON u.id = e.user_id
	`
	return getEntry(s.db.QueryRowContext(ctx, query, entryID, userID))
}

// ListEntries returns one page of the owner's entries, newest first
func (s *Storage) ListEntries(ctx context.Context, userID string, page models.Page) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListEntriesInRange returns the owner's entries created within r, newest first
func (s *Storage) ListEntriesInRange(ctx context.Context, userID string, r models.DateRange) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.user_id = $1 AND e.created_at BETWEEN $2 AND $3
		ORDER BY e.created_at DESC, e.id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries in range: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountEntries returns the number of entries owned by userID
func (s *Storage) CountEntries(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getEntry(row *sql.Row) (*models.Entry, error) {
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgCode(err) == invalidTextRepresentation {
			return nil, storage.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	entry := &models.Entry{}
	err := row.Scan(
		&entry.ID,
		&entry.Owner.ID,
		&entry.Owner.Name,
		&entry.Owner.Email,
		&entry.Title,
		&entry.Description,
		&entry.ImageURL,
		&entry.ImageKey,
		&entry.Latitude,
		&entry.Longitude,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	return entry, nil
}

func scanEntries(rows *sql.Rows) ([]*models.Entry, error) {
	entries := make([]*models.Entry, 0)

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
