package sqlite

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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Owner.ID,
		entry.Title,
		entry.Description,
		entry.ImageURL,
		entry.ImageKey,
		entry.Latitude,
		entry.Longitude,
		toMillis(entry.CreatedAt),
		toMillis(entry.UpdatedAt),
	)
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
		WHERE e.id = ? AND e.user_id = ?
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, entryID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

// UpdateEntry overwrites the mutable fields of an owned entry
func (s *Storage) UpdateEntry(ctx context.Context, userID string, entry *models.Entry) error {
	query := `
		UPDATE entries
		SET title = ?, description = ?, latitude = ?, longitude = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		entry.Title,
		entry.Description,
		entry.Latitude,
		entry.Longitude,
		toMillis(entry.UpdatedAt),
		entry.ID,
		userID,
	)
	if err != nil {
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + entryColumns + `
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.id = ? AND e.user_id = ?
	`

	entry, err := scanEntry(tx.QueryRowContext(ctx, query, entryID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND user_id = ?`, entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, storage.ErrEntryNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}

	return entry, nil
}

// ListEntries returns one page of the owner's entries, newest first
func (s *Storage) ListEntries(ctx context.Context, userID string, page models.Page) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.user_id = ?
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT ? OFFSET ?
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
		WHERE e.user_id = ? AND e.created_at BETWEEN ? AND ?
		ORDER BY e.created_at DESC, e.id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, ceilMillis(r.Start), toMillis(r.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries in range: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountEntries returns the number of entries owned by userID
func (s *Storage) CountEntries(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	entry := &models.Entry{}
	var createdAt, updatedAt int64

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
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.CreatedAt = fromMillis(createdAt)
	entry.UpdatedAt = fromMillis(updatedAt)

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
