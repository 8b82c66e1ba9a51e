package storage

import "context"

// Storage is a complete backend: users plus entries over one database.
type Storage interface {
	UserStorage
	EntryStorage

	// Ping checks database connectivity
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool
	Close() error
}
