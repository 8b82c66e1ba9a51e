// Package events publishes entry lifecycle notifications for downstream
// consumers. Publishing is best-effort and never blocks a journal operation
// from succeeding.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names the lifecycle transition.
type Type string

const (
	EntryCreated Type = "entry.created"
	EntryUpdated Type = "entry.updated"
	EntryDeleted Type = "entry.deleted"
)

// Event is the message body published for every transition.
type Event struct {
	OccurredAt time.Time `json:"occurred_at"`
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	EntryID    string    `json:"entry_id"`
	OwnerID    string    `json:"owner_id"`
	ImageURL   string    `json:"image_url,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
}

// NewEvent fills ID and timestamp.
func NewEvent(t Type, entryID, ownerID string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		EntryID:    entryID,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
