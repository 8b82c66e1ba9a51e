package storage

import (
	"context"
	"time"
)

// SessionStorage хранит сессию текущего пользователя на устройстве
type SessionStorage interface {
	SaveSession(ctx context.Context, session *Session) error
	// GetSession returns ErrSessionNotFound when nothing is stored
	GetSession(ctx context.Context) (*Session, error)
	DeleteSession(ctx context.Context) error
}

// UnlockStorage хранит bcrypt хеш локального PIN
type UnlockStorage interface {
	SavePINHash(ctx context.Context, hash []byte) error
	// GetPINHash returns ErrPINNotSet when the lock is off
	GetPINHash(ctx context.Context) ([]byte, error)
	DeletePINHash(ctx context.Context) error
}

// Session is the locally stored login
type Session struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

// Expired reports whether the token lifetime has passed at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
