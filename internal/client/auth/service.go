// Package auth управляет сессией пользователя на устройстве поверх API клиента
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/geojournal/internal/client/api"
	"github.com/iudanet/geojournal/internal/client/storage"
	"github.com/iudanet/geojournal/internal/validation"
	pkgapi "github.com/iudanet/geojournal/pkg/api"
)

// ErrNotAuthenticated means there is no usable local session
var ErrNotAuthenticated = errors.New("not authenticated, run 'geojournal login' first")

// ErrSessionExpired means the local or server side token lifetime has passed
var ErrSessionExpired = errors.New("session expired, run 'geojournal login' again")

// Service предоставляет функции авторизации
type Service struct {
	apiClient *api.Client
	sessions  storage.SessionStorage
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient *api.Client, sessions storage.SessionStorage) *Service {
	return &Service{
		apiClient: apiClient,
		sessions:  sessions,
		now:       time.Now,
	}
}

// Register регистрирует пользователя и сразу сохраняет сессию
func (s *Service) Register(ctx context.Context, name, email, password string) (*storage.Session, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return s.save(ctx, resp)
}

// Login выполняет аутентификацию и сохраняет сессию
func (s *Service) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{
		Email:    validation.NormalizeEmail(email),
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.save(ctx, resp)
}

func (s *Service) save(ctx context.Context, resp *pkgapi.AuthResponse) (*storage.Session, error) {
	session := &storage.Session{
		Token:     resp.Token,
		UserID:    resp.User.ID,
		Name:      resp.User.Name,
		Email:     resp.User.Email,
		ExpiresAt: resp.ExpiresAt,
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.apiClient.SetToken(session.Token)
	return session, nil
}

// Logout удаляет локальную сессию. Токены на сервере не отзываются.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.DeleteSession(ctx); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return ErrNotAuthenticated
		}
		return err
	}
	s.apiClient.SetToken("")
	return nil
}

// Session возвращает сохраненную сессию, даже просроченную
func (s *Service) Session(ctx context.Context) (*storage.Session, error) {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return session, nil
}

// Authorize loads a live session and puts its token on the API client.
// An expired session is removed.
func (s *Service) Authorize(ctx context.Context) (*storage.Session, error) {
	session, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.DeleteSession(ctx)
		return nil, ErrSessionExpired
	}
	s.apiClient.SetToken(session.Token)
	return session, nil
}

// Check переводит ответ EXPIRED_TOKEN в ErrSessionExpired и стирает сессию
func (s *Service) Check(ctx context.Context, err error) error {
	if err == nil || !api.IsExpired(err) {
		return err
	}
	if delErr := s.sessions.DeleteSession(ctx); delErr != nil && !errors.Is(delErr, storage.ErrSessionNotFound) {
		return errors.Join(ErrSessionExpired, delErr)
	}
	s.apiClient.SetToken("")
	return ErrSessionExpired
}

// RefreshProfile переносит имя и email из профиля в сохраненную сессию
func (s *Service) RefreshProfile(ctx context.Context, user *pkgapi.User) error {
	session, err := s.Session(ctx)
	if err != nil {
		return err
	}
	session.Name = user.Name
	session.Email = user.Email
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
