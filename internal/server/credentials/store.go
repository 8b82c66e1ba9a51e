// Package credentials owns user records: registration, password checks and
// profile updates. Plaintext passwords never leave this package.
package credentials

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/server/storage"
	"github.com/iudanet/geojournal/internal/validation"
)

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = 12

// invalidCredentials одинаковое сообщение для "нет пользователя" и "неверный пароль"
const invalidCredentials = "invalid email or password"

// Store управляет учетными данными пользователей
type Store struct {
	logger    *slog.Logger
	users     storage.UserStorage
	now       func() time.Time
	dummyHash []byte
	cost      int
}

// NewStore creates a credential store hashing with the given bcrypt cost.
func NewStore(logger *slog.Logger, users storage.UserStorage, cost int) (*Store, error) {
	if cost == 0 {
		cost = DefaultCost
	}

	// хеш для сравнения при отсутствующем пользователе, чтобы время ответа не выдавало email
	dummy, err := bcrypt.GenerateFromPassword([]byte("geojournal-dummy-password"), cost)
	if err != nil {
		return nil, err
	}

	return &Store{
		logger:    logger,
		users:     users,
		cost:      cost,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// ProfileUpdate carries optional profile changes.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// Register validates input, hashes the password and persists a new user.
func (s *Store) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = validation.NormalizeEmail(email)

	var errs validation.Errors
	errs.Check("name", validation.ValidateName(name))
	errs.Check("email", validation.ValidateEmail(email))
	errs.Check("password", validation.ValidatePassword(password))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Fatal("failed to hash password", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			s.logger.WarnContext(ctx, "email already registered", slog.String("email", email))
			return nil, apperr.New(apperr.KindDuplicateKey, "User with this email already exists")
		}
		return nil, apperr.Fatal("failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return user, nil
}

// VerifyCredentials returns the user for a matching email/password pair.
// A missing user and a wrong password produce the same Unauthenticated error.
func (s *Store) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.logger.WarnContext(ctx, "login failed: unknown email")
			return nil, apperr.New(apperr.KindUnauthenticated, invalidCredentials)
		}
		return nil, apperr.Fatal("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "login failed: password mismatch", slog.String("user_id", user.ID))
		return nil, apperr.New(apperr.KindUnauthenticated, invalidCredentials)
	}

	return user, nil
}

// FindByID returns the user or a NotFound error.
func (s *Store) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Fatal("failed to get user", err)
	}
	return user, nil
}

// UpdateProfile changes the name and/or password of a user.
// The hash is recomputed only when a new password is supplied.
func (s *Store) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	var errs validation.Errors
	var name string
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		errs.Check("name", validation.ValidateName(name))
	}
	if upd.Password != nil {
		errs.Check("password", validation.ValidatePassword(*upd.Password))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		user.Name = name
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), s.cost)
		if err != nil {
			return nil, apperr.Fatal("failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Fatal("failed to update user", err)
	}

	return user, nil
}
