package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/server/handlers"
	"github.com/iudanet/geojournal/internal/server/session"
)

// UserFinder resolves a user id taken from a verified token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Gate проверяет bearer токен и кладет владельца запроса в контекст
type Gate struct {
	logger    *slog.Logger
	authority *session.Authority
	users     UserFinder
	cache     session.Cache
	respond   *handlers.Responder
}

// NewGate creates a gate. cache may be nil.
func NewGate(logger *slog.Logger, authority *session.Authority, users UserFinder, cache session.Cache, respond *handlers.Responder) *Gate {
	return &Gate{
		logger:    logger,
		authority: authority,
		users:     users,
		cache:     cache,
		respond:   respond,
	}
}

// Require rejects the request with 401 unless a valid token maps to an existing user.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := g.resolve(r)
		if err != nil {
			g.logger.WarnContext(r.Context(), "request rejected by auth gate",
				slog.String("path", r.URL.Path),
				slog.String("reason", string(apperr.KindOf(err))))
			g.respond.Error(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithOwner(r.Context(), owner)))
	})
}

// Optional attaches the owner when the token checks out and proceeds anonymously otherwise.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := g.resolve(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithOwner(r.Context(), owner)))
	})
}

func (g *Gate) resolve(r *http.Request) (models.Owner, error) {
	token, err := bearerToken(r)
	if err != nil {
		return models.Owner{}, err
	}

	userID, err := g.authority.Verify(token)
	if err != nil {
		if errors.Is(err, session.ErrExpiredToken) {
			return models.Owner{}, apperr.Wrap(apperr.KindExpiredToken, "Token expired. Please log in again.", err)
		}
		return models.Owner{}, apperr.Wrap(apperr.KindInvalidToken, "Invalid token. Please log in again.", err)
	}

	if g.cache != nil {
		if owner, ok := g.cache.Get(userID); ok {
			return owner, nil
		}
	}

	user, err := g.users.FindByID(r.Context(), userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return models.Owner{}, apperr.New(apperr.KindUnauthenticated, "Not authorized, user not found")
		}
		return models.Owner{}, err
	}

	owner := user.Owner()
	if g.cache != nil {
		g.cache.Set(userID, owner)
	}

	return owner, nil
}

// bearerToken ожидает заголовок формата "Bearer <token>", схема без учета регистра
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.New(apperr.KindUnauthenticated, "Not authorized, no token")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.New(apperr.KindUnauthenticated, "Not authorized, invalid token format")
	}

	return strings.TrimSpace(parts[1]), nil
}
