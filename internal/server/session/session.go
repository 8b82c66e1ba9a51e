// Package session issues and verifies the signed bearer tokens that assert
// a user identity. Verification is stateless.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "geojournal"

var (
	// ErrInvalidToken covers malformed tokens and bad signatures
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned for well-formed tokens past their expiry
	ErrExpiredToken = errors.New("token expired")
)

// Claims представляет JWT claims токена сессии
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Config содержит конфигурацию для JWT
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Authority выпускает и проверяет токены сессии
type Authority struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// NewAuthority creates an Authority signing with HS256.
func NewAuthority(cfg Config) *Authority {
	return &Authority{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// TTL returns the configured token lifetime.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

// Issue creates a token binding userID, valid for the configured TTL.
func (a *Authority) Issue(userID string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify returns the user ID asserted by token.
// Errors wrap ErrExpiredToken or ErrInvalidToken.
func (a *Authority) Verify(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
