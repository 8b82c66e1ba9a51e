package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/server/credentials"
	"github.com/iudanet/geojournal/internal/server/session"
	"github.com/iudanet/geojournal/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации и профиля
type AuthHandler struct {
	logger      *slog.Logger
	credentials *credentials.Store
	authority   *session.Authority
	cache       session.Cache
	respond     *Responder
}

// NewAuthHandler создает новый handler для авторизации.
// cache may be nil; when set, profile changes evict the cached owner.
func NewAuthHandler(logger *slog.Logger, creds *credentials.Store, authority *session.Authority, cache session.Cache, respond *Responder) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		credentials: creds,
		authority:   authority,
		cache:       cache,
		respond:     respond,
	}
}

// Register обрабатывает POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		h.respond.Error(w, r, apperr.New(apperr.KindValidation, "Invalid request body"))
		return
	}

	user, err := h.credentials.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusCreated, "User registered successfully", resp)
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.respond.Error(w, r, apperr.New(apperr.KindValidation, "Invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		h.respond.Error(w, r, apperr.New(apperr.KindValidation, "Please provide email and password"))
		return
	}

	user, err := h.credentials.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	h.respond.JSON(w, http.StatusOK, "Login successful", resp)
}

// Profile обрабатывает GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, apperr.New(apperr.KindUnauthenticated, "Not authorized"))
		return
	}

	user, err := h.credentials.FindByID(r.Context(), owner.ID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusOK, "", api.ProfileResponse{User: toAPIUser(user)})
}

// UpdateProfile обрабатывает PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := OwnerFromContext(ctx)
	if !ok {
		h.respond.Error(w, r, apperr.New(apperr.KindUnauthenticated, "Not authorized"))
		return
	}

	var req api.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Error(w, r, apperr.New(apperr.KindValidation, "Invalid request body"))
		return
	}

	user, err := h.credentials.UpdateProfile(ctx, owner.ID, credentials.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	if h.cache != nil {
		h.cache.Delete(owner.ID)
	}

	h.logger.InfoContext(ctx, "profile updated", slog.String("user_id", owner.ID))

	h.respond.JSON(w, http.StatusOK, "Profile updated successfully", api.ProfileResponse{User: toAPIUser(user)})
}

func (h *AuthHandler) authResponse(user *models.User) (api.AuthResponse, error) {
	token, expiresAt, err := h.authority.Issue(user.ID)
	if err != nil {
		return api.AuthResponse{}, apperr.Fatal("failed to issue token", err)
	}
	return api.AuthResponse{
		User:      toAPIUser(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
