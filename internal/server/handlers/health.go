package handlers

import (
	"net/http"
	"time"

	"github.com/iudanet/geojournal/pkg/api"
)

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	respond     *Responder
	environment string
	version     string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(respond *Responder, environment, version string) *HealthHandler {
	return &HealthHandler{
		respond:     respond,
		environment: environment,
		version:     version,
	}
}

// Health обрабатывает GET /health.
// Маршрут под опциональной авторизацией: authenticated показывает, распознан ли токен
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	_, authenticated := OwnerFromContext(r.Context())

	resp := api.HealthResponse{
		Success:       true,
		Message:       "GeoJournal API is running",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Environment:   h.environment,
		Version:       h.version,
		Authenticated: authenticated,
	}

	h.respond.write(w, http.StatusOK, resp)
}
