package server

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/geojournal/internal/server/handlers"
	"github.com/iudanet/geojournal/internal/server/middleware"
)

type routes struct {
	logger    *slog.Logger
	respond   *handlers.Responder
	gate      *middleware.Gate
	auth      *handlers.AuthHandler
	entries   *handlers.EntryHandler
	health    *handlers.HealthHandler
	authLimit func(http.Handler) http.Handler
	uploads   http.Handler // nil, если картинки раздает не сервер
}

func newRouter(rt routes) http.Handler {
	mux := http.NewServeMux()
	required := rt.gate.Require

	mux.Handle("GET /health", rt.gate.Optional(http.HandlerFunc(rt.health.Health)))

	mux.Handle("POST /api/auth/register", rt.authLimit(http.HandlerFunc(rt.auth.Register)))
	mux.Handle("POST /api/auth/login", rt.authLimit(http.HandlerFunc(rt.auth.Login)))
	mux.Handle("GET /api/auth/profile", required(http.HandlerFunc(rt.auth.Profile)))
	mux.Handle("PUT /api/auth/profile", required(http.HandlerFunc(rt.auth.UpdateProfile)))

	mux.Handle("POST /api/entries", required(http.HandlerFunc(rt.entries.Create)))
	mux.Handle("GET /api/entries", required(http.HandlerFunc(rt.entries.List)))
	mux.Handle("GET /api/entries/{id}", required(http.HandlerFunc(rt.entries.Get)))
	mux.Handle("PUT /api/entries/{id}", required(http.HandlerFunc(rt.entries.Update)))
	mux.Handle("DELETE /api/entries/{id}", required(http.HandlerFunc(rt.entries.Delete)))

	if rt.uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads", rt.uploads))
	}

	mux.HandleFunc("/", rt.respond.NotFound)

	// порядок: request id -> логирование -> recovery -> маршруты
	var h http.Handler = mux
	h = middleware.RecoveryMiddleware(rt.logger, rt.respond)(h)
	h = middleware.LoggingWithSkip(rt.logger, []string{"/health"})(h)
	h = middleware.RequestID(h)

	return h
}
