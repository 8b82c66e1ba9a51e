// Package server wires the journal HTTP API: storage, image store, session
// authority, middleware chain and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/geojournal/internal/config"
	"github.com/iudanet/geojournal/internal/server/credentials"
	"github.com/iudanet/geojournal/internal/server/events"
	"github.com/iudanet/geojournal/internal/server/handlers"
	"github.com/iudanet/geojournal/internal/server/images"
	"github.com/iudanet/geojournal/internal/server/journal"
	"github.com/iudanet/geojournal/internal/server/middleware"
	"github.com/iudanet/geojournal/internal/server/session"
	"github.com/iudanet/geojournal/internal/server/storage"
	"github.com/iudanet/geojournal/internal/server/storage/postgres"
	"github.com/iudanet/geojournal/internal/server/storage/sqlite"
)

// App держит все зависимости сервера
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     storage.Storage
	publisher events.Publisher
	limiter   *middleware.RateLimiter
	cache     *session.TTLCache
	handler   http.Handler
}

// NewApp builds every component from cfg. version is reported by /health.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	store, err := openStorage(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	imgs, uploads, err := openImages(ctx, logger, cfg.Images)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("image store init error: %w", err)
	}

	creds, err := credentials.NewStore(logger, store, cfg.Auth.BcryptCost)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("credentials init error: %w", err)
	}

	app := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		publisher: openPublisher(logger, cfg.AMQP),
	}

	authority := session.NewAuthority(session.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
	})

	// nil interface, а не nil *TTLCache, когда кеш выключен
	var cache session.Cache
	if cfg.Auth.IdentityCacheTTL > 0 {
		app.cache = session.NewTTLCache(cfg.Auth.IdentityCacheTTL)
		cache = app.cache
	}

	respond := handlers.NewResponder(logger, cfg.IsDevelopment())
	svc := journal.NewService(logger, store, imgs, app.publisher, journal.Config{
		MaxUploadSize: cfg.Images.MaxUploadSize,
	})

	authLimit, limiter := middleware.RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger, respond)
	app.limiter = limiter

	app.handler = newRouter(routes{
		logger:    logger,
		respond:   respond,
		gate:      middleware.NewGate(logger, authority, creds, cache, respond),
		auth:      handlers.NewAuthHandler(logger, creds, authority, cache, respond),
		entries:   handlers.NewEntryHandler(logger, svc, respond, cfg.Images.MaxUploadSize),
		health:    handlers.NewHealthHandler(respond, cfg.Environment, version),
		authLimit: authLimit,
		uploads:   uploads,
	})

	return app, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Address,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	if a.cache != nil {
		go a.purgeCache(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening",
			slog.String("address", a.cfg.Address),
			slog.String("environment", a.cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases storage, the event publisher and background goroutines.
func (a *App) Close() error {
	a.limiter.Stop()

	var errs []error
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) purgeCache(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Auth.IdentityCacheTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := a.cache.Purge(); n > 0 {
				a.logger.Debug("identity cache purged", slog.Int("removed", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig) (storage.Storage, error) {
	var (
		store storage.Storage
		err   error
	)
	switch cfg.Driver {
	case "postgres":
		store, err = postgres.New(ctx, cfg.DSN)
	case "sqlite":
		store, err = sqlite.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// openImages returns the store and, for the fs backend, the handler serving /uploads.
func openImages(ctx context.Context, logger *slog.Logger, cfg config.ImagesConfig) (images.Store, http.Handler, error) {
	switch cfg.Backend {
	case "s3":
		store, err := images.NewS3Store(ctx, logger, images.S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			PublicURL:    cfg.PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "fs":
		store, err := images.NewFSStore(logger, cfg.UploadDir, cfg.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Handler(), nil
	default:
		return nil, nil, fmt.Errorf("unknown image backend %q", cfg.Backend)
	}
}

// openPublisher never fails startup: without a broker events are dropped.
func openPublisher(logger *slog.Logger, cfg config.AMQPConfig) events.Publisher {
	if cfg.URL == "" {
		return events.Nop{}
	}

	pub, err := events.NewAMQPPublisher(logger, cfg.URL, cfg.Exchange)
	if err != nil {
		logger.Warn("entry events disabled", slog.Any("error", err))
		return events.Nop{}
	}

	return events.NewResilient(pub, events.ResilientConfig{Logger: logger})
}
