package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinema-api/internal/config"
	"cinema-api/internal/database"
	"cinema-api/internal/event"
	"cinema-api/internal/handler"
	"cinema-api/internal/metrics"
	"cinema-api/internal/repository"
	"cinema-api/internal/router"
	"cinema-api/internal/security"
	"cinema-api/internal/service"
	"cinema-api/internal/storage"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	movieRepo := repository.NewMovieRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	slog.Info("database ready")

	images, err := storage.NewImageStore(cfg.ImageRoot, cfg.MaxUploadSize, cfg.ImageMaxWidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}

	issuer, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	hasher := security.NewPasswordHasher(security.Argon2Params{
		Time:      cfg.Argon2Time,
		MemoryKiB: cfg.Argon2MemoryKiB,
		Threads:   cfg.Argon2Threads,
	})

	m := metrics.New()
	bus := event.NewBus()

	auditService := service.NewAuditService(auditRepo)
	stopAudit := auditService.Start(bus)
	// The audit loop writes through the pool, so it must stop first.
	closeStore := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stopAudit(stopCtx); err != nil {
			slog.Warn("audit log did not drain before shutdown", "error", err)
		}
		db.Close()
	}

	authService, err := service.NewAuthService(userRepo, hasher, issuer, bus, m, service.AuthOptions{
		UnifyLoginErrors: cfg.UnifyLoginErrors,
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			closeStore()
			return nil, fmt.Errorf("failed to bootstrap admin identity: %w", err)
		}
	}

	movieService := service.NewMovieService(movieRepo, images)
	reservationService := service.NewReservationService(reservationRepo, time.Now)

	appRouter, err := router.New(cfg, authService, m, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Movie:       handler.NewMovieHandler(movieService, cfg.MaxUploadSize),
		Reservation: handler.NewReservationHandler(reservationService),
		Audit:       handler.NewAuditHandler(auditService),
		Health:      handler.NewHealthHandler(userRepo),
		Images:      images.Handler(),
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: []func(){closeStore},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Drain in-flight requests before the store goes away.
	shutdownErr := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
