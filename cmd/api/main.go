package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/config"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/handler"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/middleware"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/repository/bolt"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/repository/memory"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/repository/postgres"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/repository/storage"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Open the record medium
	kv, err := openKeyValueStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()
	log.Info().Str("backend", cfg.StoreBackend).Msg("Store opened")

	// Initialize services
	recordStore := service.NewRecordStore(kv)
	ledger := service.NewLedgerService(recordStore)
	if err := ledger.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	// Initialize WebSocket hub for real-time updates
	hub := websocket.NewHub()
	ledger.SetEventPublisher(hub)

	// Optional S3 backups
	var backupRepo storage.BackupRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3BackupRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 backup storage")
		}
		backupRepo = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 backups enabled")
	}
	backupService := service.NewBackupService(backupRepo, ledger)

	// Initialize handlers
	handlers := handler.Handlers{
		Transaction: handler.NewTransactionHandler(ledger),
		Category:    handler.NewCategoryHandler(ledger),
		Settings:    handler.NewSettingsHandler(ledger),
		Statistics:  handler.NewStatisticsHandler(ledger),
		Data:        handler.NewDataHandler(ledger),
		Backup:      handler.NewBackupHandler(backupService),
		WebSocket:   handler.NewWebSocketHandler(hub, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		MaxAge:       86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"backend": cfg.StoreBackend,
			"clients": hub.ClientCount(),
		})
	})

	// Register API routes behind the per-client rate limiter
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()
	handler.RegisterRoutes(e, handlers, middleware.RateLimitMiddleware(rateLimiter))

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openKeyValueStore opens the medium selected by STORE_BACKEND
func openKeyValueStore(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-memory store; data is lost on exit")
		return memory.NewKeyValueStore(), nil

	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return postgres.NewKeyValueStore(pool), nil

	default:
		store, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
