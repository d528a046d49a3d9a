package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/strataops/strataledger/cmd/docs"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/core/services"
	"github.com/strataops/strataledger/internal/handlers"
	"github.com/strataops/strataledger/internal/middleware"
	"github.com/strataops/strataledger/internal/platform/config"
	"github.com/strataops/strataledger/internal/repositories/database/pgsql"
	"github.com/strataops/strataledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title StrataLedger API
// @version 1.0
// @description Double-entry accounting backend for property and association management.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wire repositories and services
	repoProvider := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, repoProvider)

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	// Root context cancelled on SIGINT/SIGTERM; stops the dispatcher and
	// triggers the HTTP shutdown below.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background GL posting dispatcher
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		runOutboxDispatcher(ctx, logger, serviceContainer.Outbox, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	<-workerDone
	logger.Info("Stopped")
}

// runMigrations applies all pending "up" migrations using a short-lived
// database/sql connection, separate from the application's pgx pool.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// corsConfig builds the CORS policy: the configured frontend origin plus the
// headers the API actually reads.
func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if cfg.FrontendBaseURL != "" {
		corsCfg.AllowOrigins = []string{cfg.FrontendBaseURL}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Association-ID", "Idempotency-Key"}
	corsCfg.ExposeHeaders = []string{"X-Request-ID"}
	corsCfg.MaxAge = 12 * time.Hour
	return corsCfg
}

// runOutboxDispatcher polls for pending GL posting tasks until ctx is
// cancelled. Dispatch errors are logged and the loop keeps going; a broken
// task is marked FAILED by the service and does not wedge the queue.
func runOutboxDispatcher(ctx context.Context, logger *slog.Logger, outbox portssvc.OutboxSvcFacade, interval time.Duration, batchSize int) {
	workerLogger := logger.With(slog.String("component", "outbox_dispatcher"))
	workerCtx := middleware.WithLogger(ctx, workerLogger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	workerLogger.Info("Outbox dispatcher started",
		slog.Duration("poll_interval", interval),
		slog.Int("batch_size", batchSize),
	)
	for {
		select {
		case <-ctx.Done():
			workerLogger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			processed, err := outbox.ProcessPending(workerCtx, batchSize)
			if err != nil {
				workerLogger.Error("Outbox dispatch cycle failed", slog.String("error", err.Error()))
				continue
			}
			if processed > 0 {
				workerLogger.Debug("Outbox dispatch cycle complete", slog.Int("processed", processed))
			}
		}
	}
}
