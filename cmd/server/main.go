package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"moove/internal/app"
	"moove/internal/config"
	"moove/internal/middleware"
	internalRedis "moove/internal/redis"
	"moove/internal/repository"
	"moove/internal/repository/memory"
	"moove/internal/repository/postgres"
	"moove/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.Server.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	nrApp := app.NewNewRelicApp(cfg.NewRelic, logger)
	if nrApp != nil {
		defer nrApp.Shutdown(5 * time.Second)
	}

	// Event journal: PostgreSQL when enabled, in-memory otherwise.
	var journal repository.EventRepository = memory.NewEventLog()
	if cfg.Database.Enabled {
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		pgJournal := postgres.NewEventRepository(db, uuid.NewString())
		if err := pgJournal.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare event journal: %w", err)
		}
		journal = pgJournal
		logger.Info("connected to PostgreSQL",
			zap.String("db", cfg.Database.DBName),
			zap.String("run_id", pgJournal.RunID()),
		)
	}

	// Redis backs the availability projection and the idempotency cache.
	var availability internalRedis.AvailabilityStoreInterface
	var idempotency middleware.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		availability = internalRedis.NewAvailabilityStore(redisClient)
		idempotency = middleware.NewRedisIdempotencyStore(redisClient)
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	server := wireServer(cfg, logger, nrApp, journal, availability, idempotency)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	cfg *config.Config,
	logger *zap.Logger,
	nrApp *newrelic.Application,
	journal repository.EventRepository,
	availability internalRedis.AvailabilityStoreInterface,
	idempotency middleware.IdempotencyStore,
) *http.Server {
	observers := service.Observers{
		service.NewLogObserver(logger),
		service.NewJournalObserver(journal, logger),
	}
	if nrApp != nil {
		observers = append(observers, service.NewNewRelicObserver(nrApp))
	}

	fleet := app.NewFleet(availability, observers, logger)
	cityHandler, vehicleHandler, userHandler, eventHandler := fleet.Handlers(journal)

	router := app.NewRouter(app.RouterDeps{
		CityHandler:      cityHandler,
		VehicleHandler:   vehicleHandler,
		UserHandler:      userHandler,
		EventHandler:     eventHandler,
		IdempotencyStore: idempotency,
		Logger:           logger,
		NewRelicApp:      nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
