package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-analytics/internal/application"
	"storefront-analytics/internal/config"
	"storefront-analytics/internal/demodata"
	apiinfra "storefront-analytics/internal/infrastructure/api"
	"storefront-analytics/internal/infrastructure/cache"
	"storefront-analytics/internal/infrastructure/encryption"
	"storefront-analytics/internal/infrastructure/metrics"
	"storefront-analytics/internal/infrastructure/pubsub"
	"storefront-analytics/internal/infrastructure/repository"
	shopifyinfra "storefront-analytics/internal/infrastructure/shopify"
	"storefront-analytics/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	securitymiddleware "storefront-analytics/internal/infrastructure/middleware"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open storage")
	}
	defer closeRepo()

	// Token encryption
	key, err := encryption.LoadKey(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid ENCRYPTION_KEY")
	}
	encryptionService, err := encryption.NewService(key)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	// Shopify
	httpClient := &http.Client{Timeout: 30 * time.Second}
	clientFactory := shopifyinfra.NewClientFactory(cfg.ShopifyAPIVersion, httpClient, logger)
	tokenManager := shopifyinfra.NewTokenManager(encryptionService, clientFactory, logger)

	// Last-sync status cache
	statusStore, closeStatus := openStatusStore(ctx, cfg, logger)
	defer closeStatus()

	syncPubSub := pubsub.NewSyncPubSub(logger)
	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)

	// Application services
	analyticsService := application.NewAnalyticsService(repo, logger)
	syncService := application.NewSyncService(
		repo,
		tokenManager,
		clientFactory,
		demodata.NewGenerator(),
		analyticsService,
		statusStore,
		syncPubSub,
		syncMetrics,
		logger,
		application.SyncOptions{
			PageLimit: cfg.ShopifyPageLimit,
			StatusTTL: cfg.SyncStatusTTL,
		},
	)
	storeService := application.NewStoreServiceWithOptions(repo, tokenManager, logger, cfg.ValidateStoreTokens)

	router := apiinfra.NewRouter(apiinfra.RouterConfig{
		Handler:        apiinfra.NewHandler(syncService, storeService, analyticsService, syncPubSub, logger),
		Verifier:       securitymiddleware.NewSessionVerifier(cfg.SupabaseJWTSecret, cfg.SessionCookieName),
		Gatherer:       prometheus.DefaultGatherer,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Fatal().Err(err).Str("port", cfg.Port).Msg("Failed to listen")
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("env", cfg.AppEnv).
		Str("storage", cfg.StorageDriver).
		Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
	if err := serve(ctx, server, ln, shutdownTimeout, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}

const shutdownTimeout = 15 * time.Second

// serve runs server on ln until ctx is cancelled. It returns only after
// Shutdown has drained in-flight requests.
func serve(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration, logger zerolog.Logger) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}

// openRepository connects the configured storage backend
func openRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ports.Repository, func(), error) {
	noop := func() {}

	switch cfg.StorageDriver {
	case config.DriverSQLite, config.DriverPostgres:
		dsn := cfg.DatabaseURL
		if cfg.StorageDriver == config.DriverSQLite {
			dsn = cfg.SQLitePath
		}
		db, err := repository.OpenGorm(cfg.StorageDriver, dsn)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return repository.NewGormRepository(db), closeDB, nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		disconnect := func() { client.Disconnect(context.Background()) }
		repo, err := repository.NewMongoRepository(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			disconnect()
			return nil, noop, err
		}
		return repo, disconnect, nil

	case config.DriverSupabase:
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create supabase client: %w", err)
		}
		logger.Info().Str("url", cfg.SupabaseURL).Msg("Using Supabase PostgREST storage")
		return repository.NewSupabaseRepository(client), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// openStatusStore uses Redis when configured and falls back to process memory
func openStatusStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ports.SyncStatusStore, func()) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, keeping sync status in memory")
		return cache.NewMemorySyncStatusStore(), func() {}
	}

	store, err := cache.NewRedisSyncStatusStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, keeping sync status in memory")
		return cache.NewMemorySyncStatusStore(), func() {}
	}
	return store, func() { store.Close() }
}
