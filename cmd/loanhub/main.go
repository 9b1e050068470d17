package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/loanhub/internal/config"
	"github.com/boddenberg/loanhub/internal/handler"
	"github.com/boddenberg/loanhub/internal/infra/cache"
	"github.com/boddenberg/loanhub/internal/infra/memstore"
	"github.com/boddenberg/loanhub/internal/infra/mongostore"
	"github.com/boddenberg/loanhub/internal/infra/observability"
	"github.com/boddenberg/loanhub/internal/infra/resilience"
	"github.com/boddenberg/loanhub/internal/port"
	"github.com/boddenberg/loanhub/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env not loaded: %v\n", err)
	}

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store", cfg.Store),
		zap.Bool("seed_on_start", cfg.SeedOnStart),
		zap.Bool("allow_seed", cfg.AllowSeed),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_ttl", cfg.JWTTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "loanhub")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Stores ---
	var (
		productStore port.ProductStore
		userStore    port.UserStore
	)

	switch cfg.Store {
	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.MongoTimeout)
		store, err := mongostore.Connect(ctx, mongostore.Options{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Timeout:  cfg.MongoTimeout,
			Resilience: resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
		}, logger)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to mongo", zap.Error(err))
		}
		defer store.Close(context.Background())
		productStore, userStore = store, store
	default:
		logger.Info("using in-memory store")
		productStore, userStore = memstore.NewProductStore(), memstore.NewUserStore()
	}

	// --- Token revocation list ---
	revoked := cache.New[string](time.Hour)
	defer revoked.Close()

	// --- Services ---
	productSvc := service.NewProductService(productStore, cfg.Store, metrics, logger)
	if cfg.SeedOnStart && cfg.Store == config.StoreMemory {
		if _, err := productSvc.Seed(context.Background()); err != nil {
			logger.Fatal("failed to seed catalog", zap.Error(err))
		}
	}

	svcs := handler.Services{
		EMI:      service.NewEMIService(metrics, logger),
		Products: productSvc,
		Auth:     service.NewAuthService(userStore, revoked, cfg.JWTSecret, cfg.JWTTTL, cfg.BcryptCost, metrics, logger),
		Blog:     service.NewBlogService(service.DefaultPosts()),
		Health: service.NewHealthService(map[string]port.Pinger{
			"products": productStore,
			"users":    userStore,
		}, cfg.MongoTimeout, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, handler.Options{
		AllowSeed:          cfg.AllowSeed,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
