package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/services"
	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
	"github.com/bimakw/position-analytics/internal/infrastructure/cache"
	"github.com/bimakw/position-analytics/internal/infrastructure/database"
	"github.com/bimakw/position-analytics/internal/infrastructure/ethereum"
	"github.com/bimakw/position-analytics/internal/infrastructure/positionsapi"
	"github.com/bimakw/position-analytics/internal/infrastructure/zeroex"
	"github.com/bimakw/position-analytics/internal/logging"
	"github.com/bimakw/position-analytics/internal/presentation/handlers"
	"github.com/bimakw/position-analytics/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := logging.New(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting position-analytics API",
		zap.Int("port", cfg.API.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)

	ctx := context.Background()

	// Detail cache: Redis when reachable, in-process otherwise
	var store cache.Store = cache.NewMemoryCache()
	var cacheChecker handlers.HealthChecker
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, using in-memory cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			store = redisCache
			cacheChecker = redisCache
		}
	}

	// Snapshot storage (optional)
	var snapshotRepo repositories.SnapshotRepository
	var dbChecker handlers.HealthChecker
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			logger.Warn("Failed to connect to database, snapshots disabled", zap.Error(err))
		} else {
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				logger.Fatal("Failed to prepare database schema", zap.Error(err))
			}
			snapshotRepo = database.NewSnapshotRepo(db.DB())
			dbChecker = db
		}
	}

	// Chain client for the token gate (optional)
	var balances repositories.TokenBalanceReader
	var chainChecker handlers.HealthChecker
	ethClient, err := ethereum.NewClient(cfg.Chain, logger)
	if err != nil {
		logger.Warn("Failed to connect to RPC node, token gate disabled", zap.Error(err))
	} else {
		defer ethClient.Close()
		meta := ethClient.TokenMetadata(ctx, cfg.Chain.GateTokenAddress, ethereum.TokenMetadata{
			Symbol:   cfg.Chain.GateTokenSymbol,
			Decimals: uint8(cfg.Chain.GateTokenDecimals),
		})
		cfg.Chain.GateTokenSymbol = meta.Symbol
		cfg.Chain.GateTokenDecimals = int32(meta.Decimals)
		balances = ethClient
		chainChecker = ethClient
	}

	// Create upstream clients
	positionsClient := positionsapi.NewClient(cfg.Upstream, logger)
	quoteClient := zeroex.NewClient(cfg.ZeroEx.APIKey,
		zeroex.WithBaseURL(cfg.ZeroEx.BaseURL),
		zeroex.WithTimeout(cfg.ZeroEx.RequestTimeout),
		zeroex.WithRateLimit(cfg.ZeroEx.RateLimitRPS),
		zeroex.WithLogger(logger),
	)

	// Create services
	metrics := services.NewAnalyticsMetrics(prometheus.DefaultRegisterer)
	aggregatorService := services.NewAggregatorService(positionsClient, cfg.Aggregator, metrics, logger)
	detailService := services.NewPositionDetailService(positionsClient, store, cfg.API.DetailsCacheTTL, metrics, logger)
	quoteService := services.NewQuoteService(quoteClient, cfg.Chain, logger)
	eligibilityService := services.NewEligibilityService(balances, quoteClient, cfg.Chain, logger)
	snapshotService := services.NewSnapshotService(aggregatorService, snapshotRepo, cfg.Snapshot, metrics, logger)

	// Create handlers
	positionsHandler := handlers.NewPositionsHandler(aggregatorService, detailService, logger)
	quoteHandler := handlers.NewQuoteHandler(quoteService, logger)
	eligibilityHandler := handlers.NewEligibilityHandler(eligibilityService, logger)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService, logger)
	healthHandler := handlers.NewHealthHandler(dbChecker, cacheChecker, chainChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		positionsHandler.RegisterRoutes(r)
		eligibilityHandler.RegisterRoutes(r)
		snapshotHandler.RegisterRoutes(r)
		quoteHandler.RegisterRoutes(r)
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
