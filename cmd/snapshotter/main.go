package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/services"
	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/infrastructure/database"
	"github.com/bimakw/position-analytics/internal/infrastructure/positionsapi"
	"github.com/bimakw/position-analytics/internal/logging"
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

	logger.Info("Starting portfolio snapshotter",
		zap.Strings("wallets", cfg.Snapshot.Wallets),
		zap.Duration("interval", cfg.Snapshot.Interval),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	// Create services
	metrics := services.NewAnalyticsMetrics(prometheus.DefaultRegisterer)
	positionsClient := positionsapi.NewClient(cfg.Upstream, logger)
	aggregatorService := services.NewAggregatorService(positionsClient, cfg.Aggregator, metrics, logger)
	snapshotService := services.NewSnapshotService(
		aggregatorService,
		database.NewSnapshotRepo(db.DB()),
		cfg.Snapshot,
		metrics,
		logger,
	)

	if err := snapshotService.Start(ctx); err != nil {
		logger.Fatal("Failed to start snapshotter", zap.Error(err))
	}

	// Start metrics server
	go startMetricsServer(cfg.Snapshot.MetricsPort, snapshotService, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping snapshotter...")

	cancel()
	snapshotService.Stop()

	status := snapshotService.GetStatus()
	logger.Info("Snapshotter stopped",
		zap.Int64("rounds", status.Rounds),
		zap.Int64("snapshots", status.SnapshotsTaken),
		zap.Int64("failures", status.Failures),
	)
}

func startMetricsServer(port int, snapshots *services.SnapshotService, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := snapshots.GetStatus()
		if status.Rounds == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("starting"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK last_round=%s", status.LastRoundAt.UTC().Format(time.RFC3339))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
