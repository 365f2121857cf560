package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/services"
	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
	"github.com/bimakw/position-analytics/internal/testutil"
)

func setupSnapshotRouter(repo repositories.SnapshotRepository) http.Handler {
	logger := zap.NewNop()
	aggregator := services.NewAggregatorService(testutil.NewMockPositionsRepository(), config.AggregatorConfig{
		PageLimit: 50,
		MaxPages:  20,
		PageDelay: time.Millisecond,
	}, nil, logger)
	service := services.NewSnapshotService(aggregator, repo, config.SnapshotConfig{WorkerCount: 1}, nil, logger)

	r := chi.NewRouter()
	NewSnapshotHandler(service, logger).RegisterRoutes(r)
	return r
}

func TestSnapshotHandler_GetSnapshots(t *testing.T) {
	t.Run("returns snapshots", func(t *testing.T) {
		repo := testutil.NewMockSnapshotRepository()
		ctx := context.Background()
		_ = repo.Insert(ctx, &entities.PortfolioSnapshot{WalletAddress: testutil.AliceAddress, TotalPositions: 1})
		_ = repo.Insert(ctx, &entities.PortfolioSnapshot{WalletAddress: testutil.AliceAddress, TotalPositions: 2})

		rec := httptest.NewRecorder()
		setupSnapshotRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallets/"+testutil.AliceAddress+"/snapshots?limit=1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var response services.SnapshotsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Data) != 1 || response.Data[0].TotalPositions != 2 {
			t.Errorf("expected newest snapshot only, got %+v", response.Data)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		setupSnapshotRouter(testutil.NewMockSnapshotRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallets/"+testutil.AliceAddress+"/snapshots?limit=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("database disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		setupSnapshotRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallets/"+testutil.AliceAddress+"/snapshots", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}
	})
}

func TestSnapshotHandler_GetLatest(t *testing.T) {
	t.Run("returns the newest snapshot", func(t *testing.T) {
		repo := testutil.NewMockSnapshotRepository()
		ctx := context.Background()
		_ = repo.Insert(ctx, &entities.PortfolioSnapshot{WalletAddress: testutil.AliceAddress, TotalPositions: 1})
		_ = repo.Insert(ctx, &entities.PortfolioSnapshot{WalletAddress: testutil.AliceAddress, TotalPositions: 3})

		rec := httptest.NewRecorder()
		setupSnapshotRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallets/"+testutil.AliceAddress+"/snapshots/latest", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var response services.SnapshotResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Data == nil || response.Data.TotalPositions != 3 {
			t.Errorf("expected newest snapshot, got %+v", response.Data)
		}
	})

	t.Run("no snapshots", func(t *testing.T) {
		rec := httptest.NewRecorder()
		setupSnapshotRouter(testutil.NewMockSnapshotRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallets/"+testutil.BobAddress+"/snapshots/latest", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}
