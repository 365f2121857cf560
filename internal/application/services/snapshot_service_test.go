package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
	"github.com/bimakw/position-analytics/internal/testutil"
)

func newTestSnapshotService(positions repositories.PositionsRepository, repo repositories.SnapshotRepository, wallets ...string) *SnapshotService {
	aggregator, _ := newTestAggregator(positions, nil)
	cfg := config.SnapshotConfig{Interval: time.Hour, WorkerCount: 2, Wallets: wallets}
	return NewSnapshotService(aggregator, repo, cfg, nil, zap.NewNop())
}

func TestSnapshotService_SnapshotWallet(t *testing.T) {
	ctx := context.Background()

	positions := testutil.NewMockPositionsRepository()
	positions.AddPositions(
		testutil.CreateTestPosition(testutil.WithTokenAddress("0x01"), testutil.WithValueUSDC("100"), testutil.WithReturn("50", true)),
		testutil.CreateTestPosition(testutil.WithTokenAddress("0x02"), testutil.WithValueUSDC("20"), testutil.WithReturn("-10", false)),
	)
	repo := testutil.NewMockSnapshotRepository()

	service := newTestSnapshotService(positions, repo)

	snapshot, err := service.SnapshotWallet(ctx, testutil.AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.ID == "" {
		t.Error("expected snapshot id")
	}
	if snapshot.TotalPositions != 2 || snapshot.ProfitablePositions != 1 {
		t.Errorf("unexpected counts: %+v", snapshot)
	}
	if snapshot.TotalValueUSDC != "120" {
		t.Errorf("expected total value 120, got %s", snapshot.TotalValueUSDC)
	}
	if snapshot.AvgReturn != 20 {
		t.Errorf("expected avg return 20, got %v", snapshot.AvgReturn)
	}
	if snapshot.StopReason != StopShortPage || snapshot.Pages != 1 {
		t.Errorf("unexpected aggregation info: pages=%d reason=%s", snapshot.Pages, snapshot.StopReason)
	}
	if len(repo.Snapshots()) != 1 {
		t.Errorf("expected 1 stored snapshot, got %d", len(repo.Snapshots()))
	}
}

func TestSnapshotService_RunOnce(t *testing.T) {
	ctx := context.Background()

	positions := testutil.NewMockPositionsRepository()
	positions.FetchPositionsPageFunc = func(ctx context.Context, wallet string, limit, offset int) (*entities.PositionsPage, error) {
		if wallet == testutil.BobAddress {
			return nil, &repositories.UpstreamError{Kind: repositories.ErrServerError, StatusCode: 500}
		}
		return &entities.PositionsPage{Data: testutil.CreateTestPositions(0, 3)}, nil
	}
	repo := testutil.NewMockSnapshotRepository()

	service := newTestSnapshotService(positions, repo, testutil.AliceAddress, testutil.BobAddress)
	service.RunOnce(ctx)

	stored := repo.Snapshots()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored snapshot, got %d", len(stored))
	}
	if stored[0].WalletAddress != testutil.AliceAddress {
		t.Errorf("expected Alice's snapshot, got %s", stored[0].WalletAddress)
	}

	status := service.GetStatus()
	if status.Rounds != 1 || status.SnapshotsTaken != 1 || status.Failures != 1 {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestSnapshotService_StoreFailure(t *testing.T) {
	ctx := context.Background()

	positions := testutil.NewMockPositionsRepository()
	repo := testutil.NewMockSnapshotRepository()
	repo.InsertFunc = func(ctx context.Context, snapshot *entities.PortfolioSnapshot) error {
		return errors.New("database error")
	}

	service := newTestSnapshotService(positions, repo)

	if _, err := service.SnapshotWallet(ctx, testutil.AliceAddress); err == nil {
		t.Fatal("expected error, got nil")
	}
	if service.GetStatus().Failures != 1 {
		t.Errorf("expected 1 failure, got %d", service.GetStatus().Failures)
	}
}

func TestSnapshotService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a repository", func(t *testing.T) {
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), nil, testutil.AliceAddress)
		if err := service.Start(ctx); !errors.Is(err, repositories.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("requires wallets", func(t *testing.T) {
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), testutil.NewMockSnapshotRepository())
		if err := service.Start(ctx); !errors.Is(err, repositories.ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("runs a first round immediately", func(t *testing.T) {
		repo := testutil.NewMockSnapshotRepository()
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), repo, testutil.AliceAddress)

		if err := service.Start(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		deadline := time.Now().Add(2 * time.Second)
		for service.GetStatus().Rounds == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		service.Stop()

		if service.GetStatus().Rounds != 1 {
			t.Errorf("expected 1 round, got %d", service.GetStatus().Rounds)
		}
		if len(repo.Snapshots()) != 1 {
			t.Errorf("expected 1 snapshot, got %d", len(repo.Snapshots()))
		}
	})
}

func TestSnapshotService_GetSnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps the limit", func(t *testing.T) {
		repo := testutil.NewMockSnapshotRepository()
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), repo)

		resp, err := service.GetSnapshots(ctx, testutil.AliceAddress, 10000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Limit != MaxSnapshotLimit {
			t.Errorf("expected limit %d, got %d", MaxSnapshotLimit, resp.Limit)
		}
		if resp.Data == nil {
			t.Error("expected non-nil data")
		}

		resp, _ = service.GetSnapshots(ctx, testutil.AliceAddress, 0)
		if resp.Limit != DefaultSnapshotLimit {
			t.Errorf("expected limit %d, got %d", DefaultSnapshotLimit, resp.Limit)
		}
	})

	t.Run("no repository", func(t *testing.T) {
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), nil)
		if _, err := service.GetSnapshots(ctx, testutil.AliceAddress, 5); !errors.Is(err, repositories.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})
}

func TestSnapshotService_LatestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the newest snapshot", func(t *testing.T) {
		repo := testutil.NewMockSnapshotRepository()
		_ = repo.Insert(ctx, &entities.PortfolioSnapshot{WalletAddress: testutil.AliceAddress, TotalPositions: 1})
		_ = repo.Insert(ctx, &entities.PortfolioSnapshot{WalletAddress: testutil.AliceAddress, TotalPositions: 4})
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), repo)

		resp, err := service.LatestSnapshot(ctx, testutil.AliceAddress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Data.TotalPositions != 4 {
			t.Errorf("expected newest snapshot, got %+v", resp.Data)
		}
	})

	t.Run("no snapshot yet", func(t *testing.T) {
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), testutil.NewMockSnapshotRepository())
		if _, err := service.LatestSnapshot(ctx, testutil.BobAddress); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("no repository", func(t *testing.T) {
		service := newTestSnapshotService(testutil.NewMockPositionsRepository(), nil)
		if _, err := service.LatestSnapshot(ctx, testutil.AliceAddress); !errors.Is(err, repositories.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})
}
