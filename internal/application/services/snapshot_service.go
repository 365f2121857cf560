package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/position-analytics/internal/application/analytics"
	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

const (
	DefaultSnapshotLimit = 30
	MaxSnapshotLimit     = 500
)

// SnapshotService periodically aggregates configured wallets and stores a
// portfolio summary for each. The repository may be nil on read-only paths.
type SnapshotService struct {
	aggregator *AggregatorService
	repo       repositories.SnapshotRepository
	config     config.SnapshotConfig
	metrics    *AnalyticsMetrics
	logger     *zap.Logger
	status     *SnapshotStatus
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// SnapshotStatus tracks snapshot worker progress
type SnapshotStatus struct {
	mu             sync.RWMutex
	Rounds         int64
	SnapshotsTaken int64
	Failures       int64
	LastRoundAt    time.Time
	LastRoundMs    int64
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(
	aggregator *AggregatorService,
	repo repositories.SnapshotRepository,
	cfg config.SnapshotConfig,
	metrics *AnalyticsMetrics,
	logger *zap.Logger,
) *SnapshotService {
	return &SnapshotService{
		aggregator: aggregator,
		repo:       repo,
		config:     cfg,
		metrics:    metrics,
		logger:     logger,
		status:     &SnapshotStatus{},
		stopCh:     make(chan struct{}),
	}
}

// SnapshotsResponse wraps a wallet's snapshots for API response
type SnapshotsResponse struct {
	Data  []entities.PortfolioSnapshot `json:"data"`
	Limit int                          `json:"limit"`
}

// SnapshotResponse wraps a single snapshot for API response
type SnapshotResponse struct {
	Data *entities.PortfolioSnapshot `json:"data"`
}

// Start begins the snapshot loop
func (s *SnapshotService) Start(ctx context.Context) error {
	if s.repo == nil {
		return fmt.Errorf("snapshot repository: %w", repositories.ErrNotConfigured)
	}
	if len(s.config.Wallets) == 0 {
		return fmt.Errorf("no wallets configured: %w", repositories.ErrInvalidRequest)
	}

	s.logger.Info("Starting snapshot service",
		zap.Strings("wallets", s.config.Wallets),
		zap.Duration("interval", s.config.Interval),
	)

	s.wg.Add(1)
	go s.runLoop(ctx)

	return nil
}

// Stop gracefully stops the snapshot loop
func (s *SnapshotService) Stop() {
	s.logger.Info("Stopping snapshot service")
	close(s.stopCh)
	s.wg.Wait()
}

// GetStatus returns current worker progress
func (s *SnapshotService) GetStatus() SnapshotStatus {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()
	return SnapshotStatus{
		Rounds:         s.status.Rounds,
		SnapshotsTaken: s.status.SnapshotsTaken,
		Failures:       s.status.Failures,
		LastRoundAt:    s.status.LastRoundAt,
		LastRoundMs:    s.status.LastRoundMs,
	}
}

func (s *SnapshotService) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce snapshots every configured wallet.
// Wallets are processed concurrently; one failing wallet does not stop the others.
func (s *SnapshotService) RunOnce(ctx context.Context) {
	startTime := time.Now()

	var g errgroup.Group
	g.SetLimit(s.config.WorkerCount)

	for _, wallet := range s.config.Wallets {
		wallet := wallet
		g.Go(func() error {
			if _, err := s.SnapshotWallet(ctx, wallet); err != nil {
				s.logger.Error("Failed to snapshot wallet", zap.String("wallet", wallet), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.status.mu.Lock()
	s.status.Rounds++
	s.status.LastRoundAt = time.Now()
	s.status.LastRoundMs = time.Since(startTime).Milliseconds()
	s.status.mu.Unlock()
}

// SnapshotWallet aggregates one wallet and stores its summary
func (s *SnapshotService) SnapshotWallet(ctx context.Context, wallet string) (*entities.PortfolioSnapshot, error) {
	result, err := s.aggregator.Aggregate(ctx, wallet)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to aggregate %s: %w", wallet, err)
	}

	stats := analytics.PortfolioStats(result.Positions)
	snapshot := &entities.PortfolioSnapshot{
		ID:                  uuid.NewString(),
		WalletAddress:       wallet,
		TotalPositions:      stats.TotalPositions,
		ProfitablePositions: stats.ProfitablePositions,
		TotalValueUSDC:      strconv.FormatFloat(stats.TotalValueUSDC, 'f', -1, 64),
		AvgReturn:           stats.AvgReturn,
		Pages:               result.Stats.Pages,
		StopReason:          result.Stats.StopReason,
		TakenAt:             time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, snapshot); err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to store snapshot for %s: %w", wallet, err)
	}

	s.metrics.snapshot("ok")
	s.status.mu.Lock()
	s.status.SnapshotsTaken++
	s.status.mu.Unlock()

	s.logger.Debug("Stored portfolio snapshot",
		zap.String("wallet", wallet),
		zap.Int("positions", snapshot.TotalPositions),
		zap.String("value_usdc", snapshot.TotalValueUSDC),
	)

	return snapshot, nil
}

// GetSnapshots returns a wallet's most recent snapshots, newest first
func (s *SnapshotService) GetSnapshots(ctx context.Context, wallet string, limit int) (*SnapshotsResponse, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("snapshot repository: %w", repositories.ErrNotConfigured)
	}

	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	if limit > MaxSnapshotLimit {
		limit = MaxSnapshotLimit
	}

	snapshots, err := s.repo.ListByWallet(ctx, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if snapshots == nil {
		snapshots = []entities.PortfolioSnapshot{}
	}

	return &SnapshotsResponse{Data: snapshots, Limit: limit}, nil
}

// LatestSnapshot returns a wallet's newest snapshot
func (s *SnapshotService) LatestSnapshot(ctx context.Context, wallet string) (*SnapshotResponse, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("snapshot repository: %w", repositories.ErrNotConfigured)
	}

	snapshot, err := s.repo.Latest(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, fmt.Errorf("no snapshot for %s: %w", wallet, repositories.ErrNotFound)
	}

	return &SnapshotResponse{Data: snapshot}, nil
}

func (s *SnapshotService) recordFailure() {
	s.metrics.snapshot("error")
	s.status.mu.Lock()
	s.status.Failures++
	s.status.mu.Unlock()
}
