package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

// Ensure SnapshotRepo implements SnapshotRepository
var _ repositories.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implements SnapshotRepository using PostgreSQL
type SnapshotRepo struct {
	db *sqlx.DB
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(db *sqlx.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Insert stores a new snapshot, assigning an id and timestamp when missing
func (r *SnapshotRepo) Insert(ctx context.Context, snapshot *entities.PortfolioSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = time.Now().UTC()
	}

	query := `
		INSERT INTO portfolio_snapshots (
			id, wallet_address, total_positions, profitable_positions,
			total_value_usdc, avg_return, pages, stop_reason, taken_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.WalletAddress,
		snapshot.TotalPositions,
		snapshot.ProfitablePositions,
		snapshot.TotalValueUSDC,
		snapshot.AvgReturn,
		snapshot.Pages,
		snapshot.StopReason,
		snapshot.TakenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// ListByWallet returns the most recent snapshots of a wallet, newest first
func (r *SnapshotRepo) ListByWallet(ctx context.Context, walletAddress string, limit int) ([]entities.PortfolioSnapshot, error) {
	query := `
		SELECT id, wallet_address, total_positions, profitable_positions,
			total_value_usdc, avg_return, pages, stop_reason, taken_at
		FROM portfolio_snapshots
		WHERE wallet_address = $1
		ORDER BY taken_at DESC
		LIMIT $2
	`

	snapshots := []entities.PortfolioSnapshot{}
	if err := r.db.SelectContext(ctx, &snapshots, query, walletAddress, limit); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return snapshots, nil
}

// Latest returns the newest snapshot of a wallet, or nil if none exists
func (r *SnapshotRepo) Latest(ctx context.Context, walletAddress string) (*entities.PortfolioSnapshot, error) {
	var snapshot entities.PortfolioSnapshot
	query := `
		SELECT id, wallet_address, total_positions, profitable_positions,
			total_value_usdc, avg_return, pages, stop_reason, taken_at
		FROM portfolio_snapshots
		WHERE wallet_address = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &snapshot, query, walletAddress); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return &snapshot, nil
}
