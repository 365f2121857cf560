package repositories

import (
	"context"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// SnapshotRepository defines the interface for portfolio snapshot storage
type SnapshotRepository interface {
	// Insert stores a new snapshot
	Insert(ctx context.Context, snapshot *entities.PortfolioSnapshot) error

	// ListByWallet returns the most recent snapshots of a wallet, newest first
	ListByWallet(ctx context.Context, walletAddress string, limit int) ([]entities.PortfolioSnapshot, error)

	// Latest returns the newest snapshot of a wallet, or nil if none exists
	Latest(ctx context.Context, walletAddress string) (*entities.PortfolioSnapshot, error)
}
