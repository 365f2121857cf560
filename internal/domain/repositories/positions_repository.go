package repositories

import (
	"context"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// PositionsRepository defines the read contract of the upstream positions API
type PositionsRepository interface {
	// FetchPositionsPage retrieves one page of a wallet's positions.
	// Non-2xx responses come back as *UpstreamError; a payload without a
	// data array fails with ErrInvalidFormat.
	FetchPositionsPage(ctx context.Context, walletAddress string, limit, offset int) (*entities.PositionsPage, error)

	// FetchPositionDetail retrieves and validates the detail payload of one position
	FetchPositionDetail(ctx context.Context, walletAddress, tokenAddress string) (*entities.PositionDetail, error)
}
