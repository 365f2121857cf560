package entities

import (
	"time"
)

// PortfolioSnapshot is a point-in-time summary of a wallet's aggregated positions
type PortfolioSnapshot struct {
	ID                  string    `db:"id" json:"id"`
	WalletAddress       string    `db:"wallet_address" json:"wallet_address"`
	TotalPositions      int       `db:"total_positions" json:"total_positions"`
	ProfitablePositions int       `db:"profitable_positions" json:"profitable_positions"`
	TotalValueUSDC      string    `db:"total_value_usdc" json:"total_value_usdc"` // NUMERIC
	AvgReturn           float64   `db:"avg_return" json:"avg_return"`
	Pages               int       `db:"pages" json:"pages"`
	StopReason          string    `db:"stop_reason" json:"stop_reason"`
	TakenAt             time.Time `db:"taken_at" json:"taken_at"`
}
