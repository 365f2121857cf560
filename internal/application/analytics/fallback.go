package analytics

import (
	"time"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// demoHoldingDays is the holding period shown with the demo dataset
const demoHoldingDays = 89

// DemoDetails returns the fixed illustrative dataset shown when a position's
// history cannot be loaded. It is always tagged as demo data and carries the
// reason the live payload was replaced.
func DemoDetails(tokenAddress, reason string, now time.Time) entities.PositionDetails {
	return entities.PositionDetails{
		TokenAddress:   tokenAddress,
		Source:         entities.SourceDemo,
		FallbackReason: reason,
		Transactions:   demoTransactions(),
		Analytics: entities.DetailAnalytics{
			AvgEntryPrice: "0.00133",
			TotalInvested: "2.0045",
			TotalRealized: "0.597",
			RealizedPnL:   "-1.4075",
			UnrealizedPnL: "0.234",
			HoldingPeriod: entities.HoldingPeriod{
				Status: entities.HoldingOK,
				Days:   demoHoldingDays,
				Hours:  demoHoldingDays * 24,
				Label:  "89 days",
			},
			TransactionCount: 3,
		},
		ComputedAt: now.Unix(),
	}
}

func demoTransactions() []entities.TransactionView {
	cost := func(s string) *string { return &s }

	return []entities.TransactionView{
		{
			ID:              "1",
			BlockNumber:     "18123456",
			TransactionHash: "0xabc123...",
			Timestamp:       "2024-01-15T10:30:00Z",
			Type:            "BUY",
			TokenAmount:     "1000.0",
			PricePerToken:   "0.001",
			TotalCost:       cost("1.0"),
			GasFee:          "0.002",
		},
		{
			ID:              "2",
			BlockNumber:     "18987654",
			TransactionHash: "0xdef456...",
			Timestamp:       "2024-02-20T14:15:00Z",
			Type:            "BUY",
			TokenAmount:     "500.0",
			PricePerToken:   "0.002",
			TotalCost:       cost("1.0"),
			GasFee:          "0.0025",
		},
		{
			ID:              "3",
			BlockNumber:     "19456789",
			TransactionHash: "0xghi789...",
			Timestamp:       "2024-03-10T09:45:00Z",
			Type:            "SELL",
			TokenAmount:     "200.0",
			PricePerToken:   "0.003",
			TotalReceived:   cost("0.6"),
			GasFee:          "0.003",
		},
	}
}
