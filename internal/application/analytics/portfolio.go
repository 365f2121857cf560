package analytics

import (
	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// PortfolioStats summarises an aggregated position set
func PortfolioStats(positions []entities.Position) entities.PortfolioStats {
	stats := entities.PortfolioStats{TotalPositions: len(positions)}
	if len(positions) == 0 {
		return stats
	}

	var returns float64
	for _, pos := range positions {
		stats.TotalValueUSDC += entities.ParseAmount(pos.PnL.CurrentValueUSDC)
		returns += entities.ParseAmount(pos.PnL.PercentageReturn)
		if pos.PnL.IsProfit {
			stats.ProfitablePositions++
		}
	}

	n := float64(len(positions))
	stats.AvgReturn = returns / n
	stats.ProfitPercentage = float64(stats.ProfitablePositions) / n * 100

	return stats
}
