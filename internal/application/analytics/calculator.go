package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// weiPerToken scales raw total supply to whole tokens
const weiPerToken = 1e18

// Calculate derives the metrics bundle for one position at now
func Calculate(detail *entities.PositionDetail, now time.Time) entities.DerivedMetrics {
	swaps := detail.PoolSwaps
	sorted := SortSwaps(swaps)
	points := EntryPoints(sorted)
	entryPrices, entryIndexes := splitEntryPoints(points)

	totalInvested := dualUSDC(detail.PnL.TotalInvested)
	avgBuySize := 0.0
	if len(swaps) > 0 {
		avgBuySize = finite(totalInvested / float64(len(swaps)))
	}

	var timePeriodDays int64
	if len(sorted) > 0 {
		timePeriodDays = (sorted[len(sorted)-1].Timestamp - sorted[0].Timestamp) / secondsPerDay
	}

	positionSize := finite(detail.Position.PositionSizePercentage.Float64())
	ageSeconds := detail.Token.AgeSeconds

	best := BestEntry(points)
	worst := WorstEntry(points)
	batches, sameDay := TradingDays(sorted)

	marketCap := finite(detail.Token.MarketCapUSDC.Float64())
	volume24h := 0.0
	if len(detail.PriceHistory) > 0 {
		volume24h = finite(detail.PriceHistory[0].VolumeUSDC.Float64())
	}

	currentValue := finite(detail.PnL.CurrentValueUSDC.Float64())
	unrealized := 0.0
	if detail.PnL.UnrealizedPnL != nil {
		unrealized = finite(detail.PnL.UnrealizedPnL.USDC.Float64())
	}

	insights := entities.AdvancedInsights{
		TaxImplications: TaxImpact(unrealized),
		ExitStrategy:    ExitStrategy(currentValue, totalInvested),
		LiquidityRisk:   LiquidityRisk(volume24h, marketCap),
	}
	if ratio, ok := RiskReward(unrealized, totalInvested); ok {
		insights.RiskReward = &ratio
		insights.RiskRewardDefined = true
	}

	return entities.DerivedMetrics{
		PositionBuilding: entities.PositionBuilding{
			AvgBuySize:       avgBuySize,
			TotalBuys:        len(swaps),
			EntryPrices:      entryPrices,
			EntrySwapIndexes: entryIndexes,
			DCAEffectiveness: DCAEffectiveness(entryPrices),
			TimePeriodDays:   timePeriodDays,
		},
		RiskMetrics: entities.RiskMetrics{
			ConcentrationRisk:     ConcentrationRisk(positionSize),
			PositionSizePercent:   positionSize,
			TokenMaturityScore:    TokenMaturity(ageSeconds),
			TokenAgeSeconds:       ageSeconds,
			DiversificationNeeded: DiversificationNeeded(positionSize),
		},
		Performance: entities.Performance{
			BestEntryIndex:  best.SwapIndex,
			WorstEntryIndex: worst.SwapIndex,
			BestEntryPrice:  best.Price,
			WorstEntryPrice: worst.Price,
			TxBatches:       batches,
			SameDay:         sameDay,
		},
		MarketContext: entities.MarketContext{
			MarketCap:         marketCap,
			Volume24h:         volume24h,
			VolumeToMcapRatio: VolumeToMcapRatio(volume24h, marketCap),
			HoldingPercent:    holdingPercent(detail),
			MarketCapGrowth:   marketCapGrowth(marketCap, detail.PriceHistory),
			Volatility:        Volatility(priceSamples(detail.PriceHistory)),
		},
		AdvancedInsights: insights,
	}
}

// BuildDetails assembles the live view of a position: transactions,
// headline analytics and the derived metrics bundle.
func BuildDetails(detail *entities.PositionDetail, now time.Time) entities.PositionDetails {
	metrics := Calculate(detail, now)

	return entities.PositionDetails{
		TokenAddress: detail.TokenAddress,
		Source:       entities.SourceLive,
		Transactions: TransactionViews(detail.PoolSwaps),
		Analytics:    summarize(detail, now),
		PriceHistory: detail.PriceHistory,
		Advanced:     &metrics,
		ComputedAt:   now.Unix(),
	}
}

// TransactionViews renders swaps for display in upstream order
func TransactionViews(swaps []entities.Swap) []entities.TransactionView {
	views := make([]entities.TransactionView, 0, len(swaps))
	for i, swap := range swaps {
		tokens := swap.TokenAmountFormatted.Value.Abs()
		eth := swap.ETHAmountFormatted.Value.Abs().StringFixed(6)

		price := "N/A"
		if p, ok := EntryPrice(swap); ok {
			price = strconv.FormatFloat(p, 'f', 8, 64)
		}

		view := entities.TransactionView{
			ID:              strconv.Itoa(i),
			BlockNumber:     "N/A",
			TransactionHash: swap.TxHash,
			Timestamp:       time.Unix(swap.Timestamp, 0).UTC().Format(time.RFC3339),
			Type:            strings.ToUpper(string(swap.Type)),
			TokenAmount:     tokens.StringFixed(6),
			PricePerToken:   price,
			GasFee:          "N/A",
		}
		switch swap.Type {
		case entities.SwapBuy:
			view.TotalCost = &eth
		case entities.SwapSell:
			view.TotalReceived = &eth
		}

		views = append(views, view)
	}
	return views
}

func summarize(detail *entities.PositionDetail, now time.Time) entities.DetailAnalytics {
	pnl := detail.PnL

	avgEntry := "0.00"
	switch {
	case detail.Position.AvgCostPerTokenUSDC.Set:
		avgEntry = detail.Position.AvgCostPerTokenUSDC.String()
	case pnl.UnrealizedPnL != nil && pnl.UnrealizedPnL.AverageCostBasis.Set:
		avgEntry = pnl.UnrealizedPnL.AverageCostBasis.String()
	}

	unrealized := "0.00"
	if pnl.UnrealizedPnL != nil {
		unrealized = orDefault(pnl.UnrealizedPnL.USDC, "0.00")
	}

	txCount := pnl.TransactionCount
	if txCount == 0 {
		txCount = len(detail.PoolSwaps)
	}

	return entities.DetailAnalytics{
		AvgEntryPrice:    avgEntry,
		TotalInvested:    dualUSDCString(pnl.TotalInvested),
		TotalRealized:    dualUSDCString(pnl.TotalProceeds),
		RealizedPnL:      dualUSDCString(pnl.RealizedPnL),
		UnrealizedPnL:    unrealized,
		HoldingPeriod:    HoldingPeriod(detail, now),
		TransactionCount: txCount,
	}
}

func holdingPercent(detail *entities.PositionDetail) float64 {
	supply := detail.Token.TotalSupply.Float64()
	if supply <= 0 || !isFinite(supply) {
		return 0
	}
	return finite(detail.Position.BalanceFormatted.Float64() / (supply / weiPerToken) * 100)
}

// marketCapGrowth compares the current market cap with the oldest sample
func marketCapGrowth(marketCap float64, history []entities.PricePoint) float64 {
	if len(history) < 2 {
		return 0
	}
	base := history[len(history)-1].MarketCapUSDC.Float64()
	if base <= 0 {
		return 0
	}
	return finite((marketCap - base) / base * 100)
}

func priceSamples(history []entities.PricePoint) []float64 {
	samples := make([]float64, 0, len(history))
	for _, p := range history {
		if p.PriceUSDC.Set && isFinite(p.PriceUSDC.Float64()) {
			samples = append(samples, p.PriceUSDC.Float64())
		}
	}
	return samples
}

func dualUSDC(a *entities.DetailDualAmount) float64 {
	if a == nil {
		return 0
	}
	return finite(a.USDC.Float64())
}

func dualUSDCString(a *entities.DetailDualAmount) string {
	if a == nil {
		return "0.00"
	}
	return orDefault(a.USDC, "0.00")
}

func orDefault(a entities.Amount, def string) string {
	if !a.Set {
		return def
	}
	return a.String()
}
