package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

func sampleDetail() *entities.PositionDetail {
	amt := entities.NewAmount

	return &entities.PositionDetail{
		TokenAddress: "0xtoken",
		PnL: entities.DetailPnL{
			CurrentValueUSDC: amt(600),
			TransactionCount: 2,
			TotalInvested:    &entities.DetailDualAmount{USDC: amt(100)},
			UnrealizedPnL:    &entities.DetailUnrealized{USDC: amt(500)},
		},
		Position: entities.DetailPosition{
			PositionSizePercentage: amt(12),
			BalanceFormatted:       amt(1000),
			AvgCostPerTokenUSDC:    amt(0.02),
		},
		Token: entities.DetailToken{
			MarketCapUSDC: amt(200000),
			TotalSupply:   amt(1e24),
			AgeSeconds:    40 * 86400,
		},
		PriceHistory: []entities.PricePoint{
			{PriceUSDC: amt(3), VolumeUSDC: amt(5000), MarketCapUSDC: amt(200000)},
			{PriceUSDC: amt(2), VolumeUSDC: amt(4000), MarketCapUSDC: amt(150000)},
			{PriceUSDC: amt(1), VolumeUSDC: amt(3000), MarketCapUSDC: amt(100000)},
		},
		PoolSwaps: []entities.Swap{
			swap(3*86400, entities.SwapBuy, 3, 100),
			swap(86400, entities.SwapBuy, 1, 100),
		},
	}
}

func TestCalculate(t *testing.T) {
	now := time.Unix(10*86400, 0)
	m := Calculate(sampleDetail(), now)

	t.Run("position building", func(t *testing.T) {
		assert.Equal(t, 2, m.PositionBuilding.TotalBuys)
		assert.InDelta(t, 50.0, m.PositionBuilding.AvgBuySize, 1e-9)
		assert.Equal(t, int64(2), m.PositionBuilding.TimePeriodDays)
		assert.Equal(t, entities.DCAActive, m.PositionBuilding.DCAEffectiveness)
		require.Len(t, m.PositionBuilding.EntryPrices, 2)
		assert.InDelta(t, 0.01, m.PositionBuilding.EntryPrices[0], 1e-12)
		assert.Equal(t, []int{0, 1}, m.PositionBuilding.EntrySwapIndexes)
	})

	t.Run("risk", func(t *testing.T) {
		assert.Equal(t, entities.RiskHigh, m.RiskMetrics.ConcentrationRisk)
		assert.False(t, m.RiskMetrics.DiversificationNeeded)
		assert.Equal(t, entities.MaturityMature, m.RiskMetrics.TokenMaturityScore)
	})

	t.Run("performance", func(t *testing.T) {
		assert.Equal(t, 0, m.Performance.BestEntryIndex)
		assert.Equal(t, 1, m.Performance.WorstEntryIndex)
		assert.InDelta(t, 0.03, m.Performance.WorstEntryPrice, 1e-12)
		assert.Equal(t, 2, m.Performance.TxBatches)
		assert.Equal(t, 1, m.Performance.SameDay)
	})

	t.Run("market context", func(t *testing.T) {
		assert.InDelta(t, 5000.0, m.MarketContext.Volume24h, 1e-9)
		assert.InDelta(t, 2.5, m.MarketContext.VolumeToMcapRatio, 1e-9)
		assert.InDelta(t, 0.1, m.MarketContext.HoldingPercent, 1e-9)
		assert.InDelta(t, 100.0, m.MarketContext.MarketCapGrowth, 1e-9)
		assert.Equal(t, entities.RiskMedium, m.MarketContext.Volatility)
	})

	t.Run("insights", func(t *testing.T) {
		assert.Equal(t, entities.ExitPartial, m.AdvancedInsights.ExitStrategy)
		assert.Equal(t, entities.TaxModerate, m.AdvancedInsights.TaxImplications)
		assert.Equal(t, entities.RiskMedium, m.AdvancedInsights.LiquidityRisk)
		require.NotNil(t, m.AdvancedInsights.RiskReward)
		assert.True(t, m.AdvancedInsights.RiskRewardDefined)
		assert.InDelta(t, 5.0, *m.AdvancedInsights.RiskReward, 1e-9)
	})
}

func TestCalculate_UnpricedFirstSwap(t *testing.T) {
	detail := sampleDetail()
	detail.PoolSwaps = append(detail.PoolSwaps, swap(3600, entities.SwapBuy, 2, 0))

	m := Calculate(detail, time.Unix(10*86400, 0))

	assert.Equal(t, 3, m.PositionBuilding.TotalBuys)
	assert.Len(t, m.PositionBuilding.EntryPrices, 2)
	assert.Equal(t, []int{1, 2}, m.PositionBuilding.EntrySwapIndexes)
	assert.Equal(t, 1, m.Performance.BestEntryIndex)
	assert.InDelta(t, 0.01, m.Performance.BestEntryPrice, 1e-12)
	assert.Equal(t, 2, m.Performance.WorstEntryIndex)
	assert.InDelta(t, 0.03, m.Performance.WorstEntryPrice, 1e-12)
}

func TestCalculate_NonFiniteInputsEncode(t *testing.T) {
	detail := sampleDetail()
	detail.Token.MarketCapUSDC = entities.NewAmount(1e-320)
	detail.Token.TotalSupply = entities.NewAmount(1e-320)

	m := Calculate(detail, time.Unix(10*86400, 0))

	assert.Zero(t, m.MarketContext.VolumeToMcapRatio)
	assert.Zero(t, m.MarketContext.HoldingPercent)

	_, err := json.Marshal(m)
	require.NoError(t, err)
}

func TestCalculate_EmptyPayload(t *testing.T) {
	m := Calculate(&entities.PositionDetail{}, time.Now())

	assert.Zero(t, m.PositionBuilding.TotalBuys)
	assert.Zero(t, m.PositionBuilding.AvgBuySize)
	assert.Empty(t, m.PositionBuilding.EntryPrices)
	assert.Empty(t, m.PositionBuilding.EntrySwapIndexes)
	assert.Equal(t, entities.DCASingleEntry, m.PositionBuilding.DCAEffectiveness)
	assert.Equal(t, -1, m.Performance.BestEntryIndex)
	assert.Equal(t, entities.VolatilityUnknown, m.MarketContext.Volatility)
	assert.Nil(t, m.AdvancedInsights.RiskReward)
	assert.False(t, m.AdvancedInsights.RiskRewardDefined)
}

func TestBuildDetails(t *testing.T) {
	now := time.Unix(10*86400, 0)
	created := int64(86400)
	detail := sampleDetail()
	detail.Timeline.PositionCreated = &created

	got := BuildDetails(detail, now)

	assert.Equal(t, entities.SourceLive, got.Source)
	assert.Empty(t, got.FallbackReason)
	require.NotNil(t, got.Advanced)
	require.Len(t, got.Transactions, 2)

	first := got.Transactions[0]
	assert.Equal(t, "0", first.ID)
	assert.Equal(t, "BUY", first.Type)
	assert.Equal(t, "100.000000", first.TokenAmount)
	assert.Equal(t, "0.03000000", first.PricePerToken)
	require.NotNil(t, first.TotalCost)
	assert.Equal(t, "3.000000", *first.TotalCost)
	assert.Nil(t, first.TotalReceived)

	assert.Equal(t, "0.02", got.Analytics.AvgEntryPrice)
	assert.Equal(t, "100", got.Analytics.TotalInvested)
	assert.Equal(t, "0.00", got.Analytics.TotalRealized)
	assert.Equal(t, "500", got.Analytics.UnrealizedPnL)
	assert.Equal(t, 2, got.Analytics.TransactionCount)
	assert.Equal(t, "9 days", got.Analytics.HoldingPeriod.Label)
}

func TestTransactionViews_Sell(t *testing.T) {
	views := TransactionViews([]entities.Swap{swap(0, entities.SwapSell, -0.5, -250)})

	require.Len(t, views, 1)
	assert.Equal(t, "SELL", views[0].Type)
	assert.Nil(t, views[0].TotalCost)
	require.NotNil(t, views[0].TotalReceived)
	assert.Equal(t, "0.500000", *views[0].TotalReceived)
	assert.Equal(t, "1970-01-01T00:00:00Z", views[0].Timestamp)
}

func TestDemoDetails(t *testing.T) {
	got := DemoDetails("0xtoken", "upstream unavailable", time.Now())

	assert.Equal(t, entities.SourceDemo, got.Source)
	assert.Equal(t, "upstream unavailable", got.FallbackReason)
	assert.Nil(t, got.Advanced)
	require.Len(t, got.Transactions, 3)
	assert.Equal(t, "0xabc123...", got.Transactions[0].TransactionHash)
	assert.Equal(t, "SELL", got.Transactions[2].Type)
	assert.Equal(t, "-1.4075", got.Analytics.RealizedPnL)
	assert.Equal(t, "89 days", got.Analytics.HoldingPeriod.Label)
	assert.Equal(t, 3, got.Analytics.TransactionCount)
}

func TestPortfolioStats(t *testing.T) {
	positions := []entities.Position{
		{PnL: entities.PositionPnL{CurrentValueUSDC: "100.5", PercentageReturn: "20", IsProfit: true}},
		{PnL: entities.PositionPnL{CurrentValueUSDC: "50", PercentageReturn: "-10"}},
		{PnL: entities.PositionPnL{CurrentValueUSDC: "bogus", PercentageReturn: "", IsProfit: true}},
	}

	stats := PortfolioStats(positions)
	assert.Equal(t, 3, stats.TotalPositions)
	assert.Equal(t, 2, stats.ProfitablePositions)
	assert.InDelta(t, 150.5, stats.TotalValueUSDC, 1e-9)
	assert.InDelta(t, 10.0/3, stats.AvgReturn, 1e-9)
	assert.InDelta(t, 200.0/3, stats.ProfitPercentage, 1e-9)

	empty := PortfolioStats(nil)
	assert.Zero(t, empty.TotalPositions)
	assert.Zero(t, empty.AvgReturn)
}
