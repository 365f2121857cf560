package entities

// Bucket labels used by the derived metrics
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"

	VolatilityUnknown = "UNKNOWN"

	DCAActive      = "ACTIVE_DCA"
	DCASingleEntry = "SINGLE_ENTRY"

	MaturityMature     = "MATURE"
	MaturityDeveloping = "DEVELOPING"
	MaturityNew        = "NEW"

	ExitPartial      = "CONSIDER_PARTIAL_EXIT"
	ExitProfitTaking = "CONSIDER_PROFIT_TAKING"
	ExitHodl         = "HODL"

	TaxSignificant = "SIGNIFICANT"
	TaxModerate    = "MODERATE"
	TaxLow         = "LOW"
)

// DerivedMetrics is the analytics bundle computed for one position
type DerivedMetrics struct {
	PositionBuilding PositionBuilding `json:"positionBuilding"`
	RiskMetrics      RiskMetrics      `json:"riskMetrics"`
	Performance      Performance      `json:"performance"`
	MarketContext    MarketContext    `json:"marketContext"`
	AdvancedInsights AdvancedInsights `json:"advancedInsights"`
}

// PositionBuilding describes how the position was accumulated.
// EntrySwapIndexes[i] is the position of EntryPrices[i] among the
// time-sorted swaps; swaps that could not be priced have no entry.
type PositionBuilding struct {
	AvgBuySize       float64   `json:"avgBuySize"`
	TotalBuys        int       `json:"totalBuys"`
	EntryPrices      []float64 `json:"entryPrices"`
	EntrySwapIndexes []int     `json:"entrySwapIndexes"`
	DCAEffectiveness string    `json:"dcaEffectiveness"`
	TimePeriodDays   int64     `json:"timePeriod"`
}

// RiskMetrics describes concentration and token maturity
type RiskMetrics struct {
	ConcentrationRisk     string  `json:"concentrationRisk"`
	PositionSizePercent   float64 `json:"positionSizePercent"`
	TokenMaturityScore    string  `json:"tokenMaturityScore"`
	TokenAgeSeconds       int64   `json:"tokenAgeSeconds"`
	DiversificationNeeded bool    `json:"diversificationNeeded"`
}

// Performance ranks the position's entries.
// Indexes refer to the time-sorted swaps and are -1 when no swap was priced.
type Performance struct {
	BestEntryIndex  int     `json:"bestEntryIndex"`
	WorstEntryIndex int     `json:"worstEntryIndex"`
	BestEntryPrice  float64 `json:"bestEntryPrice"`
	WorstEntryPrice float64 `json:"worstEntryPrice"`
	TxBatches       int     `json:"txBatches"`
	SameDay         int     `json:"sameDay"`
}

// MarketContext relates the position to its token's market
type MarketContext struct {
	MarketCap         float64 `json:"marketCap"`
	Volume24h         float64 `json:"volume24h"`
	VolumeToMcapRatio float64 `json:"volumeToMcapRatio"`
	HoldingPercent    float64 `json:"holdingPercent"`
	MarketCapGrowth   float64 `json:"marketCapGrowth"`
	Volatility        string  `json:"volatility"`
}

// AdvancedInsights holds the heuristic recommendations.
// RiskReward is nil when nothing was invested.
type AdvancedInsights struct {
	TaxImplications   string   `json:"taxImplications"`
	ExitStrategy      string   `json:"exitStrategy"`
	RiskReward        *float64 `json:"riskReward"`
	RiskRewardDefined bool     `json:"riskRewardDefined"`
	LiquidityRisk     string   `json:"liquidityRisk"`
}

// Holding period states
const (
	HoldingOK          = "ok"
	HoldingAnomaly     = "anomaly"
	HoldingUnavailable = "unavailable"
)

// HoldingPeriod is how long a position has been held
type HoldingPeriod struct {
	Status string `json:"status"`
	Days   int64  `json:"days"`
	Hours  int64  `json:"hours"`
	Label  string `json:"label"`
}

// TransactionView is a display-ready swap
type TransactionView struct {
	ID              string  `json:"id"`
	BlockNumber     string  `json:"blockNumber"`
	TransactionHash string  `json:"transactionHash"`
	Timestamp       string  `json:"timestamp"`
	Type            string  `json:"type"`
	TokenAmount     string  `json:"tokenAmount"`
	PricePerToken   string  `json:"pricePerToken"`
	TotalCost       *string `json:"totalCost,omitempty"`
	TotalReceived   *string `json:"totalReceived,omitempty"`
	GasFee          string  `json:"gasFee"`
}

// DetailAnalytics is the headline summary of a position
type DetailAnalytics struct {
	AvgEntryPrice    string        `json:"avgEntryPrice"`
	TotalInvested    string        `json:"totalInvested"`
	TotalRealized    string        `json:"totalRealized"`
	RealizedPnL      string        `json:"realizedPnL"`
	UnrealizedPnL    string        `json:"unrealizedPnL"`
	HoldingPeriod    HoldingPeriod `json:"holdingPeriod"`
	TransactionCount int           `json:"transactionCount"`
}

// Detail data sources
const (
	SourceLive = "live"
	SourceDemo = "demo"
)

// PositionDetails is what a caller sees when expanding a position.
// Source is "demo" when the illustrative fallback replaced real data.
type PositionDetails struct {
	TokenAddress   string            `json:"tokenAddress"`
	Source         string            `json:"source"`
	FallbackReason string            `json:"fallbackReason,omitempty"`
	Transactions   []TransactionView `json:"transactions"`
	Analytics      DetailAnalytics   `json:"analytics"`
	PriceHistory   []PricePoint      `json:"priceHistory,omitempty"`
	Advanced       *DerivedMetrics   `json:"advanced,omitempty"`
	ComputedAt     int64             `json:"computedAt"`
}

// PortfolioStats summarises an aggregated set of positions
type PortfolioStats struct {
	TotalValueUSDC      float64 `json:"totalValue"`
	ProfitablePositions int     `json:"profitablePositions"`
	TotalPositions      int     `json:"totalPositions"`
	AvgReturn           float64 `json:"avgReturn"`
	ProfitPercentage    float64 `json:"profitPercentage"`
}
