package entities

// SwapType is the side of a pool swap
type SwapType string

const (
	SwapBuy  SwapType = "Buy"
	SwapSell SwapType = "Sell"
)

// Swap is one pool swap from a position's history.
// Amount signs are not meaningful; Type decides buy or sell semantics.
type Swap struct {
	TxHash               string   `json:"txHash"`
	Timestamp            int64    `json:"timestamp"` // Unix seconds
	Type                 SwapType `json:"type"`
	TokenAmountFormatted Amount   `json:"tokenAmountFormatted"`
	ETHAmountFormatted   Amount   `json:"ethAmountFormatted"`
}

// PricePoint is one entry of a token's price history, newest first
type PricePoint struct {
	PriceUSDC     Amount `json:"priceUSDC"`
	VolumeUSDC    Amount `json:"volumeUSDC"`
	MarketCapUSDC Amount `json:"marketCapUSDC"`
	Timestamp     int64  `json:"timestamp,omitempty"`
}

// DetailPnL is the PnL block of the position-detail payload
type DetailPnL struct {
	CurrentValueUSDC Amount            `json:"currentValueUSDC"`
	TransactionCount int               `json:"transactionCount,omitempty"`
	TotalInvested    *DetailDualAmount `json:"totalInvested,omitempty"`
	TotalProceeds    *DetailDualAmount `json:"totalProceeds,omitempty"`
	RealizedPnL      *DetailDualAmount `json:"realizedPnL,omitempty"`
	UnrealizedPnL    *DetailUnrealized `json:"unrealizedPnL,omitempty"`
}

// DetailDualAmount is an ETH/USDC pair in the detail payload
type DetailDualAmount struct {
	ETH  Amount `json:"eth"`
	USDC Amount `json:"usdc"`
}

// DetailUnrealized is the unrealized PnL block of the detail payload
type DetailUnrealized struct {
	ETH              Amount `json:"eth"`
	USDC             Amount `json:"usdc"`
	AverageCostBasis Amount `json:"averageCostBasis"`
	CurrentValue     Amount `json:"currentValue"`
}

// DetailPosition is the position block of the detail payload
type DetailPosition struct {
	PositionSizePercentage Amount `json:"positionSizePercentage"`
	BalanceFormatted       Amount `json:"balanceFormatted"`
	AvgCostPerTokenUSDC    Amount `json:"avgCostPerTokenUSDC"`
}

// DetailToken is the token block of the detail payload
type DetailToken struct {
	MarketCapUSDC Amount `json:"marketCapUSDC"`
	TotalSupply   Amount `json:"totalSupply"`
	AgeSeconds    int64  `json:"ageSeconds,omitempty"`
}

// Timeline describes when a position was opened
type Timeline struct {
	PositionCreated    *int64 `json:"positionCreated,omitempty"`
	PositionAgeSeconds *int64 `json:"positionAgeSeconds,omitempty"`
}

// PositionDetail is the validated payload of the position-detail endpoint.
// Every block is optional upstream; absent blocks are left zero.
type PositionDetail struct {
	TokenAddress string         `json:"tokenAddress"`
	PnL          DetailPnL      `json:"pnl"`
	Position     DetailPosition `json:"position"`
	Token        DetailToken    `json:"token"`
	Timeline     Timeline       `json:"timeline"`
	PriceHistory []PricePoint   `json:"priceHistory"`
	PoolSwaps    []Swap         `json:"poolSwaps"`
}
