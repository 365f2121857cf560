package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Position is a wallet's holding of one token as reported by the positions API.
// Numeric fields stay as decimal strings on the wire; use ParseAmount at compute time.
type Position struct {
	TokenAddress           string      `json:"tokenAddress"`
	Symbol                 string      `json:"symbol"`
	Name                   string      `json:"name"`
	Image                  string      `json:"image"`
	PositionManager        string      `json:"positionManager"`
	Balance                string      `json:"balance"`          // Raw integer units
	BalanceFormatted       string      `json:"balanceFormatted"` // Human readable
	PositionSizePercentage string      `json:"positionSizePercentage"`
	PnL                    PositionPnL `json:"pnl"`
	Token                  TokenInfo   `json:"token"`
	CreatedAt              int64       `json:"createdAt"`
	UpdatedAt              int64       `json:"updatedAt"`
}

// PositionPnL holds the profit-and-loss summary of a position
type PositionPnL struct {
	CurrentValueETH   string         `json:"currentValueETH"`
	CurrentValueUSDC  string         `json:"currentValueUSDC"`
	CostBasisETH      *string        `json:"costBasisETH,omitempty"`
	UnrealizedPnLETH  *string        `json:"unrealizedPnLETH,omitempty"`
	PercentageReturn  string         `json:"percentageReturn"`
	IsProfit          bool           `json:"isProfit"`
	CalculationMethod string         `json:"calculationMethod"`
	RealizedPnL       *RealizedPnL   `json:"realizedPnL,omitempty"`
	UnrealizedPnL     *UnrealizedPnL `json:"unrealizedPnL,omitempty"`
	TotalInvested     *DualAmount    `json:"totalInvested,omitempty"`
	TotalProceeds     *DualAmount    `json:"totalProceeds,omitempty"`
	NetPnL            *NetPnL        `json:"netPnL,omitempty"`
}

// DualAmount is a value quoted in both ETH and USDC
type DualAmount struct {
	ETH  string `json:"eth"`
	USDC string `json:"usdc"`
}

// RealizedPnL is the closed part of a position's PnL
type RealizedPnL struct {
	ETH     string            `json:"eth"`
	USDC    string            `json:"usdc"`
	Details []RealizedPnLItem `json:"details,omitempty"`
}

// RealizedPnLItem is a single realized sale
type RealizedPnLItem struct {
	Timestamp    string  `json:"timestamp"`
	TokensAmount float64 `json:"tokensAmount"`
	ETHReceived  float64 `json:"ethReceived"`
	CostBasisETH float64 `json:"costBasisETH"`
	Profit       float64 `json:"profit"`
	TxHash       string  `json:"txHash"`
}

// UnrealizedPnL is the open part of a position's PnL
type UnrealizedPnL struct {
	ETH              string `json:"eth"`
	USDC             string `json:"usdc"`
	AverageCostBasis string `json:"averageCostBasis"`
	CurrentValue     string `json:"currentValue"`
}

// NetPnL is realized plus unrealized PnL
type NetPnL struct {
	ETH              string `json:"eth"`
	USDC             string `json:"usdc"`
	PercentageReturn string `json:"percentageReturn"`
}

// TokenInfo holds market data for the position's token
type TokenInfo struct {
	MarketCapETH  *string `json:"marketCapETH,omitempty"`
	MarketCapUSDC *string `json:"marketCapUSDC,omitempty"`
	Price         string  `json:"price"`
	TotalSupply   string  `json:"totalSupply"`
}

// PositionsPage is one page of the paginated positions endpoint
type PositionsPage struct {
	Data       []Position    `json:"data"`
	Pagination PageCursor    `json:"pagination"`
	Meta       PositionsMeta `json:"meta"`
}

// PageCursor is the limit/offset pair of a positions request
type PageCursor struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PositionsMeta describes where a positions page came from
type PositionsMeta struct {
	Network   string `json:"network"`
	Timestamp int64  `json:"timestamp"`
}

// ParseAmount parses a decimal string into a float64.
// Empty or malformed input yields 0. Values far beyond float64 precision
// (cost bases around 1e40 have been observed) are still accepted.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
