package testutil

import (
	"fmt"
	"time"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// Common test addresses
const (
	FlayAddress  = "0xf1a7000000950c7ad8aff13118bb7ab561a448ee"
	USDCAddress  = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	AliceAddress = "0x1111111111111111111111111111111111111111"
	BobAddress   = "0x2222222222222222222222222222222222222222"
)

// CreateTestPosition creates a test position with default values
func CreateTestPosition(opts ...PositionOption) entities.Position {
	p := entities.Position{
		TokenAddress:           FlayAddress,
		Symbol:                 "FLAY",
		Name:                   "Flay",
		Balance:                "150000000000000000000",
		BalanceFormatted:       "150",
		PositionSizePercentage: "4.2",
		PnL: entities.PositionPnL{
			CurrentValueETH:   "0.05",
			CurrentValueUSDC:  "120.5",
			PercentageReturn:  "20.5",
			IsProfit:          true,
			CalculationMethod: "fifo",
		},
		Token: entities.TokenInfo{
			Price:       "0.8",
			TotalSupply: "100000000000000000000000000000",
		},
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC).Unix(),
		UpdatedAt: time.Date(2024, 3, 10, 9, 45, 0, 0, time.UTC).Unix(),
	}

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

type PositionOption func(*entities.Position)

func WithTokenAddress(addr string) PositionOption {
	return func(p *entities.Position) {
		p.TokenAddress = addr
	}
}

func WithValueUSDC(value string) PositionOption {
	return func(p *entities.Position) {
		p.PnL.CurrentValueUSDC = value
	}
}

func WithReturn(percentage string, isProfit bool) PositionOption {
	return func(p *entities.Position) {
		p.PnL.PercentageReturn = percentage
		p.PnL.IsProfit = isProfit
	}
}

// CreateTestPositions creates n positions with distinct token addresses, starting at index from
func CreateTestPositions(from, n int) []entities.Position {
	positions := make([]entities.Position, 0, n)
	for i := from; i < from+n; i++ {
		positions = append(positions, CreateTestPosition(WithTokenAddress(fmt.Sprintf("0x%040x", i+1))))
	}
	return positions
}

// CreateTestDetail creates a position-detail payload with two buys
func CreateTestDetail(opts ...DetailOption) *entities.PositionDetail {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	d := &entities.PositionDetail{
		TokenAddress: FlayAddress,
		PnL: entities.DetailPnL{
			CurrentValueUSDC: entities.NewAmount(250),
			TransactionCount: 2,
			TotalInvested:    &entities.DetailDualAmount{ETH: entities.NewAmount(0.04), USDC: entities.NewAmount(100)},
			UnrealizedPnL:    &entities.DetailUnrealized{USDC: entities.NewAmount(150)},
		},
		Position: entities.DetailPosition{
			PositionSizePercentage: entities.NewAmount(4.2),
			BalanceFormatted:       entities.NewAmount(200),
			AvgCostPerTokenUSDC:    entities.NewAmount(0.5),
		},
		Token: entities.DetailToken{
			MarketCapUSDC: entities.NewAmount(1000000),
			TotalSupply:   entities.NewAmount(1e27),
			AgeSeconds:    45 * 86400,
		},
		Timeline: entities.Timeline{PositionCreated: &created},
		PriceHistory: []entities.PricePoint{
			{PriceUSDC: entities.NewAmount(0.8), VolumeUSDC: entities.NewAmount(20000), MarketCapUSDC: entities.NewAmount(1000000)},
			{PriceUSDC: entities.NewAmount(0.7), VolumeUSDC: entities.NewAmount(15000), MarketCapUSDC: entities.NewAmount(900000)},
			{PriceUSDC: entities.NewAmount(0.6), VolumeUSDC: entities.NewAmount(12000), MarketCapUSDC: entities.NewAmount(800000)},
		},
		PoolSwaps: []entities.Swap{
			{
				TxHash:               "0xaaaa",
				Timestamp:            created,
				Type:                 entities.SwapBuy,
				TokenAmountFormatted: entities.NewAmount(100),
				ETHAmountFormatted:   entities.NewAmount(-0.01),
			},
			{
				TxHash:               "0xbbbb",
				Timestamp:            created + 86400,
				Type:                 entities.SwapBuy,
				TokenAmountFormatted: entities.NewAmount(100),
				ETHAmountFormatted:   entities.NewAmount(-0.03),
			},
		},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

type DetailOption func(*entities.PositionDetail)

func WithSwaps(swaps ...entities.Swap) DetailOption {
	return func(d *entities.PositionDetail) {
		d.PoolSwaps = swaps
	}
}

func WithInvestedUSDC(v float64) DetailOption {
	return func(d *entities.PositionDetail) {
		d.PnL.TotalInvested = &entities.DetailDualAmount{USDC: entities.NewAmount(v)}
	}
}
