package repositories

import (
	"context"
	"math/big"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// QuoteProvider defines the interface of a swap-quote API
type QuoteProvider interface {
	// GetQuote forwards an already normalized quote request.
	// A 404 from the provider is reported as ErrLiquidityNotFound.
	GetQuote(ctx context.Context, req entities.QuoteRequest) (*entities.Quote, error)
}

// TokenBalanceReader reads ERC-20 balances on chain
type TokenBalanceReader interface {
	// TokenBalance returns owner's raw balance of token
	TokenBalance(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error)
}
