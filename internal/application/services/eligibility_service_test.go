package services

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
	"github.com/bimakw/position-analytics/internal/testutil"
)

// tokens returns n whole 18-decimal tokens in raw units
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func balanceOf(n int64) *testutil.MockTokenBalanceReader {
	return &testutil.MockTokenBalanceReader{
		TokenBalanceFunc: func(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error) {
			return tokens(n), nil
		},
	}
}

// quoteBuying answers discovery with 0.5 tokens per 0.001 ETH and the executable quote with bought
func quoteBuying(bought string) *testutil.MockQuoteProvider {
	provider := testutil.NewMockQuoteProvider()
	provider.GetQuoteFunc = func(ctx context.Context, req entities.QuoteRequest) (*entities.Quote, error) {
		if req.SellAmount == discoverySellWei {
			return &entities.Quote{BuyAmount: "500000000000000000"}, nil
		}
		return &entities.Quote{BuyAmount: bought, SellAmount: req.SellAmount, Raw: []byte(`{"ok":true}`)}, nil
	}
	return provider
}

func TestEligibilityService_CheckEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("below minimum", func(t *testing.T) {
		service := NewEligibilityService(balanceOf(40), nil, testChainConfig(), zap.NewNop())

		got, err := service.CheckEligibility(ctx, testutil.AliceAddress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.HasEnough {
			t.Error("expected HasEnough false")
		}
		if got.Balance != "40" || got.MinBalance != "100" || got.Deficit != "60" {
			t.Errorf("unexpected amounts: balance=%s min=%s deficit=%s", got.Balance, got.MinBalance, got.Deficit)
		}
		if got.TokenSymbol != "FLAY" {
			t.Errorf("expected FLAY, got %s", got.TokenSymbol)
		}
	})

	t.Run("at or above minimum has no deficit", func(t *testing.T) {
		service := NewEligibilityService(balanceOf(100), nil, testChainConfig(), zap.NewNop())

		got, err := service.CheckEligibility(ctx, testutil.AliceAddress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.HasEnough || got.Deficit != "0" {
			t.Errorf("expected eligible with zero deficit, got %+v", got)
		}
	})

	t.Run("no balance reader", func(t *testing.T) {
		service := NewEligibilityService(nil, nil, testChainConfig(), zap.NewNop())

		if _, err := service.CheckEligibility(ctx, testutil.AliceAddress); !errors.Is(err, repositories.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("rpc failure", func(t *testing.T) {
		reader := &testutil.MockTokenBalanceReader{
			TokenBalanceFunc: func(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error) {
				return nil, errors.New("connection refused")
			},
		}
		service := NewEligibilityService(reader, nil, testChainConfig(), zap.NewNop())

		if _, err := service.CheckEligibility(ctx, testutil.AliceAddress); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestEligibilityService_TopUpQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("prices the deficit with a slippage buffer", func(t *testing.T) {
		provider := quoteBuying("66000000000000000000")
		service := NewEligibilityService(balanceOf(40), provider, testChainConfig(), zap.NewNop())

		resp, err := service.TopUpQuote(ctx, testutil.AliceAddress, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := resp.Data
		if got.TokensPerETH != "500" {
			t.Errorf("expected 500 tokens per ETH, got %s", got.TokensPerETH)
		}
		// 60 / 500 * 1.1 ETH
		if got.SellAmountWei != "132000000000000000" {
			t.Errorf("expected sell amount 132000000000000000, got %s", got.SellAmountWei)
		}
		if got.ExpectedTokens != "66" {
			t.Errorf("expected 66 tokens, got %s", got.ExpectedTokens)
		}
		if got.InsufficientAmount {
			t.Error("expected sufficient amount")
		}
		if string(got.Quote) != `{"ok":true}` {
			t.Errorf("expected raw quote passthrough, got %s", got.Quote)
		}

		if len(provider.Requests) != 2 {
			t.Fatalf("expected 2 quote requests, got %d", len(provider.Requests))
		}
		exec := provider.Requests[1]
		if exec.ChainID != "8453" || exec.SellToken != nativeSentinel || exec.BuyToken != testutil.FlayAddress || exec.Taker != testutil.AliceAddress {
			t.Errorf("unexpected executable request: %+v", exec)
		}
	})

	t.Run("flags a shortfall", func(t *testing.T) {
		service := NewEligibilityService(balanceOf(40), quoteBuying("50000000000000000000"), testChainConfig(), zap.NewNop())

		resp, err := service.TopUpQuote(ctx, testutil.AliceAddress, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.Data.InsufficientAmount {
			t.Error("expected insufficient amount")
		}
		if resp.Data.Shortfall != "10" {
			t.Errorf("expected shortfall 10, got %s", resp.Data.Shortfall)
		}
	})

	t.Run("sell amount override", func(t *testing.T) {
		provider := quoteBuying("70000000000000000000")
		service := NewEligibilityService(balanceOf(40), provider, testChainConfig(), zap.NewNop())

		resp, err := service.TopUpQuote(ctx, testutil.AliceAddress, "200000000000000000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Data.SellAmountWei != "200000000000000000" {
			t.Errorf("expected override amount, got %s", resp.Data.SellAmountWei)
		}
		if provider.Requests[1].SellAmount != "200000000000000000" {
			t.Errorf("expected override forwarded, got %s", provider.Requests[1].SellAmount)
		}
	})

	t.Run("invalid override", func(t *testing.T) {
		service := NewEligibilityService(balanceOf(40), quoteBuying("1"), testChainConfig(), zap.NewNop())

		if _, err := service.TopUpQuote(ctx, testutil.AliceAddress, "0.5"); !errors.Is(err, repositories.ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("eligible wallet needs no quote", func(t *testing.T) {
		provider := quoteBuying("1")
		service := NewEligibilityService(balanceOf(150), provider, testChainConfig(), zap.NewNop())

		resp, err := service.TopUpQuote(ctx, testutil.AliceAddress, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.Data.Eligibility.HasEnough {
			t.Error("expected eligible wallet")
		}
		if len(provider.Requests) != 0 {
			t.Errorf("expected no quote requests, got %d", len(provider.Requests))
		}
	})

	t.Run("no liquidity during discovery", func(t *testing.T) {
		provider := testutil.NewMockQuoteProvider()
		provider.GetQuoteFunc = func(ctx context.Context, req entities.QuoteRequest) (*entities.Quote, error) {
			return &entities.Quote{BuyAmount: "0"}, nil
		}
		service := NewEligibilityService(balanceOf(40), provider, testChainConfig(), zap.NewNop())

		if _, err := service.TopUpQuote(ctx, testutil.AliceAddress, ""); !errors.Is(err, repositories.ErrLiquidityNotFound) {
			t.Errorf("expected ErrLiquidityNotFound, got %v", err)
		}
	})
}
