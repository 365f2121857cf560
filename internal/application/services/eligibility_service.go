package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

const (
	// Price discovery sells 0.001 ETH
	discoverySellWei = "1000000000000000"
	discoveryETH     = "0.001"

	// Extra ETH bought on top of the deficit to absorb slippage
	slippageBuffer = "1.1"

	weiDecimals = 18
)

// EligibilityService checks a wallet against the token gate and prices top-ups.
// The balance reader may be nil when no RPC node is configured.
type EligibilityService struct {
	balances repositories.TokenBalanceReader
	quotes   repositories.QuoteProvider
	chain    config.ChainConfig
	logger   *zap.Logger
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(
	balances repositories.TokenBalanceReader,
	quotes repositories.QuoteProvider,
	chain config.ChainConfig,
	logger *zap.Logger,
) *EligibilityService {
	return &EligibilityService{
		balances: balances,
		quotes:   quotes,
		chain:    chain,
		logger:   logger,
	}
}

// EligibilityResponse wraps eligibility for API response
type EligibilityResponse struct {
	Data entities.Eligibility `json:"data"`
}

// TopUpQuoteResponse wraps a top-up quote for API response
type TopUpQuoteResponse struct {
	Data entities.TopUpQuote `json:"data"`
}

// CheckEligibility reads the wallet's gate-token balance and compares it with the minimum
func (s *EligibilityService) CheckEligibility(ctx context.Context, wallet string) (*entities.Eligibility, error) {
	if s.balances == nil {
		return nil, fmt.Errorf("token balance reader: %w", repositories.ErrNotConfigured)
	}

	minBalance, err := decimal.NewFromString(s.chain.GateMinBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid gate minimum balance %q: %w", s.chain.GateMinBalance, err)
	}

	wei, err := s.balances.TokenBalance(ctx, s.chain.GateTokenAddress, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance: %w", s.chain.GateTokenSymbol, err)
	}

	balance := decimal.NewFromBigInt(wei, -s.chain.GateTokenDecimals)
	deficit := decimal.Max(minBalance.Sub(balance), decimal.Zero)

	return &entities.Eligibility{
		WalletAddress: wallet,
		TokenAddress:  s.chain.GateTokenAddress,
		TokenSymbol:   s.chain.GateTokenSymbol,
		Balance:       balance.String(),
		MinBalance:    minBalance.String(),
		HasEnough:     balance.GreaterThanOrEqual(minBalance),
		Deficit:       deficit.String(),
		BalanceWei:    wei,
	}, nil
}

// GetEligibility returns the wallet's eligibility for the API
func (s *EligibilityService) GetEligibility(ctx context.Context, wallet string) (*EligibilityResponse, error) {
	eligibility, err := s.CheckEligibility(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &EligibilityResponse{Data: *eligibility}, nil
}

// TopUpQuote prices buying the wallet's deficit with ETH.
// A small discovery quote yields tokens per ETH; the deficit plus a 10% buffer
// is then quoted for execution. sellAmountWei, when set, replaces the computed amount.
func (s *EligibilityService) TopUpQuote(ctx context.Context, wallet, sellAmountWei string) (*TopUpQuoteResponse, error) {
	eligibility, err := s.CheckEligibility(ctx, wallet)
	if err != nil {
		return nil, err
	}

	result := entities.TopUpQuote{Eligibility: *eligibility}
	if eligibility.HasEnough {
		return &TopUpQuoteResponse{Data: result}, nil
	}

	tokensPerETH, err := s.discoverRate(ctx, wallet)
	if err != nil {
		return nil, err
	}
	result.TokensPerETH = tokensPerETH.String()

	deficit, _ := decimal.NewFromString(eligibility.Deficit)
	ethNeeded := deficit.Div(tokensPerETH).
		Mul(decimal.RequireFromString(slippageBuffer)).
		Shift(weiDecimals).
		Floor()

	sellWei := ethNeeded.String()
	if strings.TrimSpace(sellAmountWei) != "" {
		override, err := decimal.NewFromString(sellAmountWei)
		if err != nil || !override.IsPositive() || !override.Equal(override.Floor()) {
			return nil, fmt.Errorf("sellAmount must be a positive integer amount of wei: %w", repositories.ErrInvalidRequest)
		}
		sellWei = override.String()
	}
	result.SellAmountWei = sellWei

	quote, err := s.quotes.GetQuote(ctx, entities.QuoteRequest{
		ChainID:    strconv.FormatInt(s.chain.ChainID, 10),
		SellToken:  s.chain.NativeToken,
		BuyToken:   s.chain.GateTokenAddress,
		SellAmount: sellWei,
		Taker:      wallet,
	})
	if err != nil {
		return nil, err
	}

	bought, err := s.tokenAmount(quote.BuyAmount)
	if err != nil {
		return nil, err
	}
	result.ExpectedTokens = bought.String()
	result.Quote = quote.Raw

	balance, _ := decimal.NewFromString(eligibility.Balance)
	minBalance, _ := decimal.NewFromString(eligibility.MinBalance)
	if after := balance.Add(bought); after.LessThan(minBalance) {
		result.InsufficientAmount = true
		result.Shortfall = minBalance.Sub(after).String()
	}

	s.logger.Info("Priced gate token top-up",
		zap.String("wallet", wallet),
		zap.String("deficit", eligibility.Deficit),
		zap.String("sell_wei", sellWei),
		zap.String("expected_tokens", result.ExpectedTokens),
		zap.Bool("insufficient", result.InsufficientAmount),
	)

	return &TopUpQuoteResponse{Data: result}, nil
}

// discoverRate returns how many gate tokens 1 ETH buys
func (s *EligibilityService) discoverRate(ctx context.Context, wallet string) (decimal.Decimal, error) {
	quote, err := s.quotes.GetQuote(ctx, entities.QuoteRequest{
		ChainID:    strconv.FormatInt(s.chain.ChainID, 10),
		SellToken:  s.chain.NativeToken,
		BuyToken:   s.chain.GateTokenAddress,
		SellAmount: discoverySellWei,
		Taker:      wallet,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("price discovery failed: %w", err)
	}

	tokens, err := s.tokenAmount(quote.BuyAmount)
	if err != nil {
		return decimal.Zero, err
	}
	if !tokens.IsPositive() {
		return decimal.Zero, fmt.Errorf("price discovery returned no %s: %w", s.chain.GateTokenSymbol, repositories.ErrLiquidityNotFound)
	}

	return tokens.Div(decimal.RequireFromString(discoveryETH)), nil
}

// tokenAmount converts a raw gate-token amount to whole tokens
func (s *EligibilityService) tokenAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &repositories.UpstreamError{
			Kind: repositories.ErrInvalidFormat,
			Err:  fmt.Errorf("invalid buyAmount %q: %w", raw, err),
		}
	}
	return amount.Shift(-s.chain.GateTokenDecimals), nil
}
