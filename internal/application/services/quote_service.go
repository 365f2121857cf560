package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

// Token aliases accepted as sellToken
const (
	aliasETH  = "ETH"
	aliasUSDC = "USDC"
)

// QuoteService validates swap-quote requests and forwards them to the quote provider
type QuoteService struct {
	provider repositories.QuoteProvider
	chain    config.ChainConfig
	logger   *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(provider repositories.QuoteProvider, chain config.ChainConfig, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		provider: provider,
		chain:    chain,
		logger:   logger,
	}
}

// Normalize checks the required parameters and resolves token aliases.
// ETH maps to the native-token sentinel and USDC to the chain's USDC contract;
// aliases are case-sensitive.
func (s *QuoteService) Normalize(req entities.QuoteRequest) (entities.QuoteRequest, error) {
	var missing []string
	if strings.TrimSpace(req.ChainID) == "" {
		missing = append(missing, "chainId")
	}
	if strings.TrimSpace(req.SellToken) == "" {
		missing = append(missing, "sellToken")
	}
	if strings.TrimSpace(req.BuyToken) == "" {
		missing = append(missing, "buyToken")
	}
	if strings.TrimSpace(req.Taker) == "" {
		missing = append(missing, "taker")
	}
	if len(missing) > 0 {
		return req, fmt.Errorf("missing required parameters: %s: %w", strings.Join(missing, ", "), repositories.ErrInvalidRequest)
	}

	if req.SellAmount == "" && req.BuyAmount == "" {
		return req, fmt.Errorf("either sellAmount or buyAmount is required: %w", repositories.ErrInvalidRequest)
	}

	switch req.SellToken {
	case aliasETH:
		req.SellToken = s.chain.NativeToken
	case aliasUSDC:
		req.SellToken = s.chain.USDCAddress(req.ChainID)
	}

	return req, nil
}

// GetQuote normalizes req and fetches a quote.
// Provider failures are returned unchanged so callers can inspect the upstream status and body.
func (s *QuoteService) GetQuote(ctx context.Context, req entities.QuoteRequest) (*entities.Quote, error) {
	normalized, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}

	quote, err := s.provider.GetQuote(ctx, normalized)
	if err != nil {
		s.logger.Warn("Quote request failed",
			zap.String("chain_id", normalized.ChainID),
			zap.String("sell_token", normalized.SellToken),
			zap.String("buy_token", normalized.BuyToken),
			zap.String("kind", repositories.ErrorKind(err)),
			zap.Error(err),
		)
		return nil, err
	}

	return quote, nil
}

// Suggestions lists what a user can try when no route was found on chainID
func (s *QuoteService) Suggestions(chainID string) []string {
	if s.chain.IsBase(chainID) {
		symbol := s.chain.GateTokenSymbol
		return []string{
			fmt.Sprintf("%s may have limited liquidity on Base DEXs", symbol),
			"Try trading on Uniswap V3 Base directly",
			"Check Aerodrome (Base native DEX) for liquidity",
			"Verify the token contract address is correct",
			"Consider bridging from Ethereum mainnet if the token exists there",
		}
	}

	return []string{
		"Check if the token exists on a different chain",
		"Verify the token contract address is correct",
		"The token may have very low liquidity",
		"Try a smaller trade amount",
	}
}

// NetworkName returns a display name for chainID
func (s *QuoteService) NetworkName(chainID string) string {
	if s.chain.IsBase(chainID) {
		return "Base"
	}
	return "chain " + chainID
}
