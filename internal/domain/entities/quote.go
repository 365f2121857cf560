package entities

import (
	"encoding/json"
	"math/big"
	"net/url"
)

// QuoteRequest is a swap-quote request as accepted by the quote proxy
type QuoteRequest struct {
	ChainID    string
	SellToken  string
	BuyToken   string
	SellAmount string
	BuyAmount  string
	Taker      string

	// Extra holds any other query parameters (slippageBps, excludedSources, ...)
	// and is forwarded to the provider as is
	Extra url.Values
}

// Quote is an upstream quote. Raw keeps the full body for passthrough.
type Quote struct {
	BuyAmount  string          `json:"buyAmount"`
	SellAmount string          `json:"sellAmount"`
	Raw        json.RawMessage `json:"-"`
}

// Eligibility reports whether a wallet holds enough of the gate token
type Eligibility struct {
	WalletAddress string   `json:"wallet_address"`
	TokenAddress  string   `json:"token_address"`
	TokenSymbol   string   `json:"token_symbol"`
	Balance       string   `json:"balance"`
	MinBalance    string   `json:"min_balance"`
	HasEnough     bool     `json:"has_enough"`
	Deficit       string   `json:"deficit"`
	BalanceWei    *big.Int `json:"-"`
}

// TopUpQuote is an executable quote that buys the gate-token deficit
type TopUpQuote struct {
	Eligibility        Eligibility     `json:"eligibility"`
	TokensPerETH       string          `json:"tokens_per_eth"`
	SellAmountWei      string          `json:"sell_amount_wei"`
	ExpectedTokens     string          `json:"expected_tokens"`
	InsufficientAmount bool            `json:"insufficient_amount"`
	Shortfall          string          `json:"shortfall,omitempty"`
	Quote              json.RawMessage `json:"quote"`
}
