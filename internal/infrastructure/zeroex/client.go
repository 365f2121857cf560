// Package zeroex provides a client for the 0x swap API
package zeroex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

const (
	DefaultBaseURL   = "https://api.0x.org"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5 // requests per second

	quotePath  = "/swap/permit2/quote"
	apiVersion = "v2"
)

// Client implements repositories.QuoteProvider against the 0x permit2 endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the outbound rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a new 0x client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetQuote fetches a firm quote. The request must already carry resolved token addresses.
func (c *Client) GetQuote(ctx context.Context, req entities.QuoteRequest) (*entities.Quote, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("0x api key: %w", repositories.ErrNotConfigured)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &repositories.UpstreamError{Kind: repositories.ErrNetworkFailure, Endpoint: quotePath, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	reqURL := c.baseURL + quotePath + "?" + quoteParams(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("0x-api-key", c.apiKey)
	httpReq.Header.Set("0x-version", apiVersion)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("0x quote request",
		zap.String("chain_id", req.ChainID),
		zap.String("sell_token", req.SellToken),
		zap.String("buy_token", req.BuyToken),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &repositories.UpstreamError{Kind: repositories.ErrNetworkFailure, Endpoint: quotePath, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &repositories.UpstreamError{Kind: repositories.ErrNetworkFailure, Endpoint: quotePath, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		kind := repositories.ClassifyStatus(resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound {
			kind = repositories.ErrLiquidityNotFound
		}

		c.logger.Warn("0x quote failed",
			zap.Int("status", resp.StatusCode),
			zap.String("chain_id", req.ChainID),
			zap.String("buy_token", req.BuyToken),
		)

		return nil, &repositories.UpstreamError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Endpoint:   quotePath,
			Body:       string(body),
		}
	}

	quote := &entities.Quote{Raw: json.RawMessage(body)}
	if err := json.Unmarshal(body, quote); err != nil {
		return nil, &repositories.UpstreamError{Kind: repositories.ErrInvalidFormat, Endpoint: quotePath, Err: err}
	}

	return quote, nil
}

func quoteParams(req entities.QuoteRequest) url.Values {
	params := url.Values{}
	for key, values := range req.Extra {
		params[key] = append([]string(nil), values...)
	}
	params.Set("chainId", req.ChainID)
	params.Set("sellToken", req.SellToken)
	params.Set("buyToken", req.BuyToken)
	params.Set("taker", req.Taker)
	if req.SellAmount != "" {
		params.Set("sellAmount", req.SellAmount)
	}
	if req.BuyAmount != "" {
		params.Set("buyAmount", req.BuyAmount)
	}
	return params
}
