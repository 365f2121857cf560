// Package positionsapi is a client for the upstream positions API
package positionsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

const (
	defaultRetryInterval = 250 * time.Millisecond

	// Upstream bodies kept on errors are truncated to this size
	maxErrorBody = 1024
)

// Client fetches positions and position details for a wallet
type Client struct {
	baseURL       string
	network       string
	httpClient    *http.Client
	logger        *zap.Logger
	maxRetries    uint
	retryInterval time.Duration
	retryMaxWait  time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryInterval sets the initial wait between retries of transport failures
func WithRetryInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryInterval = d
	}
}

// NewClient creates a new positions API client
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		network:       cfg.Network,
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:        logger,
		maxRetries:    cfg.MaxRetries,
		retryInterval: defaultRetryInterval,
		retryMaxWait:  cfg.RetryMaxWait,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchPositionsPage fetches one page of a wallet's positions
func (c *Client) FetchPositionsPage(ctx context.Context, wallet string, limit, offset int) (*entities.PositionsPage, error) {
	path := fmt.Sprintf("/v1/%s/users/%s/positions", c.network, url.PathEscape(wallet))
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return decodePositionsPage(path, body)
}

// FetchPositionDetail fetches and validates one position's detail payload
func (c *Client) FetchPositionDetail(ctx context.Context, wallet, tokenAddress string) (*entities.PositionDetail, error) {
	path := fmt.Sprintf("/v1/%s/users/%s/positions/%s", c.network, url.PathEscape(wallet), url.PathEscape(tokenAddress))

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	detail, err := decodePositionDetail(body)
	if err != nil {
		return nil, &repositories.UpstreamError{Kind: repositories.ErrInvalidFormat, Endpoint: path, Err: err}
	}
	detail.TokenAddress = tokenAddress

	return detail, nil
}

// get performs a GET request, retrying transport failures and gateway
// statuses (502, 503, 504). Other non-2xx responses are returned without retry.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxInterval = c.retryInterval * 10

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Upstream request failed, retrying",
			zap.String("endpoint", path),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &repositories.UpstreamError{Kind: repositories.ErrNetworkFailure, Endpoint: path, Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &repositories.UpstreamError{Kind: repositories.ErrNetworkFailure, Endpoint: path, Err: err}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &repositories.UpstreamError{
				Kind:       repositories.ClassifyStatus(resp.StatusCode),
				StatusCode: resp.StatusCode,
				Endpoint:   path,
				Body:       truncate(body),
			}
			if retryableStatus(resp.StatusCode) {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}

		return body, nil
	}

	c.logger.Debug("Upstream request", zap.String("endpoint", path), zap.String("query", query.Encode()))

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxRetries + 1),
		backoff.WithNotify(notify),
	}
	if c.retryMaxWait > 0 {
		retryOpts = append(retryOpts, backoff.WithMaxElapsedTime(c.retryMaxWait))
	}

	body, err := backoff.Retry(ctx, operation, retryOpts...)
	if err != nil {
		var upstreamErr *repositories.UpstreamError
		if errors.As(err, &upstreamErr) {
			return nil, upstreamErr
		}
		return nil, &repositories.UpstreamError{Kind: repositories.ErrNetworkFailure, Endpoint: path, Err: err}
	}

	return body, nil
}

type positionsResponse struct {
	Data       json.RawMessage        `json:"data"`
	Pagination entities.PageCursor    `json:"pagination"`
	Meta       entities.PositionsMeta `json:"meta"`
}

func decodePositionsPage(path string, body []byte) (*entities.PositionsPage, error) {
	invalid := func(err error) error {
		return &repositories.UpstreamError{Kind: repositories.ErrInvalidFormat, Endpoint: path, Err: err}
	}

	var resp positionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, invalid(err)
	}

	data := bytes.TrimSpace(resp.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, invalid(errors.New("data is not an array"))
	}

	var positions []entities.Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, invalid(err)
	}

	return &entities.PositionsPage{
		Data:       positions,
		Pagination: resp.Pagination,
		Meta:       resp.Meta,
	}, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}
