package repositories

import (
	"errors"
	"fmt"
)

// Upstream failure classes
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidFormat     = errors.New("invalid response format")
	ErrServerError       = errors.New("upstream server error")
	ErrAPI               = errors.New("upstream api error")
	ErrNetworkFailure    = errors.New("network failure")
	ErrLiquidityNotFound = errors.New("no liquidity route found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotConfigured     = errors.New("not configured")
)

// UpstreamError is a classified failure of an upstream API call
type UpstreamError struct {
	Kind       error
	StatusCode int
	Endpoint   string
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status: %d)", msg, e.StatusCode)
	}
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s, endpoint: %s", msg, e.Endpoint)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the failure class and the underlying cause
func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// ClassifyStatus maps a non-2xx HTTP status to its failure class
func ClassifyStatus(status int) error {
	switch {
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrServerError
	default:
		return ErrAPI
	}
}

// ErrorKind returns a short label for metrics and logs
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrServerError):
		return "server_error"
	case errors.Is(err, ErrAPI):
		return "api_error"
	case errors.Is(err, ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, ErrLiquidityNotFound):
		return "liquidity_not_found"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "unknown"
	}
}
