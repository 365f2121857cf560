package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps a classified failure to its HTTP status
func respondServiceError(w http.ResponseWriter, err error, notFoundMessage string) {
	var upstream *repositories.UpstreamError
	errors.As(err, &upstream)

	switch {
	case errors.Is(err, repositories.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "Service not configured")
	case errors.Is(err, repositories.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, repositories.ErrNetworkFailure):
		respondError(w, http.StatusGatewayTimeout, "Upstream service unreachable")
	case errors.Is(err, repositories.ErrLiquidityNotFound):
		respondError(w, http.StatusNotFound, "No trading route found")
	case errors.Is(err, repositories.ErrServerError),
		errors.Is(err, repositories.ErrAPI),
		errors.Is(err, repositories.ErrInvalidFormat):
		resp := ErrorResponse{Error: "Upstream service error"}
		if upstream != nil {
			resp.UpstreamStatus = upstream.StatusCode
		}
		respondJSON(w, http.StatusBadGateway, resp)
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// isValidAddress checks for a 0x-prefixed 20-byte hex address.
// Casing is left untouched.
func isValidAddress(addr string) bool {
	return len(addr) == 42 && common.IsHexAddress(addr)
}
