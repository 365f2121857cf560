package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/services"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

// PositionsHandler handles HTTP requests for a wallet's positions
type PositionsHandler struct {
	aggregator *services.AggregatorService
	details    *services.PositionDetailService
	logger     *zap.Logger
}

// NewPositionsHandler creates a new positions handler
func NewPositionsHandler(
	aggregator *services.AggregatorService,
	details *services.PositionDetailService,
	logger *zap.Logger,
) *PositionsHandler {
	return &PositionsHandler{
		aggregator: aggregator,
		details:    details,
		logger:     logger,
	}
}

// RegisterRoutes registers the positions routes on a chi router
func (h *PositionsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wallets/{address}/positions", func(r chi.Router) {
		r.Get("/", h.GetPositions)
		r.Delete("/cache", h.InvalidateDetails)
		r.Get("/{tokenAddress}", h.GetPositionDetails)
	})
}

// GetPositions handles GET /api/v1/wallets/{address}/positions
func (h *PositionsHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	response, err := h.aggregator.GetPositions(ctx, address)
	if err != nil {
		h.logger.Error("Failed to aggregate positions",
			zap.Error(err),
			zap.String("address", address),
			zap.String("kind", repositories.ErrorKind(err)),
		)
		respondServiceError(w, err, "Wallet not found or has no positions")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetPositionDetails handles GET /api/v1/wallets/{address}/positions/{tokenAddress}.
// It always answers 200; the body says whether the data is live or demo.
func (h *PositionsHandler) GetPositionDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	walletAddress := chi.URLParam(r, "address")
	tokenAddress := chi.URLParam(r, "tokenAddress")

	if !isValidAddress(walletAddress) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	if !isValidAddress(tokenAddress) {
		respondError(w, http.StatusBadRequest, "Invalid token address format")
		return
	}

	respondJSON(w, http.StatusOK, h.details.GetDetails(ctx, walletAddress, tokenAddress))
}

// InvalidateDetails handles DELETE /api/v1/wallets/{address}/positions/cache
func (h *PositionsHandler) InvalidateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	if err := h.details.Invalidate(ctx, address); err != nil {
		h.logger.Error("Failed to invalidate details cache", zap.Error(err), zap.String("address", address))
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
