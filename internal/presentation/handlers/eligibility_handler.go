package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/services"
)

// EligibilityHandler handles token-gate requests
type EligibilityHandler struct {
	service *services.EligibilityService
	logger  *zap.Logger
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(service *services.EligibilityService, logger *zap.Logger) *EligibilityHandler {
	return &EligibilityHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the eligibility routes on a chi router
func (h *EligibilityHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wallets/{address}/eligibility", func(r chi.Router) {
		r.Get("/", h.GetEligibility)
		r.Get("/quote", h.GetTopUpQuote)
	})
}

// GetEligibility handles GET /api/v1/wallets/{address}/eligibility
func (h *EligibilityHandler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	response, err := h.service.GetEligibility(r.Context(), address)
	if err != nil {
		h.logger.Error("Failed to check eligibility", zap.Error(err), zap.String("address", address))
		respondServiceError(w, err, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTopUpQuote handles GET /api/v1/wallets/{address}/eligibility/quote?sellAmount=
func (h *EligibilityHandler) GetTopUpQuote(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	response, err := h.service.TopUpQuote(r.Context(), address, r.URL.Query().Get("sellAmount"))
	if err != nil {
		h.logger.Error("Failed to price top-up", zap.Error(err), zap.String("address", address))
		respondServiceError(w, err, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
