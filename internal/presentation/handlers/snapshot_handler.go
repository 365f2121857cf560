package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/services"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

// SnapshotHandler handles portfolio snapshot requests
type SnapshotHandler struct {
	service *services.SnapshotService
	logger  *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(service *services.SnapshotService, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the snapshot routes on a chi router
func (h *SnapshotHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/snapshots", h.GetSnapshots)
	r.Get("/wallets/{address}/snapshots/latest", h.GetLatest)
}

// GetSnapshots handles GET /api/v1/wallets/{address}/snapshots?limit=
func (h *SnapshotHandler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	limit := services.DefaultSnapshotLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	response, err := h.service.GetSnapshots(r.Context(), address, limit)
	if err != nil {
		h.logger.Error("Failed to list snapshots", zap.Error(err), zap.String("address", address))
		respondServiceError(w, err, "No snapshots found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetLatest handles GET /api/v1/wallets/{address}/snapshots/latest
func (h *SnapshotHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	response, err := h.service.LatestSnapshot(r.Context(), address)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			h.logger.Error("Failed to get latest snapshot", zap.Error(err), zap.String("address", address))
		}
		respondServiceError(w, err, "No snapshots found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
