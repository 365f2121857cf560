package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/services"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

// QuoteHandler proxies swap-quote requests to the quote provider
type QuoteHandler struct {
	service *services.QuoteService
	logger  *zap.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(service *services.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		logger:  logger,
	}
}

// NoRouteResponse is returned when the provider has no route for a pair
type NoRouteResponse struct {
	Error       string          `json:"error"`
	Message     string          `json:"message"`
	Suggestions []string        `json:"suggestions"`
	ChainID     string          `json:"chainId"`
	Details     json.RawMessage `json:"details,omitempty"`
}

// ProviderErrorResponse is returned for other provider failures
type ProviderErrorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

// RegisterRoutes registers the quote routes on a chi router
func (h *QuoteHandler) RegisterRoutes(r chi.Router) {
	r.With(allowCORS).Get("/quote", h.GetQuote)
	r.With(allowCORS).Options("/quote", h.Preflight)
}

// allowCORS opens the quote route to browser callers
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// Preflight handles OPTIONS /api/v1/quote
func (h *QuoteHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetQuote handles GET /api/v1/quote.
// A successful provider body is passed through unchanged.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := entities.QuoteRequest{
		ChainID:    q.Get("chainId"),
		SellToken:  q.Get("sellToken"),
		BuyToken:   q.Get("buyToken"),
		SellAmount: q.Get("sellAmount"),
		BuyAmount:  q.Get("buyAmount"),
		Taker:      q.Get("taker"),
		Extra:      extraQuoteParams(q),
	}

	quote, err := h.service.GetQuote(r.Context(), req)
	if err != nil {
		h.respondQuoteError(w, req.ChainID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(quote.Raw)
}

func (h *QuoteHandler) respondQuoteError(w http.ResponseWriter, chainID string, err error) {
	var upstream *repositories.UpstreamError
	errors.As(err, &upstream)

	switch {
	case errors.Is(err, repositories.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, "0x API key not configured")

	case errors.Is(err, repositories.ErrLiquidityNotFound):
		resp := NoRouteResponse{
			Error:       "No trading route found",
			Message:     fmt.Sprintf("No liquidity available for this token pair on %s", h.service.NetworkName(chainID)),
			Suggestions: h.service.Suggestions(chainID),
			ChainID:     chainID,
		}
		if upstream != nil {
			resp.Details = rawDetails(upstream.Body)
		}
		respondJSON(w, http.StatusNotFound, resp)

	case upstream != nil && upstream.StatusCode != 0:
		respondJSON(w, upstream.StatusCode, ProviderErrorResponse{
			Error:   fmt.Sprintf("0x API Error: %d", upstream.StatusCode),
			Details: rawDetails(upstream.Body),
		})

	default:
		h.logger.Error("Quote request failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, ProviderErrorResponse{
			Error:   "Failed to fetch quote from 0x API",
			Details: rawDetails(err.Error()),
		})
	}
}

// rawDetails keeps a JSON body as-is and quotes anything else
func rawDetails(body string) json.RawMessage {
	if body == "" {
		return nil
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}

// quoteParamNames are the parameters read into QuoteRequest fields
var quoteParamNames = []string{"chainId", "sellToken", "buyToken", "sellAmount", "buyAmount", "taker"}

// extraQuoteParams returns the query parameters not covered by QuoteRequest fields
func extraQuoteParams(q url.Values) url.Values {
	extra := url.Values{}
	for key, values := range q {
		extra[key] = values
	}
	for _, name := range quoteParamNames {
		extra.Del(name)
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}
