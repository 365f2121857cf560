package zeroex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

var testRequest = entities.QuoteRequest{
	ChainID:    "8453",
	SellToken:  "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE",
	BuyToken:   "0xf1a7000000950c7ad8aff13118bb7ab561a448ee",
	SellAmount: "1000000000000000",
	Taker:      "0x1234567890123456789012345678901234567890",
}

func TestClient_GetQuote(t *testing.T) {
	t.Run("sends headers and decodes amounts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/swap/permit2/quote", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("0x-api-key"))
			assert.Equal(t, "v2", r.Header.Get("0x-version"))

			q := r.URL.Query()
			assert.Equal(t, "8453", q.Get("chainId"))
			assert.Equal(t, testRequest.SellAmount, q.Get("sellAmount"))
			assert.False(t, q.Has("buyAmount"))

			fmt.Fprint(w, `{"buyAmount":"5000000000000000000","sellAmount":"1000000000000000","route":{}}`)
		}))
		defer srv.Close()

		client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100))
		quote, err := client.GetQuote(context.Background(), testRequest)
		require.NoError(t, err)
		assert.Equal(t, "5000000000000000000", quote.BuyAmount)
		assert.JSONEq(t, `{"buyAmount":"5000000000000000000","sellAmount":"1000000000000000","route":{}}`, string(quote.Raw))
	})

	t.Run("forwards extra parameters", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "50", q.Get("slippageBps"))
			assert.Equal(t, "8453", q.Get("chainId"))
			fmt.Fprint(w, `{"buyAmount":"1","sellAmount":"1"}`)
		}))
		defer srv.Close()

		req := testRequest
		req.Extra = url.Values{"slippageBps": {"50"}, "chainId": {"1"}}

		_, err := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100)).GetQuote(context.Background(), req)
		require.NoError(t, err)
	})

	t.Run("404 means no liquidity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"name":"NO_ROUTE"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewClient("test-key", WithBaseURL(srv.URL)).GetQuote(context.Background(), testRequest)
		require.ErrorIs(t, err, repositories.ErrLiquidityNotFound)

		var upstreamErr *repositories.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Contains(t, upstreamErr.Body, "NO_ROUTE")
	})

	t.Run("other statuses keep code and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad taker", http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := NewClient("test-key", WithBaseURL(srv.URL)).GetQuote(context.Background(), testRequest)

		var upstreamErr *repositories.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusBadRequest, upstreamErr.StatusCode)
		assert.Contains(t, upstreamErr.Body, "bad taker")
		assert.ErrorIs(t, err, repositories.ErrAPI)
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := NewClient("").GetQuote(context.Background(), testRequest)
		assert.ErrorIs(t, err, repositories.ErrNotConfigured)
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		baseURL := srv.URL
		srv.Close()

		_, err := NewClient("test-key", WithBaseURL(baseURL)).GetQuote(context.Background(), testRequest)
		assert.ErrorIs(t, err, repositories.ErrNetworkFailure)
	})
}
