package positionsapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// detailResponse is the wire shape of the position-detail endpoint.
// Every block is optional; swaps live under debug.poolSwaps.
type detailResponse struct {
	PnL          entities.DetailPnL      `json:"pnl"`
	Position     entities.DetailPosition `json:"position"`
	Token        wireToken               `json:"token"`
	Timeline     wireTimeline            `json:"timeline"`
	PriceHistory []entities.PricePoint   `json:"priceHistory"`
	Debug        struct {
		PoolSwaps []wireSwap `json:"poolSwaps"`
	} `json:"debug"`
}

type wireToken struct {
	MarketCapUSDC entities.Amount `json:"marketCapUSDC"`
	TotalSupply   entities.Amount `json:"totalSupply"`
	AgeSeconds    entities.Amount `json:"ageSeconds"`
}

type wireTimeline struct {
	PositionCreated    unixTime        `json:"positionCreated"`
	PositionAgeSeconds entities.Amount `json:"positionAgeSeconds"`
}

type wireSwap struct {
	TxHash               string            `json:"txHash"`
	Timestamp            unixTime          `json:"timestamp"`
	Type                 entities.SwapType `json:"type"`
	TokenAmountFormatted entities.Amount   `json:"tokenAmountFormatted"`
	ETHAmountFormatted   entities.Amount   `json:"ethAmountFormatted"`
}

// unixTime accepts unix seconds as a number or numeric string, or an RFC3339 string
type unixTime struct {
	Seconds int64
	Set     bool
}

func (u *unixTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = unixTime{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*u = unixTime{}
			return nil
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			*u = unixTime{Seconds: ts.Unix(), Set: true}
			return nil
		}
	}

	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", raw)
	}

	*u = unixTime{Seconds: int64(secs), Set: secs != 0}
	return nil
}

func decodePositionDetail(body []byte) (*entities.PositionDetail, error) {
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("detail body is not an object")
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	detail := &entities.PositionDetail{
		PnL:          resp.PnL,
		Position:     resp.Position,
		PriceHistory: resp.PriceHistory,
		Token: entities.DetailToken{
			MarketCapUSDC: resp.Token.MarketCapUSDC,
			TotalSupply:   resp.Token.TotalSupply,
			AgeSeconds:    resp.Token.AgeSeconds.Value.IntPart(),
		},
	}

	if resp.Timeline.PositionCreated.Set {
		created := resp.Timeline.PositionCreated.Seconds
		detail.Timeline.PositionCreated = &created
	}
	if resp.Timeline.PositionAgeSeconds.Set {
		age := resp.Timeline.PositionAgeSeconds.Value.IntPart()
		detail.Timeline.PositionAgeSeconds = &age
	}

	detail.PoolSwaps = make([]entities.Swap, 0, len(resp.Debug.PoolSwaps))
	for i, s := range resp.Debug.PoolSwaps {
		if s.Type != entities.SwapBuy && s.Type != entities.SwapSell {
			return nil, fmt.Errorf("poolSwaps[%d]: unknown swap type %q", i, s.Type)
		}
		if !s.Timestamp.Set {
			return nil, fmt.Errorf("poolSwaps[%d]: missing timestamp", i)
		}
		detail.PoolSwaps = append(detail.PoolSwaps, entities.Swap{
			TxHash:               s.TxHash,
			Timestamp:            s.Timestamp.Seconds,
			Type:                 s.Type,
			TokenAmountFormatted: s.TokenAmountFormatted,
			ETHAmountFormatted:   s.ETHAmountFormatted,
		})
	}

	return detail, nil
}
