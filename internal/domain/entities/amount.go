package entities

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an optional decimal value read from upstream JSON.
// It accepts quoted decimal strings (including exponent notation), bare JSON
// numbers, empty strings and null. Set reports whether a value was present.
type Amount struct {
	Value decimal.Decimal
	Set   bool
}

// NewAmount returns a present Amount
func NewAmount(v float64) Amount {
	return Amount{Value: decimal.NewFromFloat(v), Set: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid amount %s: %w", raw, err)
		}
		if s == "" {
			*a = Amount{}
			return nil
		}
		raw = s
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	*a = Amount{Value: d, Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value.String())
}

// Float64 returns the value as float64, or 0 when absent
func (a Amount) Float64() float64 {
	if !a.Set {
		return 0
	}
	return a.Value.InexactFloat64()
}

// String returns the decimal string, or "" when absent
func (a Amount) String() string {
	if !a.Set {
		return ""
	}
	return a.Value.String()
}
