/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ethereum

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/config"
)

type fakeCaller struct {
	calls    int
	failures int
	results  map[string][]byte
	lastMsg  ethereum.CallMsg
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls++
	f.lastMsg = msg
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.results[hex.EncodeToString(msg.Data[:4])], nil
}

func (f *fakeCaller) BlockNumber(ctx context.Context) (uint64, error) {
	return 1, nil
}

func newTestClient(caller contractCaller) *Client {
	return &Client{
		caller: caller,
		config: config.ChainConfig{MaxRetries: 2, RetryDelay: time.Millisecond},
		logger: zap.NewNop(),
	}
}

func word(hexStr string) []byte {
	b, _ := hex.DecodeString(hexStr)
	return common.LeftPadBytes(b, 32)
}

func TestDecodeStringOrBytes32(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name: "ABI-encoded string",
			input: "0000000000000000000000000000000000000000000000000000000000000020" +
				"0000000000000000000000000000000000000000000000000000000000000004" +
				"464c415900000000000000000000000000000000000000000000000000000000",
			expected: "FLAY",
		},
		{
			name:     "bytes32 - MKR style",
			input:    "4d4b520000000000000000000000000000000000000000000000000000000000",
			expected: "MKR",
		},
		{
			name: "empty ABI string",
			input: "0000000000000000000000000000000000000000000000000000000000000020" +
				"0000000000000000000000000000000000000000000000000000000000000000",
			expected: "",
		},
		{
			name:    "too short",
			input:   "4d4b52",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := hex.DecodeString(tt.input)
			got, err := decodeStringOrBytes32(data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestBalanceOfCalldata(t *testing.T) {
	owner := common.HexToAddress("0x1234567890123456789012345678901234567890")
	data := balanceOfCalldata(owner)

	if len(data) != 36 {
		t.Fatalf("expected 36 bytes, got %d", len(data))
	}
	if !bytes.Equal(data[:4], balanceOfSig) {
		t.Errorf("expected balanceOf selector, got %x", data[:4])
	}
	if !bytes.Equal(data[16:], owner.Bytes()) {
		t.Errorf("owner not left padded: %x", data[4:])
	}
}

func TestClient_TokenBalance(t *testing.T) {
	token := "0xf1a7000000950c7ad8aff13118bb7ab561a448ee"
	owner := "0x1234567890123456789012345678901234567890"

	t.Run("decodes balance after retry", func(t *testing.T) {
		caller := &fakeCaller{
			failures: 1,
			results:  map[string][]byte{"70a08231": word("056bc75e2d63100000")}, // 100e18
		}

		balance, err := newTestClient(caller).TokenBalance(context.Background(), token, owner)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected, _ := new(big.Int).SetString("100000000000000000000", 10)
		if balance.Cmp(expected) != 0 {
			t.Errorf("expected %s, got %s", expected, balance)
		}
		if caller.calls != 2 {
			t.Errorf("expected 2 calls, got %d", caller.calls)
		}
		if *caller.lastMsg.To != common.HexToAddress(token) {
			t.Errorf("call sent to %s", caller.lastMsg.To.Hex())
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		caller := &fakeCaller{failures: 10}

		_, err := newTestClient(caller).TokenBalance(context.Background(), token, owner)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if caller.calls != 3 {
			t.Errorf("expected 3 calls, got %d", caller.calls)
		}
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		caller := &fakeCaller{}

		if _, err := newTestClient(caller).TokenBalance(context.Background(), token, "0xnope"); err == nil {
			t.Fatal("expected error, got nil")
		}
		if caller.calls != 0 {
			t.Errorf("expected no calls, got %d", caller.calls)
		}
	})

	t.Run("short response", func(t *testing.T) {
		caller := &fakeCaller{results: map[string][]byte{"70a08231": {0x01}}}

		if _, err := newTestClient(caller).TokenBalance(context.Background(), token, owner); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestClient_TokenMetadata(t *testing.T) {
	fallback := TokenMetadata{Symbol: "FLAY", Decimals: 18}

	t.Run("reads symbol and decimals", func(t *testing.T) {
		caller := &fakeCaller{results: map[string][]byte{
			"95d89b41": common.RightPadBytes([]byte("USDC"), 32),
			"313ce567": word("06"),
		}}

		meta := newTestClient(caller).TokenMetadata(context.Background(), "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", fallback)
		if meta.Symbol != "USDC" {
			t.Errorf("expected USDC, got %s", meta.Symbol)
		}
		if meta.Decimals != 6 {
			t.Errorf("expected 6 decimals, got %d", meta.Decimals)
		}
	})

	t.Run("falls back on failure", func(t *testing.T) {
		caller := &fakeCaller{failures: 100}

		meta := newTestClient(caller).TokenMetadata(context.Background(), "0xf1a7000000950c7ad8aff13118bb7ab561a448ee", fallback)
		if meta != fallback {
			t.Errorf("expected fallback %+v, got %+v", fallback, meta)
		}
	})
}
