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
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TokenMetadata holds the ERC-20 fields needed to display a balance
type TokenMetadata struct {
	Symbol   string
	Decimals uint8
}

// ERC-20 function selectors (first 4 bytes of keccak256 hash)
var (
	// balanceOf(address) -> 0x70a08231
	balanceOfSig = common.FromHex("0x70a08231")
	// symbol() -> 0x95d89b41
	symbolSig = common.FromHex("0x95d89b41")
	// decimals() -> 0x313ce567
	decimalsSig = common.FromHex("0x313ce567")
)

// TokenBalance returns owner's raw balance of an ERC-20 token
func (c *Client) TokenBalance(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error) {
	if !common.IsHexAddress(tokenAddress) || !common.IsHexAddress(ownerAddress) {
		return nil, fmt.Errorf("invalid address: token=%s owner=%s", tokenAddress, ownerAddress)
	}

	result, err := c.CallContract(ctx, common.HexToAddress(tokenAddress), balanceOfCalldata(common.HexToAddress(ownerAddress)))
	if err != nil {
		return nil, err
	}

	return decodeUint256(result)
}

// TokenMetadata reads symbol and decimals, falling back to the given values
func (c *Client) TokenMetadata(ctx context.Context, tokenAddress string, fallback TokenMetadata) TokenMetadata {
	addr := common.HexToAddress(tokenAddress)
	meta := fallback

	if result, err := c.CallContract(ctx, addr, symbolSig); err == nil {
		if symbol, err := decodeStringOrBytes32(result); err == nil && symbol != "" {
			meta.Symbol = symbol
		}
	} else {
		c.logger.Warn("Failed to fetch token symbol, using fallback",
			zap.String("token", tokenAddress),
			zap.Error(err),
		)
	}

	if result, err := c.CallContract(ctx, addr, decimalsSig); err == nil {
		if decimals, err := decodeUint256(result); err == nil && decimals.IsUint64() && decimals.Uint64() <= 255 {
			meta.Decimals = uint8(decimals.Uint64())
		}
	} else {
		c.logger.Warn("Failed to fetch token decimals, using fallback",
			zap.String("token", tokenAddress),
			zap.Error(err),
		)
	}

	return meta
}

func balanceOfCalldata(owner common.Address) []byte {
	data := make([]byte, 0, len(balanceOfSig)+32)
	data = append(data, balanceOfSig...)
	return append(data, common.LeftPadBytes(owner.Bytes(), 32)...)
}

// decodeUint256 reads a single ABI-encoded uint256 word
func decodeUint256(data []byte) (*big.Int, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("invalid uint256 response length: %d", len(data))
	}
	return new(big.Int).SetBytes(data[:32]), nil
}

// decodeStringOrBytes32 decodes a response that could be either:
// 1. ABI-encoded string: offset (32 bytes) + length (32 bytes) + data (padded to 32 bytes)
// 2. bytes32: raw 32 bytes (e.g., MKR token)
func decodeStringOrBytes32(data []byte) (string, error) {
	if len(data) < 32 {
		return "", fmt.Errorf("data too short: %d bytes", len(data))
	}

	if len(data) >= 64 && new(big.Int).SetBytes(data[:32]).Uint64() == 32 {
		strLen := int(new(big.Int).SetBytes(data[32:64]).Uint64())
		if strLen == 0 {
			return "", nil
		}
		if len(data) >= 64+strLen {
			return strings.TrimRight(string(data[64:64+strLen]), "\x00"), nil
		}
	}

	result := bytes.TrimRight(data[:32], "\x00")
	if isPrintableASCII(result) {
		return string(result), nil
	}

	return "0x" + hex.EncodeToString(data[:32]), nil
}

func isPrintableASCII(data []byte) bool {
	for _, b := range data {
		if b < 32 || b > 126 {
			return false
		}
	}
	return len(data) > 0
}
