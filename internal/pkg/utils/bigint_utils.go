package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseRawAmount parses a base-10 raw on-chain amount as serialized by the
// indexer. An empty or null-ish string means zero; anything unparseable is
// an error so the caller can mark the owning row not-available instead of
// silently reporting zero.
func ParseRawAmount(s string) (*big.Int, error) {
	if s == "" || s == "null" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed raw amount %q", s)
	}
	return v, nil
}

// NormalizeRawAmount converts a raw on-chain integer into a human-scale
// quantity by shifting the decimal point left by the asset's decimal
// exponent. This is the single place decimals normalization happens.
func NormalizeRawAmount(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
