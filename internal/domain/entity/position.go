package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Position is one wallet's exposure in one market, as reported by the
// indexer. Raw amounts are on-chain integers; USD figures are the indexer's
// own pricing and may later be recomputed from an independent price feed.
type Position struct {
	WalletAddress string
	Market        Market

	// Raw on-chain amounts, not yet normalized by decimals.
	SupplyAssets     *big.Int
	BorrowAssets     *big.Int
	CollateralAssets *big.Int

	// Indexer-provided USD valuations.
	SupplyUSD     decimal.Decimal
	BorrowUSD     decimal.Decimal
	CollateralUSD decimal.Decimal

	// BorrowAPY is the market's current borrow rate as a fraction (0.043 = 4.3%).
	BorrowAPY decimal.Decimal
}

// HasBorrow reports whether the position carries any debt.
func (p Position) HasBorrow() bool {
	return p.BorrowAssets != nil && p.BorrowAssets.Sign() > 0
}
