package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a unit USD price for an asset on a chain, obtained from an
// external price feed independent of the protocol indexer.
type PriceQuote struct {
	TokenAddress string
	ChainID      uint64
	PriceUSD     decimal.Decimal
	FetchedAt    time.Time
}
