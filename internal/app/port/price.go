package port

import (
	"context"

	"position_monitor/internal/domain/entity"
)

// PriceService resolves unit USD prices for assets from an external feed.
type PriceService interface {
	// GetQuote returns a cached or freshly fetched quote. The second
	// return is false when the feed has no quote for the asset; callers
	// then fall back to indexer-provided pricing.
	GetQuote(ctx context.Context, chainID uint64, tokenAddress string) (entity.PriceQuote, bool)

	// Prime batch-fetches quotes for every distinct asset appearing in
	// the given positions, warming the cache before normalization.
	Prime(ctx context.Context, positions []entity.Position)
}
