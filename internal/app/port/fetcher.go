package port

import (
	"context"

	"position_monitor/internal/domain/entity"
)

// PositionFetcher fetches one wallet's open lending positions, strictly
// wallet-scoped (never pool-wide aggregates), restricted to the given
// chains. An error covers the whole wallet; callers isolate it so other
// wallets proceed unaffected.
type PositionFetcher interface {
	FetchPositions(ctx context.Context, wallet entity.Wallet, chainIDs []uint64) ([]entity.Position, error)
}
