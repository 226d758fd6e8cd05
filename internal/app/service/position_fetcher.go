package service

import (
	"context"
	"fmt"

	"position_monitor/internal/app/port"
	"position_monitor/internal/client"
	"position_monitor/internal/domain/entity"
	wire "position_monitor/internal/entity"
	"position_monitor/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// morphoPositionFetcher implements port.PositionFetcher on top of the
// Morpho GraphQL client, converting wire items into domain positions.
type morphoPositionFetcher struct {
	client client.MorphoClient
	logger port.Logger
}

// NewMorphoPositionFetcher creates a new morphoPositionFetcher.
func NewMorphoPositionFetcher(c client.MorphoClient, l port.Logger) port.PositionFetcher {
	return &morphoPositionFetcher{client: c, logger: l}
}

// FetchPositions implements port.PositionFetcher.
func (f *morphoPositionFetcher) FetchPositions(ctx context.Context, wallet entity.Wallet, chainIDs []uint64) ([]entity.Position, error) {
	items, err := f.client.FetchMarketPositions(ctx, wallet.Address, chainIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch positions for %s: %w", wallet.Address, err)
	}

	positions := make([]entity.Position, 0, len(items))
	for _, it := range items {
		p, err := toPosition(wallet.Address, it)
		if err != nil {
			// A malformed field marks the whole wallet not-available
			// rather than silently reporting a zero amount.
			return nil, fmt.Errorf("position in market %s for %s: %w", it.Market.UniqueKey, wallet.Address, err)
		}
		positions = append(positions, p)
	}

	f.logger.Debug("Converted wallet positions", "wallet", wallet.Address, "count", len(positions))
	return positions, nil
}

func toPosition(walletAddress string, it wire.MarketPositionItem) (entity.Position, error) {
	if it.State == nil {
		return entity.Position{}, fmt.Errorf("missing state object")
	}

	supply, err := utils.ParseRawAmount(it.State.SupplyAssets)
	if err != nil {
		return entity.Position{}, fmt.Errorf("supplyAssets: %w", err)
	}
	borrow, err := utils.ParseRawAmount(it.State.BorrowAssets)
	if err != nil {
		return entity.Position{}, fmt.Errorf("borrowAssets: %w", err)
	}
	collateral, err := utils.ParseRawAmount(it.State.Collateral)
	if err != nil {
		return entity.Position{}, fmt.Errorf("collateral: %w", err)
	}

	return entity.Position{
		WalletAddress:    walletAddress,
		Market:           toMarket(it.Market),
		SupplyAssets:     supply,
		BorrowAssets:     borrow,
		CollateralAssets: collateral,
		SupplyUSD:        usdFrom(it.State.SupplyAssetsUsd),
		BorrowUSD:        usdFrom(it.State.BorrowAssetsUsd),
		CollateralUSD:    usdFrom(it.State.CollateralUsd),
		BorrowAPY:        usdFrom(it.State.BorrowApy),
	}, nil
}

func toMarket(m wire.MorphoMarket) entity.Market {
	market := entity.Market{
		UniqueKey: m.UniqueKey,
		LoanAsset: toAsset(m.LoanAsset),
		// Markets predating the whitelist flag are treated as whitelisted.
		Whitelisted: m.Whitelisted == nil || *m.Whitelisted,
	}
	if m.CollateralAsset != nil {
		market.CollateralAsset = toAsset(*m.CollateralAsset)
	}
	market.ChainID = marketChainID(m)
	return market
}

func toAsset(a wire.MorphoAsset) entity.Asset {
	return entity.Asset{Address: a.Address, Symbol: a.Symbol, Decimals: a.Decimals}
}

func marketChainID(m wire.MorphoMarket) uint64 {
	if m.LoanAsset.Chain != nil {
		return m.LoanAsset.Chain.ID
	}
	if m.CollateralAsset != nil && m.CollateralAsset.Chain != nil {
		return m.CollateralAsset.Chain.ID
	}
	return 0
}

// usdFrom converts an optional indexer float into a decimal; null means zero.
func usdFrom(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}
