package service

import (
	"context"

	"position_monitor/internal/app/port"
	"position_monitor/internal/domain/entity"
	"position_monitor/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// Normalizer turns a fetched Position into a display row: it applies
// decimals normalization (exactly once per raw amount), optionally
// recomputes USD values from the independent price feed, and derives LTV.
type Normalizer struct {
	prices port.PriceService
	logger port.Logger
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(prices port.PriceService, logger port.Logger) *Normalizer {
	return &Normalizer{prices: prices, logger: logger}
}

// Row builds the per-wallet table row for one position. When reprice is
// set, each USD figure is recomputed as quantity × feed price; assets the
// feed has no quote for keep the indexer-provided value (fallback).
func (n *Normalizer) Row(ctx context.Context, p entity.Position, reprice bool) entity.PositionRow {
	market := p.Market

	// By display convention the protocol's supply is shown as collateral,
	// denominated in the collateral asset. Idle markets have no collateral
	// asset; their supply is loan-asset denominated.
	collateralAsset := market.CollateralAsset
	if collateralAsset.Symbol == "" {
		collateralAsset = market.LoanAsset
	}

	collateralQty := utils.NormalizeRawAmount(p.SupplyAssets, collateralAsset.Decimals)
	borrowQty := utils.NormalizeRawAmount(p.BorrowAssets, market.LoanAsset.Decimals)
	collateralBalanceQty := utils.NormalizeRawAmount(p.CollateralAssets, collateralAsset.Decimals)

	supplyUSD := p.SupplyUSD
	borrowUSD := p.BorrowUSD
	collateralUSD := p.CollateralUSD
	repriced := false

	if reprice {
		if quote, ok := n.prices.GetQuote(ctx, market.ChainID, collateralAsset.Address); ok {
			supplyUSD = collateralQty.Mul(quote.PriceUSD)
			collateralUSD = collateralBalanceQty.Mul(quote.PriceUSD)
			repriced = true
		} else {
			n.logger.Debug("No feed quote for collateral asset, keeping indexer USD",
				"symbol", collateralAsset.Symbol, "chain_id", market.ChainID)
		}
		if quote, ok := n.prices.GetQuote(ctx, market.ChainID, market.LoanAsset.Address); ok {
			borrowUSD = borrowQty.Mul(quote.PriceUSD)
			repriced = true
		} else {
			n.logger.Debug("No feed quote for loan asset, keeping indexer USD",
				"symbol", market.LoanAsset.Symbol, "chain_id", market.ChainID)
		}
	}

	row := entity.PositionRow{
		WalletAddress:    p.WalletAddress,
		MarketKey:        market.UniqueKey,
		MarketLabel:      market.Label(),
		ChainID:          market.ChainID,
		LoanSymbol:       market.LoanAsset.Symbol,
		CollateralSymbol: collateralAsset.Symbol,
		Collateral:       collateralQty,
		SupplyUSD:        supplyUSD,
		Borrow:           borrowQty,
		BorrowUSD:        borrowUSD,
		CollateralUSD:    collateralUSD,
		BorrowAPY:        p.BorrowAPY,
		Repriced:         repriced,
	}
	row.LTV = computeLTV(borrowUSD, collateralUSD)
	return row
}

// computeLTV derives borrow/collateral; undefined (nil) when the collateral
// USD value is zero or negative.
func computeLTV(borrowUSD, collateralUSD decimal.Decimal) *decimal.Decimal {
	if collateralUSD.Sign() <= 0 {
		return nil
	}
	ltv := borrowUSD.Div(collateralUSD)
	return &ltv
}
