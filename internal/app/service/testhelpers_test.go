package service

import (
	"context"
	"math/big"
	"strings"

	"position_monitor/internal/domain/entity"

	"github.com/shopspring/decimal"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// fakePriceService serves quotes from a fixed map keyed "chainID:address".
type fakePriceService struct {
	quotes     map[string]decimal.Decimal
	primeCalls int
}

func (f *fakePriceService) GetQuote(_ context.Context, chainID uint64, tokenAddress string) (entity.PriceQuote, bool) {
	price, ok := f.quotes[quoteKey(chainID, tokenAddress)]
	if !ok {
		return entity.PriceQuote{}, false
	}
	return entity.PriceQuote{TokenAddress: strings.ToLower(tokenAddress), ChainID: chainID, PriceUSD: price}, true
}

func (f *fakePriceService) Prime(context.Context, []entity.Position) {
	f.primeCalls++
}

// rawAmount builds units × 10^decimals as a raw on-chain amount.
func rawAmount(units int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(big.NewInt(units), scale)
}

var (
	wethAsset = entity.Asset{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Decimals: 18}
	usdcAsset = entity.Asset{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6}
)

func walletA() entity.Wallet { return entity.Wallet{Address: "0xA"} }

func wethUsdcMarket() entity.Market {
	return entity.Market{
		UniqueKey:       "0xmarket-weth-usdc",
		ChainID:         1,
		LoanAsset:       usdcAsset,
		CollateralAsset: wethAsset,
		Whitelisted:     true,
	}
}

// position builds a WETH-collateral / USDC-loan position with whole-unit
// amounts and indexer USD values.
func position(wallet string, market entity.Market, supplyUnits, borrowUnits int64, supplyUSD, borrowUSD, collateralUSD float64, apy float64) entity.Position {
	return entity.Position{
		WalletAddress:    wallet,
		Market:           market,
		SupplyAssets:     rawAmount(supplyUnits, market.CollateralAsset.Decimals),
		BorrowAssets:     rawAmount(borrowUnits, market.LoanAsset.Decimals),
		CollateralAssets: rawAmount(supplyUnits, market.CollateralAsset.Decimals),
		SupplyUSD:        decimal.NewFromFloat(supplyUSD),
		BorrowUSD:        decimal.NewFromFloat(borrowUSD),
		CollateralUSD:    decimal.NewFromFloat(collateralUSD),
		BorrowAPY:        decimal.NewFromFloat(apy),
	}
}
