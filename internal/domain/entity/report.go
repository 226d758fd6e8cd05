package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportOptions is the immutable per-request configuration for one report
// cycle. It travels through the whole fetch/normalize/aggregate pipeline so
// no filter state lives in globals.
type ReportOptions struct {
	// Wallets overrides the provider's wallet list when non-empty.
	Wallets []Wallet
	// ChainIDs restricts the report to the given chains; empty means all
	// supported chains.
	ChainIDs []uint64
	// BorrowOnly hides per-wallet rows with zero raw borrow.
	BorrowOnly bool
	// RepriceUSD recomputes USD values from the external price feed,
	// falling back to indexer pricing per asset when no quote exists.
	RepriceUSD bool
	// IncludeUntrusted keeps positions in non-whitelisted markets, which
	// may carry unreliable oracle pricing.
	IncludeUntrusted bool
}

// PositionRow is one row of the per-wallet detail table. By display
// convention the protocol's supply amount is shown as "Collateral".
type PositionRow struct {
	WalletAddress    string          `json:"walletAddress"`
	MarketKey        string          `json:"marketKey"`
	MarketLabel      string          `json:"marketLabel"`
	ChainID          uint64          `json:"chainId"`
	LoanSymbol       string          `json:"loanSymbol"`
	CollateralSymbol string          `json:"collateralSymbol"`
	Collateral       decimal.Decimal `json:"collateral"`
	SupplyUSD        decimal.Decimal `json:"supplyUsd"`
	Borrow           decimal.Decimal `json:"borrow"`
	BorrowUSD        decimal.Decimal `json:"borrowUsd"`
	CollateralUSD    decimal.Decimal `json:"collateralUsd"`
	BorrowAPY        decimal.Decimal `json:"borrowApy"`
	// LTV is nil when the collateral USD value is zero or unresolvable;
	// the presentation layer renders it as "n/a".
	LTV *decimal.Decimal `json:"ltv,omitempty"`
	// Repriced marks rows whose USD values came from the external price
	// feed instead of the indexer.
	Repriced bool `json:"repriced,omitempty"`
}

// ConsolidatedRow aggregates one market across all reported wallets.
type ConsolidatedRow struct {
	MarketKey        string          `json:"marketKey"`
	MarketLabel      string          `json:"marketLabel"`
	ChainID          uint64          `json:"chainId"`
	LoanSymbol       string          `json:"loanSymbol"`
	CollateralSymbol string          `json:"collateralSymbol"`
	Collateral       decimal.Decimal `json:"collateral"`
	SupplyUSD        decimal.Decimal `json:"supplyUsd"`
	Borrow           decimal.Decimal `json:"borrow"`
	BorrowUSD        decimal.Decimal `json:"borrowUsd"`
	CollateralUSD    decimal.Decimal `json:"collateralUsd"`
	// BorrowAPY is the borrow-USD-weighted mean of the wallets' current
	// rates for this market (plain mean when total borrow is zero).
	BorrowAPY decimal.Decimal `json:"borrowApy"`
	Wallets   int             `json:"wallets"`
}

// WalletSummary holds the KPI block for one wallet.
type WalletSummary struct {
	WalletAddress string          `json:"walletAddress"`
	SupplyUSD     decimal.Decimal `json:"supplyUsd"`
	BorrowUSD     decimal.Decimal `json:"borrowUsd"`
	CollateralUSD decimal.Decimal `json:"collateralUsd"`
	NetUSD        decimal.Decimal `json:"netUsd"`
	Positions     int             `json:"positions"`
	Failed        bool            `json:"failed"`
	FailureReason string          `json:"failureReason,omitempty"`
}

// ReportTotals holds the KPI block over all wallets.
type ReportTotals struct {
	SupplyUSD     decimal.Decimal `json:"supplyUsd"`
	BorrowUSD     decimal.Decimal `json:"borrowUsd"`
	CollateralUSD decimal.Decimal `json:"collateralUsd"`
	NetUSD        decimal.Decimal `json:"netUsd"`
	Wallets       int             `json:"wallets"`
	FailedWallets int             `json:"failedWallets"`
}

// Report is the full output of one report cycle: the per-wallet table, the
// consolidated table, KPIs, and every diagnostic collected along the way.
type Report struct {
	Rows         []PositionRow     `json:"rows"`
	Consolidated []ConsolidatedRow `json:"consolidated"`
	Summaries    []WalletSummary   `json:"summaries"`
	Totals       ReportTotals      `json:"totals"`
	Errors       []ReportError     `json:"errors,omitempty"`
	Diagnostics  []string          `json:"diagnostics,omitempty"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}
