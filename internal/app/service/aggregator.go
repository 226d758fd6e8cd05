package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"position_monitor/internal/app/port"
	"position_monitor/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// usdSanityCap drops rows whose USD values point at an aberrant oracle
// (nothing legitimate in a single wallet's market exceeds $100B).
var usdSanityCap = decimal.New(1, 11)

// Aggregator merges per-wallet fetch results into the per-wallet detail
// table and the consolidated per-market table. All merging is commutative,
// so the fan-out completion order never affects the output.
type Aggregator struct {
	normalizer *Normalizer
	logger     port.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(normalizer *Normalizer, logger port.Logger) *Aggregator {
	return &Aggregator{normalizer: normalizer, logger: logger}
}

// consolidatedAcc accumulates one market across wallets.
type consolidatedAcc struct {
	row          entity.ConsolidatedRow
	rateWeighted decimal.Decimal // sum of APY × borrowUSD
	rateSum      decimal.Decimal
	samples      int64
	wallets      map[string]struct{}
}

// BuildReport implements the aggregation pipeline for one report cycle.
func (a *Aggregator) BuildReport(ctx context.Context, results []entity.WalletResult, opts entity.ReportOptions) entity.Report {
	report := entity.Report{
		Rows:         []entity.PositionRow{},
		Consolidated: []entity.ConsolidatedRow{},
		GeneratedAt:  time.Now(),
	}

	sorted := make([]entity.WalletResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].WalletAddress < sorted[j].WalletAddress })

	consolidated := make(map[string]*consolidatedAcc)

	for _, result := range sorted {
		summary := entity.WalletSummary{WalletAddress: result.WalletAddress}

		if result.Failed() {
			summary.Failed = true
			summary.FailureReason = result.FailureReason
			report.Summaries = append(report.Summaries, summary)
			report.Errors = append(report.Errors, entity.ReportError{
				WalletAddress: result.WalletAddress,
				Message:       result.FailureReason,
			})
			report.Totals.FailedWallets++
			continue
		}

		seenMarkets := make(map[string]struct{})
		for _, p := range result.Positions {
			// De-dup in case the API returns duplicates.
			if _, dup := seenMarkets[p.Market.UniqueKey]; dup {
				continue
			}
			seenMarkets[p.Market.UniqueKey] = struct{}{}

			if !opts.IncludeUntrusted && !p.Market.Whitelisted {
				report.Diagnostics = append(report.Diagnostics, fmt.Sprintf(
					"skipped non-whitelisted market %s for %s", p.Market.UniqueKey, result.WalletAddress))
				continue
			}

			row := a.normalizer.Row(ctx, p, opts.RepriceUSD)

			if maxUSD(row).GreaterThan(usdSanityCap) {
				report.Diagnostics = append(report.Diagnostics, fmt.Sprintf(
					"skipped %s for %s due to abnormal USD value: supplyUsd=%s borrowUsd=%s collateralUsd=%s",
					row.MarketKey, result.WalletAddress,
					row.SupplyUSD.String(), row.BorrowUSD.String(), row.CollateralUSD.String()))
				continue
			}

			summary.SupplyUSD = summary.SupplyUSD.Add(row.SupplyUSD)
			summary.BorrowUSD = summary.BorrowUSD.Add(row.BorrowUSD)
			summary.CollateralUSD = summary.CollateralUSD.Add(row.CollateralUSD)
			summary.Positions++

			a.consolidate(consolidated, row)

			// The borrow-only filter hides zero-borrow rows from the
			// detail table only; KPIs and the consolidated table still
			// include them.
			if opts.BorrowOnly && !p.HasBorrow() {
				continue
			}
			report.Rows = append(report.Rows, row)
		}

		summary.NetUSD = summary.SupplyUSD.Sub(summary.BorrowUSD)
		report.Summaries = append(report.Summaries, summary)

		report.Totals.SupplyUSD = report.Totals.SupplyUSD.Add(summary.SupplyUSD)
		report.Totals.BorrowUSD = report.Totals.BorrowUSD.Add(summary.BorrowUSD)
		report.Totals.CollateralUSD = report.Totals.CollateralUSD.Add(summary.CollateralUSD)
	}

	report.Totals.NetUSD = report.Totals.SupplyUSD.Sub(report.Totals.BorrowUSD)
	report.Totals.Wallets = len(sorted)

	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].WalletAddress != report.Rows[j].WalletAddress {
			return report.Rows[i].WalletAddress < report.Rows[j].WalletAddress
		}
		return report.Rows[i].MarketKey < report.Rows[j].MarketKey
	})

	report.Consolidated = finalizeConsolidated(consolidated)
	return report
}

func (a *Aggregator) consolidate(acc map[string]*consolidatedAcc, row entity.PositionRow) {
	c, ok := acc[row.MarketKey]
	if !ok {
		c = &consolidatedAcc{
			row: entity.ConsolidatedRow{
				MarketKey:        row.MarketKey,
				MarketLabel:      row.MarketLabel,
				ChainID:          row.ChainID,
				LoanSymbol:       row.LoanSymbol,
				CollateralSymbol: row.CollateralSymbol,
			},
			wallets: make(map[string]struct{}),
		}
		acc[row.MarketKey] = c
	}
	c.row.Collateral = c.row.Collateral.Add(row.Collateral)
	c.row.SupplyUSD = c.row.SupplyUSD.Add(row.SupplyUSD)
	c.row.Borrow = c.row.Borrow.Add(row.Borrow)
	c.row.BorrowUSD = c.row.BorrowUSD.Add(row.BorrowUSD)
	c.row.CollateralUSD = c.row.CollateralUSD.Add(row.CollateralUSD)
	c.rateWeighted = c.rateWeighted.Add(row.BorrowAPY.Mul(row.BorrowUSD))
	c.rateSum = c.rateSum.Add(row.BorrowAPY)
	c.samples++
	c.wallets[row.WalletAddress] = struct{}{}
}

// finalizeConsolidated resolves each market's representative borrow rate:
// borrow-USD-weighted mean, or the plain mean when no wallet borrows there.
func finalizeConsolidated(acc map[string]*consolidatedAcc) []entity.ConsolidatedRow {
	rows := make([]entity.ConsolidatedRow, 0, len(acc))
	for _, c := range acc {
		if c.row.BorrowUSD.Sign() > 0 {
			c.row.BorrowAPY = c.rateWeighted.Div(c.row.BorrowUSD)
		} else if c.samples > 0 {
			c.row.BorrowAPY = c.rateSum.Div(decimal.NewFromInt(c.samples))
		}
		c.row.Wallets = len(c.wallets)
		rows = append(rows, c.row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MarketKey < rows[j].MarketKey })
	return rows
}

func maxUSD(row entity.PositionRow) decimal.Decimal {
	m := row.SupplyUSD
	if row.BorrowUSD.GreaterThan(m) {
		m = row.BorrowUSD
	}
	if row.CollateralUSD.GreaterThan(m) {
		m = row.CollateralUSD
	}
	return m
}
