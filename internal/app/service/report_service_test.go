package service

import (
	"context"
	"errors"
	"testing"

	"position_monitor/internal/domain/entity"
	"position_monitor/internal/infrastructure/network/definition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned positions per wallet; addresses in failures
// return an error instead.
type fakeFetcher struct {
	positions map[string][]entity.Position
	failures  map[string]error
	chainIDs  [][]uint64
}

func (f *fakeFetcher) FetchPositions(_ context.Context, wallet entity.Wallet, chainIDs []uint64) ([]entity.Position, error) {
	f.chainIDs = append(f.chainIDs, chainIDs)
	if err, ok := f.failures[wallet.Address]; ok {
		return nil, err
	}
	return f.positions[wallet.Address], nil
}

type fakeWalletProvider struct {
	wallets []entity.Wallet
	err     error
}

func (f *fakeWalletProvider) GetWallets() ([]entity.Wallet, error) {
	return f.wallets, f.err
}

func newTestReportService(fetcher *fakeFetcher, wp *fakeWalletProvider, prices *fakePriceService) *ReportServiceImpl {
	chains := definition.NewChainDefinitionProvider(noopLogger{})
	normalizer := NewNormalizer(prices, noopLogger{})
	aggregator := NewAggregator(normalizer, noopLogger{})
	svc := NewReportService(wp, chains, fetcher, prices, aggregator, noopLogger{}, 4)
	return svc.(*ReportServiceImpl)
}

func TestBuildReportPartialFailureIsolated(t *testing.T) {
	market := wethUsdcMarket()
	fetcher := &fakeFetcher{
		positions: map[string][]entity.Position{
			"0xA": {position("0xA", market, 10, 5000, 25000, 5000, 25000, 0.05)},
		},
		failures: map[string]error{
			"0xB": errors.New("indexer unreachable"),
		},
	}
	wp := &fakeWalletProvider{wallets: []entity.Wallet{{Address: "0xA"}, {Address: "0xB"}}}
	svc := newTestReportService(fetcher, wp, &fakePriceService{})

	report, err := svc.BuildReport(context.Background(), entity.ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Totals.Wallets)
	assert.Equal(t, 1, report.Totals.FailedWallets)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "0xA", report.Rows[0].WalletAddress)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "0xB", report.Errors[0].WalletAddress)

	assert.Equal(t, []string{"0xB"}, svc.GetFailedWallets())
}

func TestBuildReportFailedWalletsResetEachCycle(t *testing.T) {
	market := wethUsdcMarket()
	fetcher := &fakeFetcher{
		failures: map[string]error{"0xB": errors.New("boom")},
		positions: map[string][]entity.Position{
			"0xA": {position("0xA", market, 1, 0, 100, 0, 100, 0)},
		},
	}
	wp := &fakeWalletProvider{wallets: []entity.Wallet{{Address: "0xA"}, {Address: "0xB"}}}
	svc := newTestReportService(fetcher, wp, &fakePriceService{})

	_, err := svc.BuildReport(context.Background(), entity.ReportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0xB"}, svc.GetFailedWallets())

	// Wallet recovers on the next cycle.
	delete(fetcher.failures, "0xB")
	_, err = svc.BuildReport(context.Background(), entity.ReportOptions{})
	require.NoError(t, err)
	assert.Empty(t, svc.GetFailedWallets())
}

func TestBuildReportWalletProviderError(t *testing.T) {
	wp := &fakeWalletProvider{err: errors.New("no such file")}
	svc := newTestReportService(&fakeFetcher{}, wp, &fakePriceService{})

	_, err := svc.BuildReport(context.Background(), entity.ReportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load wallets")
}

func TestBuildReportWalletOverrideSkipsProvider(t *testing.T) {
	market := wethUsdcMarket()
	fetcher := &fakeFetcher{
		positions: map[string][]entity.Position{
			"0xC": {position("0xC", market, 1, 0, 100, 0, 100, 0)},
		},
	}
	wp := &fakeWalletProvider{err: errors.New("provider must not be called")}
	svc := newTestReportService(fetcher, wp, &fakePriceService{})

	report, err := svc.BuildReport(context.Background(), entity.ReportOptions{
		Wallets: []entity.Wallet{{Address: "0xC"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Totals.Wallets)
}

func TestBuildReportDefaultsToAllChains(t *testing.T) {
	fetcher := &fakeFetcher{}
	wp := &fakeWalletProvider{wallets: []entity.Wallet{{Address: "0xA"}}}
	svc := newTestReportService(fetcher, wp, &fakePriceService{})

	_, err := svc.BuildReport(context.Background(), entity.ReportOptions{})
	require.NoError(t, err)
	require.Len(t, fetcher.chainIDs, 1)
	assert.ElementsMatch(t, []uint64{1, 8453, 42161}, fetcher.chainIDs[0])
}

func TestBuildReportPrimesPricesOnlyWhenRepricing(t *testing.T) {
	market := wethUsdcMarket()
	fetcher := &fakeFetcher{
		positions: map[string][]entity.Position{
			"0xA": {position("0xA", market, 1, 0, 100, 0, 100, 0)},
		},
	}
	wp := &fakeWalletProvider{wallets: []entity.Wallet{{Address: "0xA"}}}
	prices := &fakePriceService{}
	svc := newTestReportService(fetcher, wp, prices)

	_, err := svc.BuildReport(context.Background(), entity.ReportOptions{})
	require.NoError(t, err)
	assert.Zero(t, prices.primeCalls)

	_, err = svc.BuildReport(context.Background(), entity.ReportOptions{RepriceUSD: true})
	require.NoError(t, err)
	assert.Equal(t, 1, prices.primeCalls)
}
