package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"position_monitor/internal/domain/entity"
	wire "position_monitor/internal/entity"
	"position_monitor/internal/infrastructure/network/definition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeed returns canned pair data and records every request.
type fakeFeed struct {
	pairs    []wire.PairData
	err      error
	requests [][]string
}

func (f *fakeFeed) GetTokenPairsByAddresses(_ context.Context, _ string, tokenAddresses []string) ([]wire.PairData, error) {
	f.requests = append(f.requests, tokenAddresses)
	return f.pairs, f.err
}

func pairFor(address, priceUsd string, liquidityUsd float64) wire.PairData {
	return wire.PairData{
		ChainID:   "ethereum",
		BaseToken: wire.DEXToken{Address: address, Symbol: "TOK"},
		PriceUsd:  priceUsd,
		Liquidity: &wire.DEXLiquidity{Usd: liquidityUsd},
	}
}

func newTestPriceService(feed *fakeFeed) *priceServiceImpl {
	chains := definition.NewChainDefinitionProvider(noopLogger{})
	svc := NewPriceService(feed, chains, noopLogger{}, time.Minute, time.Minute, 2, time.Second)
	return svc.(*priceServiceImpl)
}

func TestGetQuoteCachesResult(t *testing.T) {
	feed := &fakeFeed{pairs: []wire.PairData{pairFor(wethAsset.Address, "2500.5", 1e6)}}
	svc := newTestPriceService(feed)

	quote, ok := svc.GetQuote(context.Background(), 1, wethAsset.Address)
	require.True(t, ok)
	assert.Equal(t, "2500.5", quote.PriceUSD.String())

	// Second lookup is served from cache, case-insensitively.
	_, ok = svc.GetQuote(context.Background(), 1, "0xC02AAA39B223FE8D0A0E5C4F27EAD9083C756CC2")
	require.True(t, ok)
	assert.Len(t, feed.requests, 1)
}

func TestGetQuoteMiss(t *testing.T) {
	feed := &fakeFeed{}
	svc := newTestPriceService(feed)

	_, ok := svc.GetQuote(context.Background(), 1, wethAsset.Address)
	assert.False(t, ok)
}

func TestGetQuoteFeedErrorIsRecoverable(t *testing.T) {
	feed := &fakeFeed{err: errors.New("rate limited")}
	svc := newTestPriceService(feed)

	_, ok := svc.GetQuote(context.Background(), 1, wethAsset.Address)
	assert.False(t, ok)
}

func TestGetQuoteUnknownChainSkipsFeed(t *testing.T) {
	feed := &fakeFeed{}
	svc := newTestPriceService(feed)

	_, ok := svc.GetQuote(context.Background(), 999, wethAsset.Address)
	assert.False(t, ok)
	assert.Empty(t, feed.requests)
}

func TestBestQuotesPicksDeepestLiquidity(t *testing.T) {
	pairs := []wire.PairData{
		pairFor(wethAsset.Address, "2400", 1e4),
		pairFor(wethAsset.Address, "2500", 1e7),
		pairFor(wethAsset.Address, "2600", 1e5),
	}

	quotes := bestQuotes(pairs, 1)
	require.Len(t, quotes, 1)
	quote := quotes["0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"]
	assert.Equal(t, "2500", quote.PriceUSD.String())
}

func TestBestQuotesSkipsUnusablePairs(t *testing.T) {
	pairs := []wire.PairData{
		pairFor(wethAsset.Address, "", 1e6),
		pairFor(wethAsset.Address, "not-a-number", 1e6),
		pairFor(wethAsset.Address, "0", 1e6),
		pairFor("", "2500", 1e6),
	}

	assert.Empty(t, bestQuotes(pairs, 1))
}

func TestPrimeBatchesDistinctUncachedAssets(t *testing.T) {
	feed := &fakeFeed{pairs: []wire.PairData{pairFor(wethAsset.Address, "2500", 1e6)}}
	svc := newTestPriceService(feed) // maxPerBatch = 2

	market := wethUsdcMarket()
	positions := []entity.Position{
		position("0xA", market, 10, 5000, 25000, 5000, 25000, 0.05),
		position("0xB", market, 2, 0, 5000, 0, 5000, 0.05),
	}

	svc.Prime(context.Background(), positions)

	// Two distinct assets fit one batch despite appearing in two positions.
	require.Len(t, feed.requests, 1)
	assert.ElementsMatch(t, []string{
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
	}, feed.requests[0])

	// WETH is cached now; only the still-unquoted USDC is refetched.
	svc.Prime(context.Background(), positions[:1])
	require.Len(t, feed.requests, 2)
	assert.Equal(t, []string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}, feed.requests[1])
}
