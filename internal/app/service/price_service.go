package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"position_monitor/internal/app/port"
	"position_monitor/internal/client"
	"position_monitor/internal/domain/entity"
	wire "position_monitor/internal/entity"
	"position_monitor/internal/pkg/utils"
	"position_monitor/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// priceServiceImpl implements port.PriceService over the DEX Screener feed
// with a TTL cache, so one report cycle never fetches the same asset twice.
type priceServiceImpl struct {
	feed           client.DEXScreenerClient
	chains         port.ChainDefinitionProvider
	logger         port.Logger
	cache          *gocache.Cache
	maxPerBatch    int
	requestTimeout time.Duration
}

// NewPriceService creates a new priceServiceImpl.
func NewPriceService(
	feed client.DEXScreenerClient,
	chains port.ChainDefinitionProvider,
	logger port.Logger,
	cacheTTL time.Duration,
	cleanupInterval time.Duration,
	maxPerBatch int,
	requestTimeout time.Duration,
) port.PriceService {
	if maxPerBatch <= 0 {
		maxPerBatch = 30 // DEX Screener batch limit
	}
	return &priceServiceImpl{
		feed:           feed,
		chains:         chains,
		logger:         logger,
		cache:          gocache.New(cacheTTL, cleanupInterval),
		maxPerBatch:    maxPerBatch,
		requestTimeout: requestTimeout,
	}
}

// GetQuote implements port.PriceService.
func (s *priceServiceImpl) GetQuote(ctx context.Context, chainID uint64, tokenAddress string) (entity.PriceQuote, bool) {
	if tokenAddress == "" {
		return entity.PriceQuote{}, false
	}
	key := quoteKey(chainID, tokenAddress)
	if cached, ok := s.cache.Get(key); ok {
		metrics.PriceFeedLookups.WithLabelValues("hit").Inc()
		return cached.(entity.PriceQuote), true
	}

	quotes := s.fetchQuotes(ctx, chainID, []string{tokenAddress})
	if quote, ok := quotes[strings.ToLower(tokenAddress)]; ok {
		return quote, true
	}
	metrics.PriceFeedLookups.WithLabelValues("miss").Inc()
	return entity.PriceQuote{}, false
}

// Prime implements port.PriceService: it batch-fetches quotes for every
// distinct, not-yet-cached asset in the given positions.
func (s *priceServiceImpl) Prime(ctx context.Context, positions []entity.Position) {
	wanted := make(map[uint64]map[string]struct{})
	add := func(chainID uint64, address string) {
		if address == "" {
			return
		}
		if _, ok := s.cache.Get(quoteKey(chainID, address)); ok {
			return
		}
		if wanted[chainID] == nil {
			wanted[chainID] = make(map[string]struct{})
		}
		wanted[chainID][strings.ToLower(address)] = struct{}{}
	}
	for _, p := range positions {
		add(p.Market.ChainID, p.Market.LoanAsset.Address)
		add(p.Market.ChainID, p.Market.CollateralAsset.Address)
	}

	for chainID, addressSet := range wanted {
		addresses := make([]string, 0, len(addressSet))
		for a := range addressSet {
			addresses = append(addresses, a)
		}
		for _, batch := range utils.BatchStrings(addresses, s.maxPerBatch) {
			s.fetchQuotes(ctx, chainID, batch)
		}
	}
}

// fetchQuotes resolves one batch of token addresses on one chain and caches
// every quote found. Feed failures are recoverable: the caller falls back to
// indexer pricing for any asset left without a quote.
func (s *priceServiceImpl) fetchQuotes(ctx context.Context, chainID uint64, tokenAddresses []string) map[string]entity.PriceQuote {
	chainDef, ok := s.chains.GetChainDefinitionByChainID(chainID)
	if !ok || chainDef.DEXScreenerChainID == "" {
		s.logger.Warn("No price-feed chain mapping, skipping quote fetch", "chain_id", chainID)
		return nil
	}

	fetchCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.requestTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	pairs, err := s.feed.GetTokenPairsByAddresses(fetchCtx, chainDef.DEXScreenerChainID, tokenAddresses)
	if err != nil {
		metrics.PriceFeedLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Price feed request failed, rows will fall back to indexer USD",
			"chain_id", chainID, "token_count", len(tokenAddresses), "error", err)
		return nil
	}

	quotes := bestQuotes(pairs, chainID)
	now := time.Now()
	for address, quote := range quotes {
		quote.FetchedAt = now
		s.cache.Set(quoteKey(chainID, address), quote, gocache.DefaultExpiration)
		quotes[address] = quote
	}
	s.logger.Debug("Cached price quotes", "chain_id", chainID, "requested", len(tokenAddresses), "resolved", len(quotes))
	return quotes
}

// bestQuotes picks, per base token, the pair with the deepest USD liquidity
// and parses its unit price. Pairs without a usable price are skipped.
func bestQuotes(pairs []wire.PairData, chainID uint64) map[string]entity.PriceQuote {
	type candidate struct {
		quote     entity.PriceQuote
		liquidity float64
	}
	best := make(map[string]candidate)
	for _, pair := range pairs {
		address := strings.ToLower(pair.BaseToken.Address)
		if address == "" || pair.PriceUsd == "" {
			continue
		}
		price, err := decimal.NewFromString(pair.PriceUsd)
		if err != nil || price.Sign() <= 0 {
			continue
		}
		liquidity := 0.0
		if pair.Liquidity != nil {
			liquidity = pair.Liquidity.Usd
		}
		if existing, ok := best[address]; ok && existing.liquidity >= liquidity {
			continue
		}
		best[address] = candidate{
			quote: entity.PriceQuote{
				TokenAddress: address,
				ChainID:      chainID,
				PriceUSD:     price,
			},
			liquidity: liquidity,
		}
	}

	quotes := make(map[string]entity.PriceQuote, len(best))
	for address, c := range best {
		quotes[address] = c.quote
	}
	return quotes
}

func quoteKey(chainID uint64, tokenAddress string) string {
	return fmt.Sprintf("%d:%s", chainID, strings.ToLower(tokenAddress))
}
