package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"position_monitor/internal/app/port"
	"position_monitor/internal/domain/entity"
	"position_monitor/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// ReportServiceImpl implements port.ReportService: one fetch → normalize →
// aggregate cycle per call, with per-wallet fan-out.
type ReportServiceImpl struct {
	walletProvider        port.WalletProvider
	chainProvider         port.ChainDefinitionProvider
	fetcher               port.PositionFetcher
	priceService          port.PriceService
	aggregator            *Aggregator
	logger                port.Logger
	maxConcurrentRoutines int

	mu            sync.Mutex
	failedWallets map[string]bool
}

// NewReportService creates a new ReportServiceImpl.
func NewReportService(
	wp port.WalletProvider,
	cp port.ChainDefinitionProvider,
	fetcher port.PositionFetcher,
	ps port.PriceService,
	aggregator *Aggregator,
	logger port.Logger,
	maxRoutines int,
) port.ReportService {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &ReportServiceImpl{
		walletProvider:        wp,
		chainProvider:         cp,
		fetcher:               fetcher,
		priceService:          ps,
		aggregator:            aggregator,
		logger:                logger,
		maxConcurrentRoutines: maxRoutines,
		failedWallets:         make(map[string]bool),
	}
}

// BuildReport implements port.ReportService.
func (s *ReportServiceImpl) BuildReport(ctx context.Context, opts entity.ReportOptions) (entity.Report, error) {
	started := time.Now()

	wallets, err := s.resolveWallets(opts)
	if err != nil {
		return entity.Report{}, fmt.Errorf("failed to load wallets: %w", err)
	}
	if len(wallets) == 0 {
		s.logger.Warn("No wallets to report on")
		return s.aggregator.BuildReport(ctx, nil, opts), nil
	}

	chainIDs := s.resolveChainIDs(opts)
	s.logger.Debug("Building report", "wallets", len(wallets), "chains", chainIDs,
		"borrow_only", opts.BorrowOnly, "reprice_usd", opts.RepriceUSD)

	// Fan out one fetch per wallet. Failures become per-wallet results,
	// never group errors, so one bad wallet cannot sink the batch.
	results := make([]entity.WalletResult, len(wallets))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentRoutines)
	for i, wallet := range wallets {
		g.Go(func() error {
			positions, err := s.fetcher.FetchPositions(groupCtx, wallet, chainIDs)
			if err != nil {
				s.logger.Warn("Wallet fetch failed", "wallet", wallet.Address, "error", err)
				metrics.WalletFetches.WithLabelValues("failure").Inc()
				results[i] = entity.WalletResult{WalletAddress: wallet.Address, FailureReason: err.Error()}
				return nil
			}
			metrics.WalletFetches.WithLabelValues("success").Inc()
			results[i] = entity.WalletResult{WalletAddress: wallet.Address, Positions: positions}
			return nil
		})
	}
	_ = g.Wait()

	s.recordFailures(results)

	if opts.RepriceUSD {
		var all []entity.Position
		for _, r := range results {
			all = append(all, r.Positions...)
		}
		s.priceService.Prime(ctx, all)
	}

	report := s.aggregator.BuildReport(ctx, results, opts)
	metrics.ReportBuildDuration.Observe(time.Since(started).Seconds())
	s.logger.Info("Report built",
		"wallets", report.Totals.Wallets,
		"failed_wallets", report.Totals.FailedWallets,
		"rows", len(report.Rows),
		"markets", len(report.Consolidated),
		"duration_ms", time.Since(started).Milliseconds())
	return report, nil
}

// GetFailedWallets implements port.ReportService.
func (s *ReportServiceImpl) GetFailedWallets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := make([]string, 0, len(s.failedWallets))
	for address := range s.failedWallets {
		failed = append(failed, address)
	}
	sort.Strings(failed)
	return failed
}

func (s *ReportServiceImpl) recordFailures(results []entity.WalletResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedWallets = make(map[string]bool)
	for _, r := range results {
		if r.Failed() {
			s.failedWallets[r.WalletAddress] = true
		}
	}
}

func (s *ReportServiceImpl) resolveWallets(opts entity.ReportOptions) ([]entity.Wallet, error) {
	if len(opts.Wallets) > 0 {
		return opts.Wallets, nil
	}
	return s.walletProvider.GetWallets()
}

func (s *ReportServiceImpl) resolveChainIDs(opts entity.ReportOptions) []uint64 {
	if len(opts.ChainIDs) > 0 {
		return opts.ChainIDs
	}
	defs := s.chainProvider.GetAllChainDefinitions()
	ids := make([]uint64, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ChainID)
	}
	return ids
}
