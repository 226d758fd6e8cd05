package port

import (
	"context"

	"position_monitor/internal/domain/entity"
)

// ReportService builds the full position report for a set of wallets.
type ReportService interface {
	// BuildReport runs one fetch → normalize → aggregate cycle under the
	// given options. Per-wallet failures are reported inside the Report;
	// the returned error is reserved for failures that prevent any report
	// at all (e.g. the wallet list cannot be loaded).
	BuildReport(ctx context.Context, opts entity.ReportOptions) (entity.Report, error)

	// GetFailedWallets returns the wallet addresses whose most recent
	// fetch failed.
	GetFailedWallets() []string
}
