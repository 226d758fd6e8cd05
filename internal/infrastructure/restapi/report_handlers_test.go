package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"position_monitor/internal/domain/entity"
	"position_monitor/internal/infrastructure/configloader"
	"position_monitor/internal/infrastructure/network/definition"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// fakeReportService records the options of the last BuildReport call.
type fakeReportService struct {
	report   entity.Report
	err      error
	lastOpts entity.ReportOptions
}

func (f *fakeReportService) BuildReport(_ context.Context, opts entity.ReportOptions) (entity.Report, error) {
	f.lastOpts = opts
	return f.report, f.err
}

func (f *fakeReportService) GetFailedWallets() []string { return nil }

func newTestRouter(svc *fakeReportService, cfg *configloader.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	chains := definition.NewChainDefinitionProvider(noopLogger{})
	handler := NewReportHandler(svc, chains, cfg, noopLogger{})
	return SetupRouter(handler, zap.NewNop())
}

func defaultConfig() *configloader.Config {
	return &configloader.Config{
		Report: configloader.ReportConfig{Chains: []string{"ethereum"}},
	}
}

func sampleReport() entity.Report {
	return entity.Report{
		Rows: []entity.PositionRow{},
		Consolidated: []entity.ConsolidatedRow{{
			MarketKey:     "0xmkt",
			MarketLabel:   "WETH/USDC",
			ChainID:       1,
			Collateral:    decimal.NewFromInt(12),
			CollateralUSD: decimal.NewFromInt(30000),
			Borrow:        decimal.NewFromInt(5000),
			BorrowUSD:     decimal.NewFromInt(5000),
			BorrowAPY:     decimal.RequireFromString("0.05"),
			Wallets:       2,
		}},
		Totals: entity.ReportTotals{Wallets: 2},
	}
}

func TestGetReportHandler(t *testing.T) {
	svc := &fakeReportService{report: sampleReport()}
	router := newTestRouter(svc, defaultConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Report built successfully.")
	assert.Equal(t, []uint64{1}, svc.lastOpts.ChainIDs)
}

func TestGetReportHandlerQueryOverrides(t *testing.T) {
	svc := &fakeReportService{report: sampleReport()}
	router := newTestRouter(svc, defaultConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/report?chains=base,arbitrum&borrowOnly=true&repriceUsd=true&includeUntrusted=true", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint64{8453, 42161}, svc.lastOpts.ChainIDs)
	assert.True(t, svc.lastOpts.BorrowOnly)
	assert.True(t, svc.lastOpts.RepriceUSD)
	assert.True(t, svc.lastOpts.IncludeUntrusted)
}

func TestGetReportHandlerBadInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"unknown chain", "/api/v1/report?chains=solana"},
		{"bad boolean", "/api/v1/report?borrowOnly=maybe"},
		{"bad wallet in list", "/api/v1/report?wallets=nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeReportService{report: sampleReport()}
			router := newTestRouter(svc, defaultConfig())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetReportHandlerServiceError(t *testing.T) {
	svc := &fakeReportService{err: errors.New("wallet file missing")}
	router := newTestRouter(svc, defaultConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetWalletReportHandler(t *testing.T) {
	svc := &fakeReportService{report: sampleReport()}
	router := newTestRouter(svc, defaultConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/report/wallets/0xd8da6bf26964af9d7eed9e03e53415d37aa96045", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.lastOpts.Wallets, 1)
	// Path address is checksummed before it reaches the service.
	assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", svc.lastOpts.Wallets[0].Address)
}

func TestGetWalletReportHandlerInvalidAddress(t *testing.T) {
	svc := &fakeReportService{report: sampleReport()}
	router := newTestRouter(svc, defaultConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/wallets/banana", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConsolidatedCSVHandler(t *testing.T) {
	svc := &fakeReportService{report: sampleReport()}
	router := newTestRouter(svc, defaultConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/consolidated.csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	body := w.Body.String()
	assert.Contains(t, body, "market,chain_id,collateral,collateral_usd,borrow,borrow_usd,borrow_apy_percent,wallets")
	assert.Contains(t, body, "WETH/USDC,1,12,30000.00,5000,5000.00,5.00,2")
}

func TestHealthz(t *testing.T) {
	svc := &fakeReportService{report: sampleReport()}
	router := newTestRouter(svc, defaultConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWrapReportStatusMessages(t *testing.T) {
	tests := []struct {
		name    string
		totals  entity.ReportTotals
		message string
	}{
		{"all ok", entity.ReportTotals{Wallets: 2}, "Report built successfully."},
		{"partial failure", entity.ReportTotals{Wallets: 2, FailedWallets: 1}, "Some wallets encountered errors."},
		{"total failure", entity.ReportTotals{Wallets: 2, FailedWallets: 2}, "Failed to retrieve positions for every wallet."},
		{"no wallets", entity.ReportTotals{}, "No wallets configured."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := wrapReport(entity.Report{Totals: tt.totals})
			assert.Contains(t, response.StatusMessage, tt.message)
		})
	}
}
