package restapi

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"position_monitor/internal/app/port"
	"position_monitor/internal/domain/entity"
	"position_monitor/internal/infrastructure/configloader"
	"position_monitor/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// APIReportResponse wraps a report for the JSON endpoints.
type APIReportResponse struct {
	Data struct {
		Report entity.Report `json:"report"`
	} `json:"data"`
	ServiceErrors []entity.ReportError `json:"service_errors,omitempty"`
	StatusMessage string               `json:"status_message"`
}

// ReportHandler handles HTTP requests for position reports.
type ReportHandler struct {
	reportService port.ReportService
	chainProvider port.ChainDefinitionProvider
	cfg           *configloader.Config
	logger        port.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs port.ReportService, cp port.ChainDefinitionProvider, cfg *configloader.Config, logger port.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: rs,
		chainProvider: cp,
		cfg:           cfg,
		logger:        logger,
	}
}

// GetReportHandler handles GET /api/v1/report. Query parameters override
// the configured report defaults per request.
func (h *ReportHandler) GetReportHandler(c *gin.Context) {
	opts, err := h.optionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.BuildReport(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error("Report build failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.JSON(http.StatusOK, wrapReport(report))
}

// GetWalletReportHandler handles GET /api/v1/report/wallets/:walletAddress:
// a report scoped to one wallet, whatever the configured wallet list says.
func (h *ReportHandler) GetWalletReportHandler(c *gin.Context) {
	address := c.Param("walletAddress")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address: " + address})
		return
	}

	opts, err := h.optionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts.Wallets = []entity.Wallet{{Address: common.HexToAddress(address).Hex()}}

	report, err := h.reportService.BuildReport(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error("Wallet report build failed", "wallet", address, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.JSON(http.StatusOK, wrapReport(report))
}

// GetConsolidatedCSVHandler handles GET /api/v1/report/consolidated.csv.
func (h *ReportHandler) GetConsolidatedCSVHandler(c *gin.Context) {
	opts, err := h.optionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.BuildReport(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error("Consolidated report build failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="consolidated.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"market", "chain_id", "collateral", "collateral_usd", "borrow", "borrow_usd", "borrow_apy_percent", "wallets"})
	for _, row := range report.Consolidated {
		_ = w.Write([]string{
			row.MarketLabel,
			strconv.FormatUint(row.ChainID, 10),
			utils.FormatQuantity(row.Collateral),
			utils.FormatUSD(row.CollateralUSD),
			utils.FormatQuantity(row.Borrow),
			utils.FormatUSD(row.BorrowUSD),
			utils.FormatRatePercent(row.BorrowAPY),
			strconv.Itoa(row.Wallets),
		})
	}
	w.Flush()
}

// optionsFromQuery builds ReportOptions from configured defaults plus
// request query overrides.
func (h *ReportHandler) optionsFromQuery(c *gin.Context) (entity.ReportOptions, error) {
	opts := entity.ReportOptions{
		BorrowOnly:       h.cfg.Report.BorrowOnly,
		RepriceUSD:       h.cfg.Report.RepriceUSD,
		IncludeUntrusted: h.cfg.Report.IncludeUntrusted,
	}

	chains := h.cfg.Report.Chains
	if raw := c.Query("chains"); raw != "" {
		chains = strings.Split(raw, ",")
	}
	for _, identifier := range chains {
		identifier = strings.TrimSpace(identifier)
		if identifier == "" {
			continue
		}
		def, ok := h.chainProvider.GetChainDefinitionByIdentifier(identifier)
		if !ok {
			return entity.ReportOptions{}, &unknownChainError{identifier: identifier}
		}
		opts.ChainIDs = append(opts.ChainIDs, def.ChainID)
	}

	if raw := c.Query("wallets"); raw != "" {
		for _, address := range strings.Split(raw, ",") {
			address = strings.TrimSpace(address)
			if address == "" {
				continue
			}
			if !common.IsHexAddress(address) {
				return entity.ReportOptions{}, &invalidWalletError{address: address}
			}
			opts.Wallets = append(opts.Wallets, entity.Wallet{Address: common.HexToAddress(address).Hex()})
		}
	}

	var err error
	if opts.BorrowOnly, err = queryBool(c, "borrowOnly", opts.BorrowOnly); err != nil {
		return entity.ReportOptions{}, err
	}
	if opts.RepriceUSD, err = queryBool(c, "repriceUsd", opts.RepriceUSD); err != nil {
		return entity.ReportOptions{}, err
	}
	if opts.IncludeUntrusted, err = queryBool(c, "includeUntrusted", opts.IncludeUntrusted); err != nil {
		return entity.ReportOptions{}, err
	}
	return opts, nil
}

func queryBool(c *gin.Context, name string, fallback bool) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &invalidBoolError{name: name, value: raw}
	}
	return value, nil
}

func wrapReport(report entity.Report) APIReportResponse {
	response := APIReportResponse{ServiceErrors: report.Errors}
	response.Data.Report = report

	switch {
	case report.Totals.FailedWallets > 0 && report.Totals.FailedWallets == report.Totals.Wallets:
		response.StatusMessage = "Failed to retrieve positions for every wallet."
	case report.Totals.FailedWallets > 0:
		response.StatusMessage = "Report built. Some wallets encountered errors."
	case report.Totals.Wallets == 0:
		response.StatusMessage = "No wallets configured. Check the wallet list."
	default:
		response.StatusMessage = "Report built successfully."
	}
	return response
}

type unknownChainError struct{ identifier string }

func (e *unknownChainError) Error() string { return "unknown chain: " + e.identifier }

type invalidWalletError struct{ address string }

func (e *invalidWalletError) Error() string { return "invalid wallet address: " + e.address }

type invalidBoolError struct{ name, value string }

func (e *invalidBoolError) Error() string {
	return "invalid boolean value for " + e.name + ": " + e.value
}
