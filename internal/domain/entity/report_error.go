package entity

// ReportError describes a recoverable failure encountered while building a
// report. Errors are collected per item; they never abort the whole report.
type ReportError struct {
	WalletAddress string `json:"walletAddress,omitempty"`
	MarketKey     string `json:"marketKey,omitempty"`
	ChainID       uint64 `json:"chainId,omitempty"`
	Message       string `json:"message"`
}
