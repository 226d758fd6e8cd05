package entity

// Asset describes one side of a lending market.
type Asset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Market identifies a lending market: a collateral/loan asset pair on a
// specific chain, keyed by the protocol's unique market key.
type Market struct {
	UniqueKey       string `json:"marketKey"`
	ChainID         uint64 `json:"chainId"`
	LoanAsset       Asset  `json:"loanAsset"`
	CollateralAsset Asset  `json:"collateralAsset"`
	Whitelisted     bool   `json:"whitelisted"`
}

// Label returns the conventional "COLLATERAL/LOAN" pair label, e.g. "WETH/USDC".
func (m Market) Label() string {
	return m.CollateralAsset.Symbol + "/" + m.LoanAsset.Symbol
}
