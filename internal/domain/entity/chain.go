package entity

// ChainDefinition holds the static description of a supported chain.
// Defined at the domain level so application and infrastructure layers can
// share it.
type ChainDefinition struct {
	ChainID            uint64 `json:"chainId" yaml:"chainId"`
	Name               string `json:"name" yaml:"name"`
	Identifier         string `json:"identifier" yaml:"identifier"` // e.g. "ethereum", "base"
	NativeSymbol       string `json:"nativeSymbol" yaml:"nativeSymbol"`
	DEXScreenerChainID string `json:"dexScreenerChainId" yaml:"dexScreenerChainId"`
	BlockExplorerURL   string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}
