package definition

import (
	"strconv"
	"strings"

	"position_monitor/internal/app/port"
	"position_monitor/internal/domain/entity"
)

// Chains the lending protocol is deployed on.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.ChainDefinition{
		ChainID:            1,
		Name:               "Ethereum Mainnet",
		Identifier:         "ethereum",
		NativeSymbol:       "ETH",
		DEXScreenerChainID: "ethereum",
		BlockExplorerURL:   "https://etherscan.io",
	}
	Base = entity.ChainDefinition{
		ChainID:            8453,
		Name:               "Base",
		Identifier:         "base",
		NativeSymbol:       "ETH",
		DEXScreenerChainID: "base",
		BlockExplorerURL:   "https://basescan.org",
	}
	Arbitrum = entity.ChainDefinition{
		ChainID:            42161,
		Name:               "Arbitrum One",
		Identifier:         "arbitrum",
		NativeSymbol:       "ETH",
		DEXScreenerChainID: "arbitrum",
		BlockExplorerURL:   "https://arbiscan.io",
	}
)

// ChainDefinitionProvider implements port.ChainDefinitionProvider over the
// built-in chain table.
type ChainDefinitionProvider struct {
	logger       port.Logger
	byIdentifier map[string]entity.ChainDefinition
	byChainID    map[uint64]entity.ChainDefinition
	ordered      []entity.ChainDefinition
}

// NewChainDefinitionProvider creates a provider over all supported chains.
func NewChainDefinitionProvider(logger port.Logger) *ChainDefinitionProvider {
	p := &ChainDefinitionProvider{
		logger:       logger,
		byIdentifier: make(map[string]entity.ChainDefinition),
		byChainID:    make(map[uint64]entity.ChainDefinition),
	}
	for _, def := range []entity.ChainDefinition{Ethereum, Base, Arbitrum} {
		p.byIdentifier[def.Identifier] = def
		p.byChainID[def.ChainID] = def
		p.ordered = append(p.ordered, def)
	}
	logger.Info("Chain definitions initialized", "count", len(p.ordered))
	return p
}

// GetAllChainDefinitions implements port.ChainDefinitionProvider.
func (p *ChainDefinitionProvider) GetAllChainDefinitions() []entity.ChainDefinition {
	defs := make([]entity.ChainDefinition, len(p.ordered))
	copy(defs, p.ordered)
	return defs
}

// GetChainDefinitionByIdentifier implements port.ChainDefinitionProvider.
// Accepts either an identifier ("ethereum") or a decimal chain ID ("1").
func (p *ChainDefinitionProvider) GetChainDefinitionByIdentifier(identifier string) (entity.ChainDefinition, bool) {
	if def, ok := p.byIdentifier[strings.ToLower(strings.TrimSpace(identifier))]; ok {
		return def, true
	}
	if chainID, err := strconv.ParseUint(strings.TrimSpace(identifier), 10, 64); err == nil {
		return p.GetChainDefinitionByChainID(chainID)
	}
	return entity.ChainDefinition{}, false
}

// GetChainDefinitionByChainID implements port.ChainDefinitionProvider.
func (p *ChainDefinitionProvider) GetChainDefinitionByChainID(chainID uint64) (entity.ChainDefinition, bool) {
	def, ok := p.byChainID[chainID]
	return def, ok
}
