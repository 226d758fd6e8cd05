package port

import "position_monitor/internal/domain/entity"

// ChainDefinitionProvider supplies the static definitions of supported chains.
type ChainDefinitionProvider interface {
	// GetAllChainDefinitions returns every supported chain.
	GetAllChainDefinitions() []entity.ChainDefinition

	// GetChainDefinitionByIdentifier looks a chain up by identifier
	// ("ethereum") or decimal chain ID ("1"). Returns false when unknown.
	GetChainDefinitionByIdentifier(identifier string) (entity.ChainDefinition, bool)

	// GetChainDefinitionByChainID looks a chain up by numeric chain ID.
	GetChainDefinitionByChainID(chainID uint64) (entity.ChainDefinition, bool)
}
