package entity

// GraphQLRequest is the standard GraphQL POST body.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is a single error entry from a GraphQL response envelope.
type GraphQLError struct {
	Message string `json:"message"`
}

// MarketPositionsResponse is the envelope of the primary, wallet-filtered
// marketPositions query.
type MarketPositionsResponse struct {
	Data *struct {
		MarketPositions *struct {
			Items []MarketPositionItem `json:"items"`
		} `json:"marketPositions"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// UserByAddressResponse is the envelope of the fallback per-chain
// userByAddress query, used when the filtered list field is unavailable.
type UserByAddressResponse struct {
	Data *struct {
		UserByAddress *struct {
			Address         string               `json:"address"`
			MarketPositions []MarketPositionItem `json:"marketPositions"`
		} `json:"userByAddress"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// MarketPositionItem is one (user, market) position as returned by the
// indexer. The fallback query omits the user object; the primary includes
// it so responses can be hard-filtered by address client-side.
type MarketPositionItem struct {
	Market MorphoMarket         `json:"market"`
	User   *MorphoUser          `json:"user"`
	State  *MorphoPositionState `json:"state"`
}

// MorphoMarket describes the market a position belongs to.
type MorphoMarket struct {
	UniqueKey       string       `json:"uniqueKey"`
	Whitelisted     *bool        `json:"whitelisted"` // pointer: older schema omits it
	LoanAsset       MorphoAsset  `json:"loanAsset"`
	CollateralAsset *MorphoAsset `json:"collateralAsset"` // null for idle markets
}

// MorphoAsset is one side of a market pair.
type MorphoAsset struct {
	Address  string       `json:"address"`
	Symbol   string       `json:"symbol"`
	Decimals uint8        `json:"decimals"`
	Chain    *MorphoChain `json:"chain"`
}

// MorphoChain carries the chain ID an asset lives on.
type MorphoChain struct {
	ID uint64 `json:"id"`
}

// MorphoUser is the position owner.
type MorphoUser struct {
	Address string `json:"address"`
}

// MorphoPositionState holds the user-level amounts of a position. The
// indexer serializes raw BigInt amounts as strings and USD values as JSON
// numbers; USD fields are pointers to distinguish null from zero.
type MorphoPositionState struct {
	SupplyAssets    string   `json:"supplyAssets"`
	SupplyAssetsUsd *float64 `json:"supplyAssetsUsd"`
	BorrowAssets    string   `json:"borrowAssets"`
	BorrowAssetsUsd *float64 `json:"borrowAssetsUsd"`
	Collateral      string   `json:"collateral"`
	CollateralUsd   *float64 `json:"collateralUsd"`
	BorrowApy       *float64 `json:"borrowApy"`
}
