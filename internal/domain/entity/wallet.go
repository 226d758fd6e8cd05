package entity

// Wallet identifies a position owner by its EVM address.
// Wallets are supplied per request (file or whitelist) and never persisted.
type Wallet struct {
	Address string `json:"address"`
}
