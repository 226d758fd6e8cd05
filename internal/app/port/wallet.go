package port

import "position_monitor/internal/domain/entity"

// WalletProvider defines the interface for supplying the wallet list.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
