package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"position_monitor/internal/app/port"
	"position_monitor/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

const defaultWalletFilePath = "data/wallets.txt"

// WalletFileLoader implements the port.WalletProvider interface by loading
// wallets from a text file, one address per line. Blank lines and lines
// starting with '#' are skipped.
type WalletFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
}

// NewWalletFileLoader creates a new WalletFileLoader. An empty path uses
// the default data/wallets.txt.
func NewWalletFileLoader(filePath string, loggerInfo func(msg string, args ...any)) port.WalletProvider {
	if filePath == "" {
		filePath = defaultWalletFilePath
	}
	return &WalletFileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
	}
}

// GetWallets reads wallet addresses from the configured file path.
// Addresses are validated as hex EVM addresses and normalized to their
// EIP-55 checksum form; invalid lines are skipped with a log entry.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !common.IsHexAddress(line) {
			if l.loggerInfo != nil {
				l.loggerInfo("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", line)
			}
			continue
		}
		wallets = append(wallets, entity.Wallet{Address: common.HexToAddress(line).Hex()})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	}
	return wallets, nil
}
