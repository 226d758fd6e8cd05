package entity

// WalletResult is the per-wallet outcome of a position fetch: either the
// wallet's open positions or a failure reason. Modeling failures as values
// keeps one wallet's error from propagating across wallet boundaries.
type WalletResult struct {
	WalletAddress string
	Positions     []Position
	FailureReason string
}

// Failed reports whether the fetch for this wallet did not succeed.
func (r WalletResult) Failed() bool {
	return r.FailureReason != ""
}
