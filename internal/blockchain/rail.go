package blockchain

import "context"

// TransferRail sends redeemed tokens to a user's wallet. Implementations must
// treat a returned error as "nothing left the sender account"; a result with
// StatusFailed means the transfer was mined but reverted.
type TransferRail interface {
	Transfer(ctx context.Context, toAddress string, tokens int) (TransferResult, error)
}

const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

type TransferResult struct {
	Status       string
	TxHash       string
	ExplorerLink string
}
