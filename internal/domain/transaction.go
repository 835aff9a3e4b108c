package domain

import "time"

type TransactionStatus string

const (
	TransactionOnHold   TransactionStatus = "on_hold"
	TransactionApproved TransactionStatus = "approved"
	TransactionSuccess  TransactionStatus = "success"
	TransactionFailed   TransactionStatus = "failed"
)

// Transaction records one redemption request from creation through settlement.
// Status only ever moves on_hold -> approved -> success|failed; the terminal
// states accept no further transitions.
type Transaction struct {
	ID                  uint              `json:"transaction_id"`
	UserID              uint              `json:"user_id"`
	TokensRedeemed      int               `json:"tokens_redeemed"`
	WalletAddress       string            `json:"wallet_address"`
	Status              TransactionStatus `json:"transaction_status"`
	TransactionDate     time.Time         `json:"transaction_date"`
	ChainTxHash         *string           `json:"chain_tx_hash,omitempty"`
	ChainStatus         *string           `json:"chain_status,omitempty"`
	BlockchainTimestamp *time.Time        `json:"blockchain_timestamp,omitempty"`
}

func (t Transaction) IsTerminal() bool {
	return t.Status == TransactionSuccess || t.Status == TransactionFailed
}

func (t Transaction) CanApprove() bool {
	return t.Status == TransactionOnHold
}

// AdminTransaction is a transaction joined with the owning user's identity,
// used by the admin review listing.
type AdminTransaction struct {
	Transaction
	Username string `json:"user_name"`
	Email    string `json:"user_email"`
}
