package domain

import "time"

type Wallet struct {
	ID            uint      `json:"wallet_id"`
	UserID        uint      `json:"user_id"`
	WalletAddress string    `json:"wallet_address"`
	WalletType    string    `json:"wallet_type"`
	CreatedAt     time.Time `json:"created_at"`
}
