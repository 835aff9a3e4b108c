package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyApproved     = errors.New("transaction already approved")
	ErrInvalidState        = errors.New("transaction is in a terminal state")
)

type Transaction struct {
	ID                  uint      `gorm:"primaryKey;column:transaction_id"`
	UserID              uint      `gorm:"index;not null"`
	TokensRedeemed      int       `gorm:"not null"`
	WalletAddress       string    `gorm:"not null"`
	Status              string    `gorm:"column:transaction_status;not null"`
	TransactionDate     time.Time `gorm:"not null"`
	ChainTxHash         *string   `gorm:"column:chain_tx_hash;unique"`
	ChainStatus         *string
	BlockchainTimestamp *time.Time
}

func (Transaction) TableName() string {
	return "transactions"
}

// AdminTransactionRow carries the join of a transaction with its owner, for
// the admin review listing.
type AdminTransactionRow struct {
	Transaction
	Username string
	Email    string
}

type TransactionDAO struct {
	db *gorm.DB
}

func NewTransactionDAO(db *gorm.DB) *TransactionDAO {
	return &TransactionDAO{
		db: db,
	}
}

func (d *TransactionDAO) FindByID(ctx context.Context, id uint) (Transaction, error) {
	var txn Transaction

	result := d.db.WithContext(ctx).First(&txn, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrTransactionNotFound
		}

		return Transaction{}, result.Error
	}

	return txn, nil
}

func (d *TransactionDAO) FindByUserID(ctx context.Context, userID uint) ([]Transaction, error) {
	var txns []Transaction

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("transaction_date DESC").
		Find(&txns)
	if result.Error != nil {
		return nil, result.Error
	}

	return txns, nil
}

func (d *TransactionDAO) FindByStatus(ctx context.Context, status string) ([]Transaction, error) {
	var txns []Transaction

	result := d.db.WithContext(ctx).
		Where("transaction_status = ?", status).
		Order("transaction_date").
		Find(&txns)
	if result.Error != nil {
		return nil, result.Error
	}

	return txns, nil
}

func (d *TransactionDAO) FindAllWithUsers(ctx context.Context) ([]AdminTransactionRow, error) {
	var rows []AdminTransactionRow

	result := d.db.WithContext(ctx).
		Model(&Transaction{}).
		Select("transactions.*, users.username, users.email").
		Joins("JOIN users ON users.user_id = transactions.user_id").
		Order("transactions.transaction_date DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ApproveBatch flips every listed transaction from on_hold to approved in one
// transaction. Any unknown id or illegal state fails the whole batch.
func (d *TransactionDAO) ApproveBatch(ctx context.Context, ids []uint) ([]Transaction, error) {
	var approved []Transaction

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		for _, id := range ids {
			var txn Transaction

			result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&txn, id)
			if result.Error != nil {
				if errors.Is(result.Error, gorm.ErrRecordNotFound) {
					return ErrTransactionNotFound
				}

				return result.Error
			}

			if txn.Status != "on_hold" {
				return ErrAlreadyApproved
			}

			txn.Status = "approved"
			txn.TransactionDate = now
			if err := tx.Save(&txn).Error; err != nil {
				return err
			}

			approved = append(approved, txn)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return approved, nil
}

// MarkSettled records a terminal settlement outcome. Transactions already in
// a terminal state are left untouched.
func (d *TransactionDAO) MarkSettled(ctx context.Context, id uint, status string, txHash, chainStatus *string) (Transaction, error) {
	var txn Transaction

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&txn, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}

			return result.Error
		}

		if txn.Status == "success" || txn.Status == "failed" {
			return ErrInvalidState
		}

		now := time.Now().UTC()

		txn.Status = status
		txn.ChainTxHash = txHash
		txn.ChainStatus = chainStatus
		txn.BlockchainTimestamp = &now

		return tx.Save(&txn).Error
	})
	if err != nil {
		return Transaction{}, err
	}

	return txn, nil
}
