package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet address already exists")
)

type Wallet struct {
	ID            uint   `gorm:"primaryKey;column:wallet_id"`
	UserID        uint   `gorm:"index;not null"`
	WalletAddress string `gorm:"unique;not null"`
	WalletType    string
	CreatedAt     time.Time
}

func (Wallet) TableName() string {
	return "wallets"
}

type WalletDAO struct {
	db *gorm.DB
}

func NewWalletDAO(db *gorm.DB) *WalletDAO {
	return &WalletDAO{
		db: db,
	}
}

func (d *WalletDAO) Insert(ctx context.Context, wallet Wallet) (Wallet, error) {
	result := d.db.WithContext(ctx).Create(&wallet)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, "wallet_address") {
			return Wallet{}, ErrWalletExists
		}

		return Wallet{}, result.Error
	}

	return wallet, nil
}

func (d *WalletDAO) FindByUserID(ctx context.Context, userID uint) (Wallet, error) {
	var wallet Wallet

	result := d.db.WithContext(ctx).First(&wallet, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Wallet{}, ErrWalletNotFound
		}

		return Wallet{}, result.Error
	}

	return wallet, nil
}

// Upsert replaces the user's wallet address, creating the row when the user
// has none yet.
func (d *WalletDAO) Upsert(ctx context.Context, userID uint, walletAddress, walletType string) (Wallet, error) {
	var wallet Wallet

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.First(&wallet, "user_id = ?", userID)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}

			wallet = Wallet{
				UserID:        userID,
				WalletAddress: walletAddress,
				WalletType:    walletType,
				CreatedAt:     time.Now().UTC(),
			}
			return tx.Create(&wallet).Error
		}

		wallet.WalletAddress = walletAddress
		if walletType != "" {
			wallet.WalletType = walletType
		}
		return tx.Save(&wallet).Error
	})
	if err != nil {
		return Wallet{}, err
	}

	return wallet, nil
}

func (d *WalletDAO) Delete(ctx context.Context, userID uint, walletAddress string) error {
	result := d.db.WithContext(ctx).
		Where("user_id = ? AND wallet_address = ?", userID, walletAddress).
		Delete(&Wallet{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}

	return nil
}
