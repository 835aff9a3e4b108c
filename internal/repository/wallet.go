package repository

import (
	"context"
	"fmt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository/dao"
)

var (
	ErrWalletNotFound = dao.ErrWalletNotFound
	ErrWalletExists   = dao.ErrWalletExists
)

type WalletDAO interface {
	Insert(ctx context.Context, wallet dao.Wallet) (dao.Wallet, error)
	FindByUserID(ctx context.Context, userID uint) (dao.Wallet, error)
	Upsert(ctx context.Context, userID uint, walletAddress, walletType string) (dao.Wallet, error)
	Delete(ctx context.Context, userID uint, walletAddress string) error
}

type WalletRepository struct {
	dao WalletDAO
}

func NewWalletRepository(dao WalletDAO) *WalletRepository {
	return &WalletRepository{
		dao: dao,
	}
}

func (r *WalletRepository) daoToDomain(w dao.Wallet) domain.Wallet {
	return domain.Wallet{
		ID:            w.ID,
		UserID:        w.UserID,
		WalletAddress: w.WalletAddress,
		WalletType:    w.WalletType,
		CreatedAt:     w.CreatedAt,
	}
}

func (r *WalletRepository) Create(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error) {
	created, err := r.dao.Insert(ctx, dao.Wallet{
		UserID:        wallet.UserID,
		WalletAddress: wallet.WalletAddress,
		WalletType:    wallet.WalletType,
	})
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID uint) (domain.Wallet, error) {
	wallet, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daoToDomain(wallet), nil
}

// Upsert replaces the user's wallet address, creating the row when missing.
func (r *WalletRepository) Upsert(ctx context.Context, userID uint, walletAddress, walletType string) (domain.Wallet, error) {
	wallet, err := r.dao.Upsert(ctx, userID, walletAddress, walletType)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return r.daoToDomain(wallet), nil
}

func (r *WalletRepository) Delete(ctx context.Context, userID uint, walletAddress string) error {
	if err := r.dao.Delete(ctx, userID, walletAddress); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}
