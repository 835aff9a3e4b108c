package service

import (
	"context"
	"fmt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository"
)

var (
	ErrWalletNotFound = repository.ErrWalletNotFound
	ErrWalletExists   = repository.ErrWalletExists
)

type WalletRepository interface {
	Create(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error)
	FindByUserID(ctx context.Context, userID uint) (domain.Wallet, error)
	Upsert(ctx context.Context, userID uint, walletAddress, walletType string) (domain.Wallet, error)
	Delete(ctx context.Context, userID uint, walletAddress string) error
}

type WalletService struct {
	repo WalletRepository
}

func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{
		repo: repo,
	}
}

func (s *WalletService) GetWallet(ctx context.Context, userID uint) (domain.Wallet, error) {
	wallet, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return wallet, nil
}

// SaveWallet registers or replaces the user's payout address.
func (s *WalletService) SaveWallet(ctx context.Context, userID uint, walletAddress, walletType string) (domain.Wallet, error) {
	wallet, err := s.repo.Upsert(ctx, userID, walletAddress, walletType)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("s.repo.Upsert -> %w", err)
	}

	return wallet, nil
}

func (s *WalletService) DeleteWallet(ctx context.Context, userID uint, walletAddress string) error {
	if err := s.repo.Delete(ctx, userID, walletAddress); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
