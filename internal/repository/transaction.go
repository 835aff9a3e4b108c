package repository

import (
	"context"
	"fmt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository/dao"
)

var (
	ErrTransactionNotFound = dao.ErrTransactionNotFound
	ErrAlreadyApproved     = dao.ErrAlreadyApproved
	ErrInvalidState        = dao.ErrInvalidState
)

type TransactionDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Transaction, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Transaction, error)
	FindByStatus(ctx context.Context, status string) ([]dao.Transaction, error)
	FindAllWithUsers(ctx context.Context) ([]dao.AdminTransactionRow, error)
	ApproveBatch(ctx context.Context, ids []uint) ([]dao.Transaction, error)
	MarkSettled(ctx context.Context, id uint, status string, txHash, chainStatus *string) (dao.Transaction, error)
}

type TransactionRepository struct {
	dao TransactionDAO
}

func NewTransactionRepository(dao TransactionDAO) *TransactionRepository {
	return &TransactionRepository{
		dao: dao,
	}
}

func transactionToDomain(t dao.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:                  t.ID,
		UserID:              t.UserID,
		TokensRedeemed:      t.TokensRedeemed,
		WalletAddress:       t.WalletAddress,
		Status:              domain.TransactionStatus(t.Status),
		TransactionDate:     t.TransactionDate,
		ChainTxHash:         t.ChainTxHash,
		ChainStatus:         t.ChainStatus,
		BlockchainTimestamp: t.BlockchainTimestamp,
	}
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uint) (domain.Transaction, error) {
	txn, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return transactionToDomain(txn), nil
}

func (r *TransactionRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	txns, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	converted := make([]domain.Transaction, len(txns))
	for i, t := range txns {
		converted[i] = transactionToDomain(t)
	}

	return converted, nil
}

func (r *TransactionRepository) FindByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error) {
	txns, err := r.dao.FindByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	converted := make([]domain.Transaction, len(txns))
	for i, t := range txns {
		converted[i] = transactionToDomain(t)
	}

	return converted, nil
}

func (r *TransactionRepository) FindAllWithUsers(ctx context.Context) ([]domain.AdminTransaction, error) {
	rows, err := r.dao.FindAllWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAllWithUsers -> %w", err)
	}

	converted := make([]domain.AdminTransaction, len(rows))
	for i, row := range rows {
		converted[i] = domain.AdminTransaction{
			Transaction: transactionToDomain(row.Transaction),
			Username:    row.Username,
			Email:       row.Email,
		}
	}

	return converted, nil
}

// ApproveBatch flips every listed transaction to approved, or fails the batch.
func (r *TransactionRepository) ApproveBatch(ctx context.Context, ids []uint) ([]domain.Transaction, error) {
	approved, err := r.dao.ApproveBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ApproveBatch -> %w", err)
	}

	converted := make([]domain.Transaction, len(approved))
	for i, t := range approved {
		converted[i] = transactionToDomain(t)
	}

	return converted, nil
}

// MarkSettled records the settlement outcome for an approved transaction.
func (r *TransactionRepository) MarkSettled(ctx context.Context, id uint, status domain.TransactionStatus, txHash, chainStatus *string) (domain.Transaction, error) {
	txn, err := r.dao.MarkSettled(ctx, id, string(status), txHash, chainStatus)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.MarkSettled -> %w", err)
	}

	return transactionToDomain(txn), nil
}
