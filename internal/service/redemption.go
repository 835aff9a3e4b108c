package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zaivio/nodes-api/internal/blockchain"
	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/mail"
	"github.com/zaivio/nodes-api/internal/repository"
)

var (
	ErrInsufficientBalance = repository.ErrInsufficientBalance
	ErrTransactionNotFound = repository.ErrTransactionNotFound
	ErrAlreadyApproved     = repository.ErrAlreadyApproved
	ErrInvalidState        = repository.ErrInvalidState
	ErrInvalidRedemption   = errors.New("points must be a positive multiple of the conversion rate")
)

type TransactionRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Transaction, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Transaction, error)
	FindByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error)
	FindAllWithUsers(ctx context.Context) ([]domain.AdminTransaction, error)
	ApproveBatch(ctx context.Context, ids []uint) ([]domain.Transaction, error)
	MarkSettled(ctx context.Context, id uint, status domain.TransactionStatus, txHash, chainStatus *string) (domain.Transaction, error)
}

type RedemptionUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// RedemptionService owns the redemption pipeline: points are debited the
// moment a request is created, admins approve in batches, and a settlement
// sweep pushes approved transactions onto the chain.
type RedemptionService struct {
	points  PointsRepository
	txns    TransactionRepository
	wallets WalletRepository
	users   RedemptionUserRepository
	rail    blockchain.TransferRail
	mailer  mail.Mailer

	pointsPerToken  int
	refundOnFailure bool
}

func NewRedemptionService(
	points PointsRepository,
	txns TransactionRepository,
	wallets WalletRepository,
	users RedemptionUserRepository,
	rail blockchain.TransferRail,
	mailer mail.Mailer,
	pointsPerToken int,
	refundOnFailure bool,
) *RedemptionService {
	if pointsPerToken <= 0 {
		pointsPerToken = 1
	}

	return &RedemptionService{
		points:          points,
		txns:            txns,
		wallets:         wallets,
		users:           users,
		rail:            rail,
		mailer:          mailer,
		pointsPerToken:  pointsPerToken,
		refundOnFailure: refundOnFailure,
	}
}

// Redeem converts points into an on-hold token transaction. The wallet is
// resolved before any debit so a user without one is rejected cleanly.
func (s *RedemptionService) Redeem(ctx context.Context, userID uint, points int) (domain.Transaction, domain.UserPoints, error) {
	if points <= 0 || points%s.pointsPerToken != 0 {
		return domain.Transaction{}, domain.UserPoints{}, ErrInvalidRedemption
	}

	wallet, err := s.wallets.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Transaction{}, domain.UserPoints{}, fmt.Errorf("s.wallets.FindByUserID -> %w", err)
	}

	tokens := points / s.pointsPerToken

	txn, account, err := s.points.Redeem(ctx, userID, points, tokens, wallet.WalletAddress)
	if err != nil {
		return domain.Transaction{}, domain.UserPoints{}, fmt.Errorf("s.points.Redeem -> %w", err)
	}

	return txn, account, nil
}

func (s *RedemptionService) GetTransaction(ctx context.Context, id uint) (domain.Transaction, error) {
	txn, err := s.txns.FindByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.txns.FindByID -> %w", err)
	}

	return txn, nil
}

func (s *RedemptionService) ListUserTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	txns, err := s.txns.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.txns.FindByUserID -> %w", err)
	}

	return txns, nil
}

func (s *RedemptionService) ListAllTransactions(ctx context.Context) ([]domain.AdminTransaction, error) {
	txns, err := s.txns.FindAllWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.txns.FindAllWithUsers -> %w", err)
	}

	return txns, nil
}

// ApproveTransactions flips a batch of on-hold transactions to approved. Any
// unknown id or transaction past on-hold fails the whole batch.
func (s *RedemptionService) ApproveTransactions(ctx context.Context, ids []uint) ([]domain.Transaction, error) {
	if len(ids) == 0 {
		return nil, ErrTransactionNotFound
	}

	approved, err := s.txns.ApproveBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.txns.ApproveBatch -> %w", err)
	}

	return approved, nil
}

// SettleApproved pushes every approved transaction onto the chain and records
// the terminal outcome. The user's wallet is resolved again per transaction; a
// wallet deleted since approval marks the transaction failed. A transfer that
// cannot be sent at all leaves the transaction approved for the next sweep; a
// reverted transfer is marked failed. Points are only returned on failure when
// the refund policy is enabled. Returns the number of transactions that
// reached a terminal state.
func (s *RedemptionService) SettleApproved(ctx context.Context) (int, error) {
	approved, err := s.txns.FindByStatus(ctx, domain.TransactionApproved)
	if err != nil {
		return 0, fmt.Errorf("s.txns.FindByStatus -> %w", err)
	}

	settled := 0
	for _, txn := range approved {
		wallet, err := s.wallets.FindByUserID(ctx, txn.UserID)
		if err != nil {
			if !errors.Is(err, ErrWalletNotFound) {
				zap.L().Error("wallet lookup failed, leaving transaction approved",
					zap.Uint("transaction_id", txn.ID),
					zap.Error(err))

				continue
			}

			zap.L().Warn("wallet missing at settlement, marking transaction failed",
				zap.Uint("transaction_id", txn.ID),
				zap.Uint("user_id", txn.UserID))

			if s.finishTransaction(ctx, txn, domain.TransactionFailed, nil, nil, blockchain.TransferResult{}) {
				settled++
			}

			continue
		}

		result, err := s.rail.Transfer(ctx, wallet.WalletAddress, txn.TokensRedeemed)
		if err != nil {
			zap.L().Error("token transfer not sent, leaving transaction approved",
				zap.Uint("transaction_id", txn.ID),
				zap.Error(err))

			continue
		}

		status := domain.TransactionSuccess
		if result.Status != blockchain.StatusConfirmed {
			status = domain.TransactionFailed
		}

		if s.finishTransaction(ctx, txn, status, &result.TxHash, &result.Status, result) {
			settled++
		}
	}

	return settled, nil
}

// finishTransaction records a terminal outcome, applies the refund policy, and
// notifies the user. Reports whether the outcome was recorded.
func (s *RedemptionService) finishTransaction(ctx context.Context, txn domain.Transaction, status domain.TransactionStatus, txHash, chainStatus *string, result blockchain.TransferResult) bool {
	updated, err := s.txns.MarkSettled(ctx, txn.ID, status, txHash, chainStatus)
	if err != nil {
		zap.L().Error("settlement outcome not recorded",
			zap.Uint("transaction_id", txn.ID),
			zap.Error(err))

		return false
	}

	if status == domain.TransactionFailed && s.refundOnFailure {
		points := txn.TokensRedeemed * s.pointsPerToken
		if err := s.points.Refund(ctx, txn.UserID, points); err != nil {
			zap.L().Error("refund failed",
				zap.Uint("transaction_id", txn.ID),
				zap.Error(err))
		}
	}

	s.notifySettlement(ctx, updated, result)

	return true
}

func (s *RedemptionService) notifySettlement(ctx context.Context, txn domain.Transaction, result blockchain.TransferResult) {
	user, err := s.users.FindByID(ctx, txn.UserID)
	if err != nil {
		zap.L().Warn("settlement notification skipped",
			zap.Uint("user_id", txn.UserID),
			zap.Error(err))

		return
	}

	var subject, body string
	if txn.Status == domain.TransactionSuccess {
		subject, body = mail.RedemptionSuccessEmail(user.Username, txn.TokensRedeemed, result.TxHash, result.ExplorerLink)
	} else {
		subject, body = mail.RedemptionFailureEmail(user.Username, txn.TokensRedeemed)
	}

	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		zap.L().Warn("settlement notification not sent",
			zap.Uint("user_id", txn.UserID),
			zap.Error(err))
	}
}
