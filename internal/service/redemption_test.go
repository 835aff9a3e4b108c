package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaivio/nodes-api/internal/blockchain"
	"github.com/zaivio/nodes-api/internal/domain"
)

func newRedemptionService(points *fakePointsRepo, txns *fakeTxnRepo, wallets *fakeWalletRepo, rail *fakeRail, pointsPerToken int, refundOnFailure bool) *RedemptionService {
	return NewRedemptionService(
		points, txns, wallets, &fakeUserRepo{}, rail, &fakeMailer{},
		pointsPerToken, refundOnFailure,
	)
}

func TestRedeem(t *testing.T) {
	t.Run("rejects points that are not a multiple of the rate", func(t *testing.T) {
		svc := newRedemptionService(&fakePointsRepo{}, &fakeTxnRepo{}, &fakeWalletRepo{}, &fakeRail{}, 10, false)

		_, _, err := svc.Redeem(context.Background(), 1, 25)

		assert.ErrorIs(t, err, ErrInvalidRedemption)
	})

	t.Run("rejects non-positive points", func(t *testing.T) {
		svc := newRedemptionService(&fakePointsRepo{}, &fakeTxnRepo{}, &fakeWalletRepo{}, &fakeRail{}, 10, false)

		_, _, err := svc.Redeem(context.Background(), 1, 0)

		assert.ErrorIs(t, err, ErrInvalidRedemption)
	})

	t.Run("requires a registered wallet", func(t *testing.T) {
		wallets := &fakeWalletRepo{
			FindByUserIDFn: func(context.Context, uint) (domain.Wallet, error) {
				return domain.Wallet{}, ErrWalletNotFound
			},
		}
		svc := newRedemptionService(&fakePointsRepo{}, &fakeTxnRepo{}, wallets, &fakeRail{}, 10, false)

		_, _, err := svc.Redeem(context.Background(), 1, 50)

		assert.ErrorIs(t, err, ErrWalletNotFound)
	})

	t.Run("converts points at the configured rate", func(t *testing.T) {
		wallets := &fakeWalletRepo{
			FindByUserIDFn: func(_ context.Context, userID uint) (domain.Wallet, error) {
				return domain.Wallet{UserID: userID, WalletAddress: "0xabc"}, nil
			},
		}

		var gotPoints, gotTokens int
		var gotAddress string
		points := &fakePointsRepo{
			RedeemFn: func(_ context.Context, userID uint, p, tokens int, walletAddress string) (domain.Transaction, domain.UserPoints, error) {
				gotPoints = p
				gotTokens = tokens
				gotAddress = walletAddress
				return domain.Transaction{UserID: userID, TokensRedeemed: tokens, Status: domain.TransactionOnHold}, domain.UserPoints{}, nil
			},
		}
		svc := newRedemptionService(points, &fakeTxnRepo{}, wallets, &fakeRail{}, 10, false)

		txn, _, err := svc.Redeem(context.Background(), 1, 50)

		require.NoError(t, err)
		assert.Equal(t, 50, gotPoints)
		assert.Equal(t, 5, gotTokens)
		assert.Equal(t, "0xabc", gotAddress)
		assert.Equal(t, domain.TransactionOnHold, txn.Status)
	})

	t.Run("surfaces insufficient balance", func(t *testing.T) {
		points := &fakePointsRepo{
			RedeemFn: func(context.Context, uint, int, int, string) (domain.Transaction, domain.UserPoints, error) {
				return domain.Transaction{}, domain.UserPoints{}, ErrInsufficientBalance
			},
		}
		svc := newRedemptionService(points, &fakeTxnRepo{}, &fakeWalletRepo{}, &fakeRail{}, 10, false)

		_, _, err := svc.Redeem(context.Background(), 1, 50)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})
}

func TestApproveTransactions_EmptyBatch(t *testing.T) {
	svc := newRedemptionService(&fakePointsRepo{}, &fakeTxnRepo{}, &fakeWalletRepo{}, &fakeRail{}, 10, false)

	_, err := svc.ApproveTransactions(context.Background(), nil)

	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestSettleApproved(t *testing.T) {
	approved := []domain.Transaction{
		{ID: 1, UserID: 10, TokensRedeemed: 5, WalletAddress: "0xabc", Status: domain.TransactionApproved},
		{ID: 2, UserID: 11, TokensRedeemed: 3, WalletAddress: "0xdef", Status: domain.TransactionApproved},
	}

	t.Run("records success and failure outcomes", func(t *testing.T) {
		txns := &fakeTxnRepo{
			FindByStatusFn: func(context.Context, domain.TransactionStatus) ([]domain.Transaction, error) {
				return approved, nil
			},
		}
		statuses := map[uint]domain.TransactionStatus{}
		txns.MarkSettledFn = func(_ context.Context, id uint, status domain.TransactionStatus, txHash, chainStatus *string) (domain.Transaction, error) {
			statuses[id] = status
			return domain.Transaction{ID: id, Status: status}, nil
		}

		wallets := &fakeWalletRepo{
			FindByUserIDFn: func(_ context.Context, userID uint) (domain.Wallet, error) {
				if userID == 10 {
					return domain.Wallet{UserID: userID, WalletAddress: "0xabc"}, nil
				}
				return domain.Wallet{UserID: userID, WalletAddress: "0xdef"}, nil
			},
		}
		rail := &fakeRail{
			TransferFn: func(_ context.Context, toAddress string, _ int) (blockchain.TransferResult, error) {
				if toAddress == "0xabc" {
					return blockchain.TransferResult{Status: blockchain.StatusConfirmed, TxHash: "0x1"}, nil
				}
				return blockchain.TransferResult{Status: blockchain.StatusFailed, TxHash: "0x2"}, nil
			},
		}

		svc := newRedemptionService(&fakePointsRepo{}, txns, wallets, rail, 10, false)

		settled, err := svc.SettleApproved(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, settled)
		assert.Equal(t, domain.TransactionSuccess, statuses[1])
		assert.Equal(t, domain.TransactionFailed, statuses[2])
	})

	t.Run("transfers to the freshly resolved wallet, not the snapshot", func(t *testing.T) {
		txns := &fakeTxnRepo{
			FindByStatusFn: func(context.Context, domain.TransactionStatus) ([]domain.Transaction, error) {
				return approved[:1], nil
			},
		}
		wallets := &fakeWalletRepo{
			FindByUserIDFn: func(_ context.Context, userID uint) (domain.Wallet, error) {
				return domain.Wallet{UserID: userID, WalletAddress: "0xnew"}, nil
			},
		}
		var gotAddress string
		rail := &fakeRail{
			TransferFn: func(_ context.Context, toAddress string, _ int) (blockchain.TransferResult, error) {
				gotAddress = toAddress
				return blockchain.TransferResult{Status: blockchain.StatusConfirmed, TxHash: "0x1"}, nil
			},
		}

		svc := newRedemptionService(&fakePointsRepo{}, txns, wallets, rail, 10, false)

		_, err := svc.SettleApproved(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "0xnew", gotAddress)
	})

	t.Run("a wallet missing at settlement marks the transaction failed", func(t *testing.T) {
		txns := &fakeTxnRepo{
			FindByStatusFn: func(context.Context, domain.TransactionStatus) ([]domain.Transaction, error) {
				return approved[:1], nil
			},
		}
		var gotStatus domain.TransactionStatus
		txns.MarkSettledFn = func(_ context.Context, id uint, status domain.TransactionStatus, _, _ *string) (domain.Transaction, error) {
			gotStatus = status
			return domain.Transaction{ID: id, Status: status}, nil
		}
		wallets := &fakeWalletRepo{
			FindByUserIDFn: func(context.Context, uint) (domain.Wallet, error) {
				return domain.Wallet{}, ErrWalletNotFound
			},
		}
		rail := &fakeRail{
			TransferFn: func(context.Context, string, int) (blockchain.TransferResult, error) {
				t.Fatal("transfer attempted without a wallet")
				return blockchain.TransferResult{}, nil
			},
		}
		var refundedPoints int
		points := &fakePointsRepo{
			RefundFn: func(_ context.Context, _ uint, p int) error {
				refundedPoints = p
				return nil
			},
		}

		svc := newRedemptionService(points, txns, wallets, rail, 10, true)

		settled, err := svc.SettleApproved(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		assert.Equal(t, domain.TransactionFailed, gotStatus)
		assert.Equal(t, 50, refundedPoints)
	})

	t.Run("failed settlement keeps the points by default", func(t *testing.T) {
		txns := &fakeTxnRepo{
			FindByStatusFn: func(context.Context, domain.TransactionStatus) ([]domain.Transaction, error) {
				return approved[:1], nil
			},
		}
		refunded := false
		points := &fakePointsRepo{
			RefundFn: func(context.Context, uint, int) error {
				refunded = true
				return nil
			},
		}
		rail := &fakeRail{
			TransferFn: func(context.Context, string, int) (blockchain.TransferResult, error) {
				return blockchain.TransferResult{Status: blockchain.StatusFailed, TxHash: "0x2"}, nil
			},
		}

		svc := newRedemptionService(points, txns, &fakeWalletRepo{}, rail, 10, false)

		settled, err := svc.SettleApproved(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		assert.False(t, refunded)
	})

	t.Run("failed settlement refunds when the policy is enabled", func(t *testing.T) {
		txns := &fakeTxnRepo{
			FindByStatusFn: func(context.Context, domain.TransactionStatus) ([]domain.Transaction, error) {
				return approved[:1], nil
			},
		}
		var refundedPoints int
		points := &fakePointsRepo{
			RefundFn: func(_ context.Context, _ uint, p int) error {
				refundedPoints = p
				return nil
			},
		}
		rail := &fakeRail{
			TransferFn: func(context.Context, string, int) (blockchain.TransferResult, error) {
				return blockchain.TransferResult{Status: blockchain.StatusFailed, TxHash: "0x2"}, nil
			},
		}

		svc := newRedemptionService(points, txns, &fakeWalletRepo{}, rail, 10, true)

		_, err := svc.SettleApproved(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 50, refundedPoints)
	})

	t.Run("an unsent transfer leaves the transaction approved", func(t *testing.T) {
		txns := &fakeTxnRepo{
			FindByStatusFn: func(context.Context, domain.TransactionStatus) ([]domain.Transaction, error) {
				return approved[:1], nil
			},
		}
		marked := false
		txns.MarkSettledFn = func(_ context.Context, id uint, status domain.TransactionStatus, _, _ *string) (domain.Transaction, error) {
			marked = true
			return domain.Transaction{ID: id, Status: status}, nil
		}
		rail := &fakeRail{
			TransferFn: func(context.Context, string, int) (blockchain.TransferResult, error) {
				return blockchain.TransferResult{}, errors.New("rpc unreachable")
			},
		}

		svc := newRedemptionService(&fakePointsRepo{}, txns, &fakeWalletRepo{}, rail, 10, false)

		settled, err := svc.SettleApproved(context.Background())

		require.NoError(t, err)
		assert.Zero(t, settled)
		assert.False(t, marked)
	})
}
