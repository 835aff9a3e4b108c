package service

import (
	"context"
	"time"

	"github.com/zaivio/nodes-api/internal/blockchain"
	"github.com/zaivio/nodes-api/internal/domain"
)

// Hand-written fakes. Each method delegates to its func field when set and
// returns zero values otherwise.

type fakeNodeRepo struct {
	GetPoolFn           func(ctx context.Context, status domain.PoolStatus) (domain.NodePool, error)
	TransferCapacityFn  func(ctx context.Context, delta, activeAssigned, systemTotal int) (domain.PoolSnapshot, error)
	SumAssignedFn       func(ctx context.Context) (int, error)
	SetAllocationFn     func(ctx context.Context, userID uint, newUnits, systemTotal int) (domain.UserNode, error)
	GetAllocationFn     func(ctx context.Context, userID uint) (domain.UserNode, error)
	DeleteAllocationFn  func(ctx context.Context, userID uint) error
	GetAllAllocationsFn func(ctx context.Context) ([]domain.UserNode, error)
}

func (f *fakeNodeRepo) GetPool(ctx context.Context, status domain.PoolStatus) (domain.NodePool, error) {
	if f.GetPoolFn != nil {
		return f.GetPoolFn(ctx, status)
	}
	return domain.NodePool{}, nil
}

func (f *fakeNodeRepo) GetPoolByID(context.Context, uint) (domain.NodePool, error) {
	return domain.NodePool{}, nil
}

func (f *fakeNodeRepo) GetAllPools(context.Context) ([]domain.NodePool, error) {
	return nil, nil
}

func (f *fakeNodeRepo) CreatePool(_ context.Context, pool domain.NodePool) (domain.NodePool, error) {
	return pool, nil
}

func (f *fakeNodeRepo) UpdatePool(context.Context, uint, domain.NodePoolPatch) (domain.NodePool, error) {
	return domain.NodePool{}, nil
}

func (f *fakeNodeRepo) DeletePool(context.Context, uint) error {
	return nil
}

func (f *fakeNodeRepo) TransferCapacity(ctx context.Context, delta, activeAssigned, systemTotal int) (domain.PoolSnapshot, error) {
	if f.TransferCapacityFn != nil {
		return f.TransferCapacityFn(ctx, delta, activeAssigned, systemTotal)
	}
	return domain.PoolSnapshot{}, nil
}

func (f *fakeNodeRepo) GetAllocation(ctx context.Context, userID uint) (domain.UserNode, error) {
	if f.GetAllocationFn != nil {
		return f.GetAllocationFn(ctx, userID)
	}
	return domain.UserNode{}, nil
}

func (f *fakeNodeRepo) GetAllAllocations(ctx context.Context) ([]domain.UserNode, error) {
	if f.GetAllAllocationsFn != nil {
		return f.GetAllAllocationsFn(ctx)
	}
	return nil, nil
}

func (f *fakeNodeRepo) SumAssigned(ctx context.Context) (int, error) {
	if f.SumAssignedFn != nil {
		return f.SumAssignedFn(ctx)
	}
	return 0, nil
}

func (f *fakeNodeRepo) SetAllocation(ctx context.Context, userID uint, newUnits, systemTotal int) (domain.UserNode, error) {
	if f.SetAllocationFn != nil {
		return f.SetAllocationFn(ctx, userID, newUnits, systemTotal)
	}
	return domain.UserNode{UserID: userID, NodesAssigned: newUnits}, nil
}

func (f *fakeNodeRepo) DeleteAllocation(ctx context.Context, userID uint) error {
	if f.DeleteAllocationFn != nil {
		return f.DeleteAllocationFn(ctx, userID)
	}
	return nil
}

type fakePointsRepo struct {
	FindByUserIDFn         func(ctx context.Context, userID uint) (domain.UserPoints, error)
	FindOrCreateByUserIDFn func(ctx context.Context, userID uint) (domain.UserPoints, error)
	CreditFn               func(ctx context.Context, userID uint, points int, activity domain.RewardActivity) (domain.UserPoints, error)
	RedeemFn               func(ctx context.Context, userID uint, points, tokens int, walletAddress string) (domain.Transaction, domain.UserPoints, error)
	RefundFn               func(ctx context.Context, userID uint, points int) error
	ApplyDailyRewardsFn    func(ctx context.Context, rewardPerNode int, cycleTime time.Time) (int, error)
}

func (f *fakePointsRepo) FindByUserID(ctx context.Context, userID uint) (domain.UserPoints, error) {
	if f.FindByUserIDFn != nil {
		return f.FindByUserIDFn(ctx, userID)
	}
	return domain.UserPoints{}, nil
}

func (f *fakePointsRepo) FindOrCreateByUserID(ctx context.Context, userID uint) (domain.UserPoints, error) {
	if f.FindOrCreateByUserIDFn != nil {
		return f.FindOrCreateByUserIDFn(ctx, userID)
	}
	return domain.UserPoints{UserID: userID}, nil
}

func (f *fakePointsRepo) Credit(ctx context.Context, userID uint, points int, activity domain.RewardActivity) (domain.UserPoints, error) {
	if f.CreditFn != nil {
		return f.CreditFn(ctx, userID, points, activity)
	}
	return domain.UserPoints{}, nil
}

func (f *fakePointsRepo) Redeem(ctx context.Context, userID uint, points, tokens int, walletAddress string) (domain.Transaction, domain.UserPoints, error) {
	if f.RedeemFn != nil {
		return f.RedeemFn(ctx, userID, points, tokens, walletAddress)
	}
	return domain.Transaction{}, domain.UserPoints{}, nil
}

func (f *fakePointsRepo) Refund(ctx context.Context, userID uint, points int) error {
	if f.RefundFn != nil {
		return f.RefundFn(ctx, userID, points)
	}
	return nil
}

func (f *fakePointsRepo) ApplyDailyRewards(ctx context.Context, rewardPerNode int, cycleTime time.Time) (int, error) {
	if f.ApplyDailyRewardsFn != nil {
		return f.ApplyDailyRewardsFn(ctx, rewardPerNode, cycleTime)
	}
	return 0, nil
}

func (f *fakePointsRepo) CreateActivity(_ context.Context, activity domain.RewardActivity) (domain.RewardActivity, error) {
	return activity, nil
}

func (f *fakePointsRepo) FindActivity(context.Context, uint, domain.ActivityKind) ([]domain.RewardActivity, error) {
	return nil, nil
}

func (f *fakePointsRepo) UpdateActivity(_ context.Context, activity domain.RewardActivity) (domain.RewardActivity, error) {
	return activity, nil
}

func (f *fakePointsRepo) DeleteActivity(context.Context, uint) error {
	return nil
}

type fakeUserRepo struct {
	FindByIDFn   func(ctx context.Context, id uint) (domain.User, error)
	FindActiveFn func(ctx context.Context) ([]domain.User, error)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return domain.User{ID: id}, nil
}

func (f *fakeUserRepo) FindActive(ctx context.Context) ([]domain.User, error) {
	if f.FindActiveFn != nil {
		return f.FindActiveFn(ctx)
	}
	return nil, nil
}

type fakeTxnRepo struct {
	FindByStatusFn func(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error)
	ApproveBatchFn func(ctx context.Context, ids []uint) ([]domain.Transaction, error)
	MarkSettledFn  func(ctx context.Context, id uint, status domain.TransactionStatus, txHash, chainStatus *string) (domain.Transaction, error)
}

func (f *fakeTxnRepo) FindByID(_ context.Context, id uint) (domain.Transaction, error) {
	return domain.Transaction{ID: id}, nil
}

func (f *fakeTxnRepo) FindByUserID(context.Context, uint) ([]domain.Transaction, error) {
	return nil, nil
}

func (f *fakeTxnRepo) FindByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error) {
	if f.FindByStatusFn != nil {
		return f.FindByStatusFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeTxnRepo) FindAllWithUsers(context.Context) ([]domain.AdminTransaction, error) {
	return nil, nil
}

func (f *fakeTxnRepo) ApproveBatch(ctx context.Context, ids []uint) ([]domain.Transaction, error) {
	if f.ApproveBatchFn != nil {
		return f.ApproveBatchFn(ctx, ids)
	}
	return nil, nil
}

func (f *fakeTxnRepo) MarkSettled(ctx context.Context, id uint, status domain.TransactionStatus, txHash, chainStatus *string) (domain.Transaction, error) {
	if f.MarkSettledFn != nil {
		return f.MarkSettledFn(ctx, id, status, txHash, chainStatus)
	}
	return domain.Transaction{ID: id, Status: status}, nil
}

type fakeWalletRepo struct {
	FindByUserIDFn func(ctx context.Context, userID uint) (domain.Wallet, error)
}

func (f *fakeWalletRepo) Create(_ context.Context, wallet domain.Wallet) (domain.Wallet, error) {
	return wallet, nil
}

func (f *fakeWalletRepo) FindByUserID(ctx context.Context, userID uint) (domain.Wallet, error) {
	if f.FindByUserIDFn != nil {
		return f.FindByUserIDFn(ctx, userID)
	}
	return domain.Wallet{UserID: userID}, nil
}

func (f *fakeWalletRepo) Upsert(_ context.Context, userID uint, walletAddress, walletType string) (domain.Wallet, error) {
	return domain.Wallet{UserID: userID, WalletAddress: walletAddress, WalletType: walletType}, nil
}

func (f *fakeWalletRepo) Delete(context.Context, uint, string) error {
	return nil
}

type fakeRail struct {
	TransferFn func(ctx context.Context, toAddress string, tokens int) (blockchain.TransferResult, error)
}

func (f *fakeRail) Transfer(ctx context.Context, toAddress string, tokens int) (blockchain.TransferResult, error) {
	if f.TransferFn != nil {
		return f.TransferFn(ctx, toAddress, tokens)
	}
	return blockchain.TransferResult{Status: blockchain.StatusConfirmed}, nil
}

type fakeMailer struct {
	Sent []string
}

func (f *fakeMailer) Send(to, _, _ string) error {
	f.Sent = append(f.Sent, to)
	return nil
}
