package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository/dao"
)

var (
	ErrPointsNotFound      = dao.ErrPointsNotFound
	ErrInsufficientBalance = dao.ErrInsufficientBalance
	ErrActivityNotFound    = dao.ErrActivityNotFound
)

type PointsDAO interface {
	FindByUserID(ctx context.Context, userID uint) (dao.UserPoints, error)
	FindOrCreateByUserID(ctx context.Context, userID uint) (dao.UserPoints, error)
	Credit(ctx context.Context, userID uint, points int, activity dao.RewardActivity) (dao.UserPoints, error)
	RedeemPoints(ctx context.Context, userID uint, points, tokens int, walletAddress string) (dao.Transaction, dao.UserPoints, error)
	RefundPoints(ctx context.Context, userID uint, points int) error
	ApplyDailyRewards(ctx context.Context, rewardPerNode int, cycleTime time.Time) (int, error)
}

type ActivityDAO interface {
	Insert(ctx context.Context, activity dao.RewardActivity) (dao.RewardActivity, error)
	FindByUserID(ctx context.Context, userID uint, kind string) ([]dao.RewardActivity, error)
	Update(ctx context.Context, activity dao.RewardActivity) (dao.RewardActivity, error)
	Delete(ctx context.Context, id uint) error
}

type PointsRepository struct {
	dao         PointsDAO
	activityDAO ActivityDAO
}

func NewPointsRepository(dao PointsDAO, activityDAO ActivityDAO) *PointsRepository {
	return &PointsRepository{
		dao:         dao,
		activityDAO: activityDAO,
	}
}

func (r *PointsRepository) pointsToDomain(p dao.UserPoints) domain.UserPoints {
	return domain.UserPoints{
		ID:                     p.ID,
		UserID:                 p.UserID,
		TotalPoints:            p.TotalPoints,
		AvailableForRedemption: p.AvailableForRedemption,
		TokensRedeemed:         p.TokensRedeemed,
		DateUpdated:            p.DateUpdated,
	}
}

func (r *PointsRepository) activityToDomain(a dao.RewardActivity) domain.RewardActivity {
	return domain.RewardActivity{
		ID:          a.ID,
		UserID:      a.UserID,
		Points:      a.Points,
		Kind:        domain.ActivityKind(a.Kind),
		IsCredit:    a.IsCredit,
		Description: a.Description,
		Timestamp:   a.Timestamp,
	}
}

func (r *PointsRepository) activityToDao(a domain.RewardActivity) dao.RewardActivity {
	return dao.RewardActivity{
		ID:          a.ID,
		UserID:      a.UserID,
		Points:      a.Points,
		Kind:        string(a.Kind),
		IsCredit:    a.IsCredit,
		Description: a.Description,
		Timestamp:   a.Timestamp,
	}
}

func (r *PointsRepository) FindByUserID(ctx context.Context, userID uint) (domain.UserPoints, error) {
	points, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.UserPoints{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.pointsToDomain(points), nil
}

func (r *PointsRepository) FindOrCreateByUserID(ctx context.Context, userID uint) (domain.UserPoints, error) {
	points, err := r.dao.FindOrCreateByUserID(ctx, userID)
	if err != nil {
		return domain.UserPoints{}, fmt.Errorf("r.dao.FindOrCreateByUserID -> %w", err)
	}

	return r.pointsToDomain(points), nil
}

// Credit applies a points credit together with its audit entry.
func (r *PointsRepository) Credit(ctx context.Context, userID uint, points int, activity domain.RewardActivity) (domain.UserPoints, error) {
	updated, err := r.dao.Credit(ctx, userID, points, r.activityToDao(activity))
	if err != nil {
		return domain.UserPoints{}, fmt.Errorf("r.dao.Credit -> %w", err)
	}

	return r.pointsToDomain(updated), nil
}

// Redeem debits the redeemable balance and opens the on-hold transaction in
// one atomic step.
func (r *PointsRepository) Redeem(ctx context.Context, userID uint, points, tokens int, walletAddress string) (domain.Transaction, domain.UserPoints, error) {
	txn, account, err := r.dao.RedeemPoints(ctx, userID, points, tokens, walletAddress)
	if err != nil {
		return domain.Transaction{}, domain.UserPoints{}, fmt.Errorf("r.dao.RedeemPoints -> %w", err)
	}

	return transactionToDomain(txn), r.pointsToDomain(account), nil
}

func (r *PointsRepository) Refund(ctx context.Context, userID uint, points int) error {
	if err := r.dao.RefundPoints(ctx, userID, points); err != nil {
		return fmt.Errorf("r.dao.RefundPoints -> %w", err)
	}

	return nil
}

// ApplyDailyRewards credits every allocated user for one accrual cycle and
// returns the number of users credited.
func (r *PointsRepository) ApplyDailyRewards(ctx context.Context, rewardPerNode int, cycleTime time.Time) (int, error) {
	credited, err := r.dao.ApplyDailyRewards(ctx, rewardPerNode, cycleTime)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ApplyDailyRewards -> %w", err)
	}

	return credited, nil
}

func (r *PointsRepository) CreateActivity(ctx context.Context, activity domain.RewardActivity) (domain.RewardActivity, error) {
	created, err := r.activityDAO.Insert(ctx, r.activityToDao(activity))
	if err != nil {
		return domain.RewardActivity{}, fmt.Errorf("r.activityDAO.Insert -> %w", err)
	}

	return r.activityToDomain(created), nil
}

func (r *PointsRepository) FindActivity(ctx context.Context, userID uint, kind domain.ActivityKind) ([]domain.RewardActivity, error) {
	activities, err := r.activityDAO.FindByUserID(ctx, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("r.activityDAO.FindByUserID -> %w", err)
	}

	converted := make([]domain.RewardActivity, len(activities))
	for i, a := range activities {
		converted[i] = r.activityToDomain(a)
	}

	return converted, nil
}

func (r *PointsRepository) UpdateActivity(ctx context.Context, activity domain.RewardActivity) (domain.RewardActivity, error) {
	updated, err := r.activityDAO.Update(ctx, r.activityToDao(activity))
	if err != nil {
		return domain.RewardActivity{}, fmt.Errorf("r.activityDAO.Update -> %w", err)
	}

	return r.activityToDomain(updated), nil
}

func (r *PointsRepository) DeleteActivity(ctx context.Context, id uint) error {
	if err := r.activityDAO.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.activityDAO.Delete -> %w", err)
	}

	return nil
}
