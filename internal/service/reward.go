package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository"
)

var (
	ErrPointsNotFound   = repository.ErrPointsNotFound
	ErrActivityNotFound = repository.ErrActivityNotFound
)

type PointsRepository interface {
	FindByUserID(ctx context.Context, userID uint) (domain.UserPoints, error)
	FindOrCreateByUserID(ctx context.Context, userID uint) (domain.UserPoints, error)
	Credit(ctx context.Context, userID uint, points int, activity domain.RewardActivity) (domain.UserPoints, error)
	Redeem(ctx context.Context, userID uint, points, tokens int, walletAddress string) (domain.Transaction, domain.UserPoints, error)
	Refund(ctx context.Context, userID uint, points int) error
	ApplyDailyRewards(ctx context.Context, rewardPerNode int, cycleTime time.Time) (int, error)
	CreateActivity(ctx context.Context, activity domain.RewardActivity) (domain.RewardActivity, error)
	FindActivity(ctx context.Context, userID uint, kind domain.ActivityKind) ([]domain.RewardActivity, error)
	UpdateActivity(ctx context.Context, activity domain.RewardActivity) (domain.RewardActivity, error)
	DeleteActivity(ctx context.Context, id uint) error
}

type RewardUserRepository interface {
	FindActive(ctx context.Context) ([]domain.User, error)
}

// RewardService runs the daily accrual cycle and serves points balances and
// the activity log.
type RewardService struct {
	repo     PointsRepository
	nodeRepo NodeRepository
	userRepo RewardUserRepository
}

func NewRewardService(repo PointsRepository, nodeRepo NodeRepository, userRepo RewardUserRepository) *RewardService {
	return &RewardService{
		repo:     repo,
		nodeRepo: nodeRepo,
		userRepo: userRepo,
	}
}

// RunDailyAccrual executes one reward cycle: the active pool's daily reward is
// split evenly per node (integer division, remainder undistributed) and every
// allocated user is credited in a single transaction. A pool with no reward
// configured, no capacity, or a per-node reward of zero skips the cycle.
// Returns the number of users credited.
func (s *RewardService) RunDailyAccrual(ctx context.Context) (int, error) {
	pool, err := s.nodeRepo.GetPool(ctx, domain.PoolActive)
	if err != nil {
		if errors.Is(err, ErrPoolNotFound) {
			zap.L().Info("daily accrual skipped, no active pool")

			return 0, nil
		}

		return 0, fmt.Errorf("s.nodeRepo.GetPool -> %w", err)
	}

	if pool.DailyReward == nil || *pool.DailyReward <= 0 || pool.TotalNodes <= 0 {
		zap.L().Info("daily accrual skipped",
			zap.Int("total_nodes", pool.TotalNodes))

		return 0, nil
	}

	rewardPerNode := *pool.DailyReward / pool.TotalNodes
	if rewardPerNode == 0 {
		zap.L().Info("daily accrual skipped, reward per node rounds to zero",
			zap.Int("daily_reward", *pool.DailyReward),
			zap.Int("total_nodes", pool.TotalNodes))

		return 0, nil
	}

	credited, err := s.repo.ApplyDailyRewards(ctx, rewardPerNode, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("s.repo.ApplyDailyRewards -> %w", err)
	}

	zap.L().Info("daily accrual complete",
		zap.Int("reward_per_node", rewardPerNode),
		zap.Int("users_credited", credited))

	return credited, nil
}

func (s *RewardService) GetPoints(ctx context.Context, userID uint) (domain.UserPoints, error) {
	points, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.UserPoints{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return points, nil
}

// ListAllPoints returns a points row for every active user, creating zeroed
// accounts for users who have never been credited.
func (s *RewardService) ListAllPoints(ctx context.Context) ([]domain.UserPoints, error) {
	users, err := s.userRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.userRepo.FindActive -> %w", err)
	}

	accounts := make([]domain.UserPoints, len(users))
	for i, u := range users {
		account, err := s.repo.FindOrCreateByUserID(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("s.repo.FindOrCreateByUserID -> %w", err)
		}

		accounts[i] = account
	}

	return accounts, nil
}

// CreditPoints applies a manual credit, typically an admin bonus, with its
// audit entry.
func (s *RewardService) CreditPoints(ctx context.Context, userID uint, points int, kind domain.ActivityKind, description string) (domain.UserPoints, error) {
	if points <= 0 {
		return domain.UserPoints{}, errors.New("points must be positive")
	}

	activity := domain.RewardActivity{
		UserID:      userID,
		Points:      points,
		Kind:        kind,
		IsCredit:    true,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}

	account, err := s.repo.Credit(ctx, userID, points, activity)
	if err != nil {
		return domain.UserPoints{}, fmt.Errorf("s.repo.Credit -> %w", err)
	}

	return account, nil
}

func (s *RewardService) GetActivity(ctx context.Context, userID uint, kind domain.ActivityKind) ([]domain.RewardActivity, error) {
	activities, err := s.repo.FindActivity(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindActivity -> %w", err)
	}

	return activities, nil
}

func (s *RewardService) CreateActivity(ctx context.Context, activity domain.RewardActivity) (domain.RewardActivity, error) {
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}

	created, err := s.repo.CreateActivity(ctx, activity)
	if err != nil {
		return domain.RewardActivity{}, fmt.Errorf("s.repo.CreateActivity -> %w", err)
	}

	return created, nil
}

func (s *RewardService) UpdateActivity(ctx context.Context, activity domain.RewardActivity) (domain.RewardActivity, error) {
	updated, err := s.repo.UpdateActivity(ctx, activity)
	if err != nil {
		return domain.RewardActivity{}, fmt.Errorf("s.repo.UpdateActivity -> %w", err)
	}

	return updated, nil
}

func (s *RewardService) DeleteActivity(ctx context.Context, id uint) error {
	if err := s.repo.DeleteActivity(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteActivity -> %w", err)
	}

	return nil
}
