package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPointsNotFound      = errors.New("user points not found")
	ErrInsufficientBalance = errors.New("not enough points to redeem")
)

type UserPoints struct {
	ID                     uint `gorm:"primaryKey;column:user_points_id"`
	UserID                 uint `gorm:"uniqueIndex;not null"`
	TotalPoints            int  `gorm:"not null;default:0"`
	AvailableForRedemption int  `gorm:"not null;default:0"`
	TokensRedeemed         int  `gorm:"not null;default:0"`
	DateUpdated            time.Time
}

func (UserPoints) TableName() string {
	return "user_points"
}

type PointsDAO struct {
	db *gorm.DB
}

func NewPointsDAO(db *gorm.DB) *PointsDAO {
	return &PointsDAO{
		db: db,
	}
}

func (d *PointsDAO) FindByUserID(ctx context.Context, userID uint) (UserPoints, error) {
	var points UserPoints

	result := d.db.WithContext(ctx).First(&points, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return UserPoints{}, ErrPointsNotFound
		}

		return UserPoints{}, result.Error
	}

	return points, nil
}

// FindOrCreateByUserID lazily creates a zeroed account, matching how accounts
// come into existence on first accrual or first admin listing.
func (d *PointsDAO) FindOrCreateByUserID(ctx context.Context, userID uint) (UserPoints, error) {
	points, err := d.FindByUserID(ctx, userID)
	if err == nil {
		return points, nil
	}
	if !errors.Is(err, ErrPointsNotFound) {
		return UserPoints{}, err
	}

	points = UserPoints{
		UserID:      userID,
		DateUpdated: time.Now().UTC(),
	}
	if err := d.db.WithContext(ctx).Create(&points).Error; err != nil {
		return UserPoints{}, err
	}

	return points, nil
}

// Credit raises both the lifetime total and the redeemable balance, and
// appends the matching audit entry, in one transaction.
func (d *PointsDAO) Credit(ctx context.Context, userID uint, points int, activity RewardActivity) (UserPoints, error) {
	var updated UserPoints

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockPoints(tx, userID)
		if err != nil {
			if !errors.Is(err, ErrPointsNotFound) {
				return err
			}
			account = UserPoints{UserID: userID}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		}

		account.TotalPoints += points
		account.AvailableForRedemption += points
		account.DateUpdated = time.Now().UTC()
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		if err := tx.Create(&activity).Error; err != nil {
			return err
		}

		updated = account
		return nil
	})
	if err != nil {
		return UserPoints{}, err
	}

	return updated, nil
}

// RedeemPoints debits the redeemable balance and creates the on-hold
// transaction atomically, so a crash can never leave a debit without its
// transaction or the other way around.
func (d *PointsDAO) RedeemPoints(ctx context.Context, userID uint, points, tokens int, walletAddress string) (Transaction, UserPoints, error) {
	var (
		txn     Transaction
		account UserPoints
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		account, err = lockPoints(tx, userID)
		if err != nil {
			return err
		}

		if account.AvailableForRedemption < points {
			return ErrInsufficientBalance
		}

		now := time.Now().UTC()

		account.AvailableForRedemption -= points
		account.TokensRedeemed += points
		account.DateUpdated = now
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		txn = Transaction{
			UserID:          userID,
			TokensRedeemed:  tokens,
			WalletAddress:   walletAddress,
			Status:          "on_hold",
			TransactionDate: now,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		activity := RewardActivity{
			UserID:      userID,
			Points:      points,
			Kind:        "redemption",
			IsCredit:    false,
			Description: "Points redeemed for tokens",
			Timestamp:   now,
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return Transaction{}, UserPoints{}, err
	}

	return txn, account, nil
}

// RefundPoints returns a failed settlement's points to the redeemable balance.
// Only called when the refund-on-failure policy is enabled.
func (d *PointsDAO) RefundPoints(ctx context.Context, userID uint, points int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockPoints(tx, userID)
		if err != nil {
			return err
		}

		account.AvailableForRedemption += points
		account.TokensRedeemed -= points
		account.DateUpdated = time.Now().UTC()

		return tx.Save(&account).Error
	})
}

// ApplyDailyRewards credits every allocated user for one accrual cycle inside
// a single transaction: either the whole sweep lands or none of it does, so a
// retried run can never double-credit a partially processed batch. Returns the
// number of users credited.
func (d *PointsDAO) ApplyDailyRewards(ctx context.Context, rewardPerNode int, cycleTime time.Time) (int, error) {
	credited := 0

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var allocations []UserNode
		if err := tx.Order("user_id").Find(&allocations).Error; err != nil {
			return err
		}

		for _, alloc := range allocations {
			points := rewardPerNode * alloc.NodesAssigned

			account, err := lockPoints(tx, alloc.UserID)
			if err != nil {
				if !errors.Is(err, ErrPointsNotFound) {
					return err
				}
				account = UserPoints{UserID: alloc.UserID}
				if err := tx.Create(&account).Error; err != nil {
					return err
				}
			}

			account.TotalPoints += points
			account.AvailableForRedemption += points
			account.DateUpdated = cycleTime
			if err := tx.Save(&account).Error; err != nil {
				return err
			}

			activity := RewardActivity{
				UserID:      alloc.UserID,
				Points:      points,
				Kind:        "reward",
				IsCredit:    true,
				Description: "Daily rewarded nodes",
				Timestamp:   cycleTime,
			}
			if err := tx.Create(&activity).Error; err != nil {
				return err
			}

			credited++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return credited, nil
}

func lockPoints(tx *gorm.DB, userID uint) (UserPoints, error) {
	var account UserPoints

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return UserPoints{}, ErrPointsNotFound
		}

		return UserPoints{}, result.Error
	}

	return account, nil
}
