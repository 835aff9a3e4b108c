package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrActivityNotFound = errors.New("reward activity not found")

type RewardActivity struct {
	ID          uint   `gorm:"primaryKey;column:activity_id"`
	UserID      uint   `gorm:"index;not null"`
	Points      int    `gorm:"not null"`
	Kind        string `gorm:"column:type"` // "reward", "redemption" or "bonus"
	IsCredit    bool
	Description string
	Timestamp   time.Time `gorm:"column:activity_timestamp"`
}

func (RewardActivity) TableName() string {
	return "user_reward_activity"
}

type ActivityDAO struct {
	db *gorm.DB
}

func NewActivityDAO(db *gorm.DB) *ActivityDAO {
	return &ActivityDAO{
		db: db,
	}
}

func (d *ActivityDAO) Insert(ctx context.Context, activity RewardActivity) (RewardActivity, error) {
	result := d.db.WithContext(ctx).Create(&activity)
	if result.Error != nil {
		return RewardActivity{}, result.Error
	}

	return activity, nil
}

func (d *ActivityDAO) FindByUserID(ctx context.Context, userID uint, kind string) ([]RewardActivity, error) {
	var activities []RewardActivity

	query := d.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("type = ?", kind)
	}

	result := query.Order("activity_timestamp DESC").Find(&activities)
	if result.Error != nil {
		return nil, result.Error
	}

	return activities, nil
}

func (d *ActivityDAO) Update(ctx context.Context, activity RewardActivity) (RewardActivity, error) {
	var existing RewardActivity

	result := d.db.WithContext(ctx).First(&existing, activity.ID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return RewardActivity{}, ErrActivityNotFound
		}

		return RewardActivity{}, result.Error
	}

	if err := d.db.WithContext(ctx).Save(&activity).Error; err != nil {
		return RewardActivity{}, err
	}

	return activity, nil
}

func (d *ActivityDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&RewardActivity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}

	return nil
}
