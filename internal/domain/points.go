package domain

import "time"

type UserPoints struct {
	ID                     uint      `json:"user_points_id"`
	UserID                 uint      `json:"user_id"`
	TotalPoints            int       `json:"total_points"`
	AvailableForRedemption int       `json:"available_for_redemption"`
	TokensRedeemed         int       `json:"tokens_redeemed"`
	DateUpdated            time.Time `json:"date_updated"`
}

type ActivityKind string

const (
	ActivityReward     ActivityKind = "reward"
	ActivityRedemption ActivityKind = "redemption"
	ActivityBonus      ActivityKind = "bonus"
)

// RewardActivity is an append-only audit entry for every points movement.
type RewardActivity struct {
	ID          uint         `json:"activity_id"`
	UserID      uint         `json:"user_id"`
	Points      int          `json:"points"`
	Kind        ActivityKind `json:"type"`
	IsCredit    bool         `json:"is_credit"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"activity_timestamp"`
}
