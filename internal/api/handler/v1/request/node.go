package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreatePoolRequest struct {
	Status      string `json:"status"`
	TotalNodes  int    `json:"total_nodes"`
	DailyReward *int   `json:"daily_reward,omitempty"`
}

func (req *CreatePoolRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In("active", "reserved", "inactive")),
		validation.Field(&req.TotalNodes, validation.Min(0)),
		validation.Field(&req.DailyReward, validation.Min(0)),
	)
}

type UpdatePoolRequest struct {
	TotalNodes  *int `json:"total_nodes,omitempty"`
	DailyReward *int `json:"daily_reward,omitempty"`
}

func (req *UpdatePoolRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TotalNodes, validation.Min(0)),
		validation.Field(&req.DailyReward, validation.Min(0)),
	)
}

// AdjustReservedRequest moves capacity between the reserved and active pools.
// A negative delta moves active capacity back to reserved; zero is a valid
// no-op that just reports the current pool counts.
type AdjustReservedRequest struct {
	Delta int `json:"delta"`
}

func (req *AdjustReservedRequest) Validate() error {
	return nil
}

type SetAllocationRequest struct {
	Nodes int `json:"nodes"`
}

func (req *SetAllocationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Nodes, validation.Min(0)),
	)
}
