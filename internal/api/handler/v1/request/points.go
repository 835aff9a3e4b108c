package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type RedeemRequest struct {
	Points int `json:"points"`
}

func (req *RedeemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Points, validation.Required, validation.Min(1)),
	)
}

type CreditPointsRequest struct {
	Points      int    `json:"points"`
	Description string `json:"description"`
}

func (req *CreditPointsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Points, validation.Required, validation.Min(1)),
		validation.Field(&req.Description, validation.Length(0, 200)),
	)
}

type ApproveTransactionsRequest struct {
	TransactionIDs []uint `json:"transaction_ids"`
}

func (req *ApproveTransactionsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TransactionIDs, validation.Required, validation.Length(1, 100)),
	)
}
