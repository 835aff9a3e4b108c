package response

import "github.com/zaivio/nodes-api/internal/domain"

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type CreatedUserResponse struct {
	User         domain.User `json:"user"`
	TempPassword string      `json:"temp_password"`
}

type BulkUserFailure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type BulkCreatedUsersResponse struct {
	Created []domain.User     `json:"created"`
	Failed  []BulkUserFailure `json:"failed"`
	Count   int               `json:"count"`
}

type RedeemResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	Points      domain.UserPoints  `json:"points"`
}

type AccrualResponse struct {
	UsersCredited int `json:"users_credited"`
}

type SettlementResponse struct {
	Settled int `json:"settled"`
}
