package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID               uint       `json:"user_id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Password         string     `json:"-"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	RegistrationDate time.Time  `json:"registration_date"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	IsFirstTimeLogin bool       `json:"is_first_time_login"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsSuspended() bool {
	return u.Status == UserStatusInactive
}
