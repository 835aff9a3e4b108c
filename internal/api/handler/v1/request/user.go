package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Nodes    *int   `json:"nodes,omitempty"`
}

func (req *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Role, validation.In("user", "admin")),
		validation.Field(&req.Nodes, validation.Min(0)),
	)
}

type BulkCreateUsersRequest struct {
	Users []CreateUserRequest `json:"users"`
}

func (req *BulkCreateUsersRequest) Validate() error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.Users, validation.Required, validation.Length(1, 500)),
	); err != nil {
		return err
	}

	for i := range req.Users {
		if err := req.Users[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
	Nodes    *int    `json:"nodes,omitempty"`
}

func (req *UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Length(2, 50)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Role, validation.In("user", "admin")),
		validation.Field(&req.Status, validation.In("active", "inactive")),
		validation.Field(&req.Nodes, validation.Min(0)),
	)
}

type SetUserStatusRequest struct {
	Status string `json:"status"`
}

func (req *SetUserStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In("active", "inactive")),
	)
}
