package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetPasswordRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ResetPasswordRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  ResetPasswordRequest{Token: "tok", NewPassword: "abc12345", ConfirmPassword: "abc12345"},
		},
		{
			name:    "no digit",
			req:     ResetPasswordRequest{Token: "tok", NewPassword: "abcdefgh", ConfirmPassword: "abcdefgh"},
			wantErr: errInvalidPassword,
		},
		{
			name:    "no letter",
			req:     ResetPasswordRequest{Token: "tok", NewPassword: "12345678", ConfirmPassword: "12345678"},
			wantErr: errInvalidPassword,
		},
		{
			name:    "too short",
			req:     ResetPasswordRequest{Token: "tok", NewPassword: "abc1234", ConfirmPassword: "abc1234"},
			wantErr: errInvalidPassword,
		},
		{
			name:    "confirm mismatch",
			req:     ResetPasswordRequest{Token: "tok", NewPassword: "abc12345", ConfirmPassword: "abc12346"},
			wantErr: errConfirmPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestResetPasswordRequest_Validate_MissingToken(t *testing.T) {
	req := ResetPasswordRequest{NewPassword: "abc12345", ConfirmPassword: "abc12345"}

	assert.Error(t, req.Validate())
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "user@example.com", Password: "abc12345"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "not-an-email", Password: "abc12345"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "user@example.com"}).Validate())
}
