package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository"
)

type fakeAuthRepo struct {
	FindByIDFn         func(ctx context.Context, id uint) (domain.User, error)
	FindByEmailFn      func(ctx context.Context, email string) (domain.User, error)
	FindByResetTokenFn func(ctx context.Context, token string) (domain.User, error)
	UpdateFn           func(ctx context.Context, user domain.User) (domain.User, error)
	SetResetTokenFn    func(ctx context.Context, userID uint, token *string, expiry *time.Time) error
	ResetTokenExpiryFn func(ctx context.Context, userID uint) (*time.Time, error)
	UpdatePasswordFn   func(ctx context.Context, userID uint, passwordHash string) error
}

func (f *fakeAuthRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return domain.User{ID: id}, nil
}

func (f *fakeAuthRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if f.FindByEmailFn != nil {
		return f.FindByEmailFn(ctx, email)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeAuthRepo) FindByResetToken(ctx context.Context, token string) (domain.User, error) {
	if f.FindByResetTokenFn != nil {
		return f.FindByResetTokenFn(ctx, token)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeAuthRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, user)
	}
	return user, nil
}

func (f *fakeAuthRepo) SetResetToken(ctx context.Context, userID uint, token *string, expiry *time.Time) error {
	if f.SetResetTokenFn != nil {
		return f.SetResetTokenFn(ctx, userID, token, expiry)
	}
	return nil
}

func (f *fakeAuthRepo) ResetTokenExpiry(ctx context.Context, userID uint) (*time.Time, error) {
	if f.ResetTokenExpiryFn != nil {
		return f.ResetTokenExpiryFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeAuthRepo) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	if f.UpdatePasswordFn != nil {
		return f.UpdatePasswordFn(ctx, userID, passwordHash)
	}
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func TestLogin(t *testing.T) {
	t.Run("rejects a wrong password", func(t *testing.T) {
		repo := &fakeAuthRepo{
			FindByEmailFn: func(context.Context, string) (domain.User, error) {
				return domain.User{ID: 1, Password: hashPassword(t, "correct-horse1")}, nil
			},
		}
		svc := NewAuthService(repo, &fakeMailer{}, "http://localhost")

		_, err := svc.Login(context.Background(), "user@example.com", "wrong-horse1")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("rejects a suspended account before checking the password", func(t *testing.T) {
		repo := &fakeAuthRepo{
			FindByEmailFn: func(context.Context, string) (domain.User, error) {
				return domain.User{ID: 1, Status: domain.UserStatusInactive}, nil
			},
		}
		svc := NewAuthService(repo, &fakeMailer{}, "http://localhost")

		_, err := svc.Login(context.Background(), "user@example.com", "whatever1")

		assert.ErrorIs(t, err, ErrUserSuspended)
	})

	t.Run("maps an unknown email to not found", func(t *testing.T) {
		svc := NewAuthService(&fakeAuthRepo{}, &fakeMailer{}, "http://localhost")

		_, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("records last login on success", func(t *testing.T) {
		var updated domain.User
		repo := &fakeAuthRepo{
			FindByEmailFn: func(context.Context, string) (domain.User, error) {
				return domain.User{ID: 1, Status: domain.UserStatusActive, Password: hashPassword(t, "correct-horse1")}, nil
			},
			UpdateFn: func(_ context.Context, user domain.User) (domain.User, error) {
				updated = user
				return user, nil
			},
		}
		svc := NewAuthService(repo, &fakeMailer{}, "http://localhost")

		user, err := svc.Login(context.Background(), "user@example.com", "correct-horse1")

		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
		require.NotNil(t, updated.LastLogin)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("unknown email is silently accepted", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewAuthService(&fakeAuthRepo{}, mailer, "http://localhost")

		err := svc.ForgotPassword(context.Background(), "nobody@example.com")

		require.NoError(t, err)
		assert.Empty(t, mailer.Sent)
	})

	t.Run("issues a token and mails the reset link", func(t *testing.T) {
		var gotToken *string
		var gotExpiry *time.Time
		repo := &fakeAuthRepo{
			FindByEmailFn: func(context.Context, string) (domain.User, error) {
				return domain.User{ID: 1, Email: "user@example.com", Username: "user"}, nil
			},
			SetResetTokenFn: func(_ context.Context, _ uint, token *string, expiry *time.Time) error {
				gotToken = token
				gotExpiry = expiry
				return nil
			},
		}
		mailer := &fakeMailer{}
		svc := NewAuthService(repo, mailer, "http://localhost")

		err := svc.ForgotPassword(context.Background(), "user@example.com")

		require.NoError(t, err)
		require.NotNil(t, gotToken)
		assert.NotEmpty(t, *gotToken)
		require.NotNil(t, gotExpiry)
		assert.True(t, gotExpiry.After(time.Now().UTC()))
		assert.Equal(t, []string{"user@example.com"}, mailer.Sent)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("unknown token is invalid", func(t *testing.T) {
		svc := NewAuthService(&fakeAuthRepo{}, &fakeMailer{}, "http://localhost")

		err := svc.ResetPassword(context.Background(), "nope", "newpassword1")

		assert.ErrorIs(t, err, ErrResetTokenInvalid)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		repo := &fakeAuthRepo{
			FindByResetTokenFn: func(context.Context, string) (domain.User, error) {
				return domain.User{ID: 1}, nil
			},
			ResetTokenExpiryFn: func(context.Context, uint) (*time.Time, error) {
				return &past, nil
			},
		}
		svc := NewAuthService(repo, &fakeMailer{}, "http://localhost")

		err := svc.ResetPassword(context.Background(), "token", "newpassword1")

		assert.ErrorIs(t, err, ErrResetTokenExpired)
	})

	t.Run("valid token replaces the password", func(t *testing.T) {
		future := time.Now().UTC().Add(30 * time.Minute)
		var gotHash string
		repo := &fakeAuthRepo{
			FindByResetTokenFn: func(context.Context, string) (domain.User, error) {
				return domain.User{ID: 1}, nil
			},
			ResetTokenExpiryFn: func(context.Context, uint) (*time.Time, error) {
				return &future, nil
			},
			UpdatePasswordFn: func(_ context.Context, _ uint, passwordHash string) error {
				gotHash = passwordHash
				return nil
			},
		}
		svc := NewAuthService(repo, &fakeMailer{}, "http://localhost")

		err := svc.ResetPassword(context.Background(), "token", "newpassword1")

		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("newpassword1")))
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("rejects a wrong current password", func(t *testing.T) {
		repo := &fakeAuthRepo{
			FindByIDFn: func(_ context.Context, id uint) (domain.User, error) {
				return domain.User{ID: id, Password: hashPassword(t, "oldpassword1")}, nil
			},
		}
		svc := NewAuthService(repo, &fakeMailer{}, "http://localhost")

		err := svc.ChangePassword(context.Background(), 1, "wrongpassword1", "newpassword1")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("stores the new hash", func(t *testing.T) {
		var gotHash string
		repo := &fakeAuthRepo{
			FindByIDFn: func(_ context.Context, id uint) (domain.User, error) {
				return domain.User{ID: id, Password: hashPassword(t, "oldpassword1")}, nil
			},
			UpdatePasswordFn: func(_ context.Context, _ uint, passwordHash string) error {
				gotHash = passwordHash
				return nil
			},
		}
		svc := NewAuthService(repo, &fakeMailer{}, "http://localhost")

		err := svc.ChangePassword(context.Background(), 1, "oldpassword1", "newpassword1")

		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("newpassword1")))
	})
}
