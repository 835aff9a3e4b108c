package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/mail"
	"github.com/zaivio/nodes-api/internal/repository"
)

var (
	ErrWrongPassword     = errors.New("wrong password")
	ErrUserSuspended     = errors.New("account is suspended")
	ErrResetTokenInvalid = errors.New("reset token is invalid")
	ErrResetTokenExpired = errors.New("reset token has expired")
)

const resetTokenTTL = time.Hour

type AuthUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByResetToken(ctx context.Context, token string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	SetResetToken(ctx context.Context, userID uint, token *string, expiry *time.Time) error
	ResetTokenExpiry(ctx context.Context, userID uint) (*time.Time, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
}

type AuthService struct {
	repo    AuthUserRepository
	mailer  mail.Mailer
	baseURL string
}

func NewAuthService(repo AuthUserRepository, mailer mail.Mailer, baseURL string) *AuthService {
	return &AuthService{
		repo:    repo,
		mailer:  mailer,
		baseURL: baseURL,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if user.IsSuspended() {
		return domain.User{}, ErrUserSuspended
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if _, err := s.repo.Update(ctx, user); err != nil {
		zap.L().Warn("last login not recorded",
			zap.Uint("user_id", user.ID),
			zap.Error(err))
	}

	return user, nil
}

// ForgotPassword issues a one-hour reset token and emails the reset link.
// An unknown email is not reported to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			zap.L().Info("password reset requested for unknown email")

			return nil
		}

		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	token := uuid.NewString()
	expiry := time.Now().UTC().Add(resetTokenTTL)

	if err := s.repo.SetResetToken(ctx, user.ID, &token, &expiry); err != nil {
		return fmt.Errorf("s.repo.SetResetToken -> %w", err)
	}

	subject, body := mail.PasswordResetEmail(user.Username, s.baseURL+"/reset-password?token="+token)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		return fmt.Errorf("s.mailer.Send -> %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrResetTokenInvalid
		}

		return fmt.Errorf("s.repo.FindByResetToken -> %w", err)
	}

	expiry, err := s.repo.ResetTokenExpiry(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("s.repo.ResetTokenExpiry -> %w", err)
	}
	if expiry == nil || expiry.Before(time.Now().UTC()) {
		return ErrResetTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	return nil
}

// ChangePassword replaces the password for a logged-in user, clearing the
// first-login flag set by admin provisioning.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	return nil
}
