package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindByResetToken(ctx context.Context, token string) (dao.User, error)
	FindAll(ctx context.Context) ([]dao.User, error)
	FindByStatus(ctx context.Context, status string) ([]dao.User, error)
	Update(ctx context.Context, user dao.User) (dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) domainToDao(u domain.User) dao.User {
	return dao.User{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Password:         u.Password,
		Role:             u.Role,
		Status:           u.Status,
		RegistrationDate: u.RegistrationDate,
		LastLogin:        u.LastLogin,
		IsFirstTimeLogin: u.IsFirstTimeLogin,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Password:         u.Password,
		Role:             u.Role,
		Status:           u.Status,
		RegistrationDate: u.RegistrationDate,
		LastLogin:        u.LastLogin,
		IsFirstTimeLogin: u.IsFirstTimeLogin,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	users, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	converted := make([]domain.User, len(users))
	for i, u := range users {
		converted[i] = r.daoToDomain(u)
	}

	return converted, nil
}

func (r *UserRepository) FindActive(ctx context.Context) ([]domain.User, error) {
	users, err := r.dao.FindByStatus(ctx, domain.UserStatusActive)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	converted := make([]domain.User, len(users))
	for i, u := range users {
		converted[i] = r.daoToDomain(u)
	}

	return converted, nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	existing, err := r.dao.FindByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	updated := r.domainToDao(user)
	updated.ResetPasswordToken = existing.ResetPasswordToken
	updated.TokenExpiry = existing.TokenExpiry
	if updated.Password == "" {
		updated.Password = existing.Password
	}

	saved, err := r.dao.Update(ctx, updated)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(saved), nil
}

// SetResetToken stores a password-reset token and its expiry on the user row.
func (r *UserRepository) SetResetToken(ctx context.Context, userID uint, token *string, expiry *time.Time) error {
	user, err := r.dao.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	user.ResetPasswordToken = token
	user.TokenExpiry = expiry

	if _, err := r.dao.Update(ctx, user); err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (domain.User, error) {
	user, err := r.dao.FindByResetToken(ctx, token)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByResetToken -> %w", err)
	}

	return r.daoToDomain(user), nil
}

// ResetTokenExpiry reports the stored expiry for the user's reset token, or
// nil when none is set.
func (r *UserRepository) ResetTokenExpiry(ctx context.Context, userID uint) (*time.Time, error) {
	user, err := r.dao.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return user.TokenExpiry, nil
}

// UpdatePassword replaces the password hash and clears any reset token.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	user, err := r.dao.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	user.Password = passwordHash
	user.ResetPasswordToken = nil
	user.TokenExpiry = nil
	user.IsFirstTimeLogin = false

	if _, err := r.dao.Update(ctx, user); err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}
