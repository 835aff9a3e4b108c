package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/mail"
	"github.com/zaivio/nodes-api/internal/repository"
)

var (
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrUserEmailExists = repository.ErrUserEmailExists
	ErrInvalidStatus   = errors.New("status must be active or inactive")
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	FindActive(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
}

// NewUser is one row of an admin create request.
type NewUser struct {
	Username string
	Email    string
	Role     string
	Nodes    *int
}

// UserPatch carries a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Role     *string
	Status   *string
	Nodes    *int
}

// UserService covers admin user management: provisioning accounts with their
// node allocations, suspension, and partial updates.
type UserService struct {
	repo        UserRepository
	nodes       NodeRepository
	mailer      mail.Mailer
	baseURL     string
	systemTotal int
}

func NewUserService(repo UserRepository, nodes NodeRepository, mailer mail.Mailer, baseURL string, systemTotal int) *UserService {
	if systemTotal <= 0 {
		systemTotal = domain.DefaultSystemTotalNodes
	}

	return &UserService{
		repo:        repo,
		nodes:       nodes,
		mailer:      mailer,
		baseURL:     baseURL,
		systemTotal: systemTotal,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

// CreateUser provisions an account with a generated temporary password,
// assigns the requested node allocation, and emails the credentials. The
// temporary password is returned for the admin response body.
func (s *UserService) CreateUser(ctx context.Context, input NewUser) (domain.User, string, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return domain.User{}, "", ErrUserEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, "", fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	tempPassword := generateTempPassword()

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	created, err := s.repo.Create(ctx, domain.User{
		Username:         input.Username,
		Email:            input.Email,
		Password:         string(hash),
		Role:             role,
		Status:           domain.UserStatusActive,
		IsFirstTimeLogin: true,
	})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("s.repo.Create -> %w", err)
	}

	if input.Nodes != nil && *input.Nodes > 0 {
		if _, err := s.nodes.SetAllocation(ctx, created.ID, *input.Nodes, s.systemTotal); err != nil {
			return domain.User{}, "", fmt.Errorf("s.nodes.SetAllocation -> %w", err)
		}
	}

	subject, body := mail.WelcomeEmail(created.Username, created.Email, tempPassword, s.baseURL+"/login")
	if err := s.mailer.Send(created.Email, subject, body); err != nil {
		zap.L().Warn("welcome email not sent",
			zap.Uint("user_id", created.ID),
			zap.Error(err))
	}

	return created, tempPassword, nil
}

// BulkUserFailure is one rejected row of a bulk create.
type BulkUserFailure struct {
	Email  string
	Reason string
}

// BulkCreateReport carries the per-row outcome of a bulk create.
type BulkCreateReport struct {
	Created []domain.User
	Failed  []BulkUserFailure
}

// BulkCreateUsers provisions a batch of accounts. A failing row never aborts
// the batch; each row lands in the report as created or failed with its
// reason, so a re-uploaded sheet reports duplicates instead of erroring.
func (s *UserService) BulkCreateUsers(ctx context.Context, inputs []NewUser) (BulkCreateReport, error) {
	report := BulkCreateReport{
		Created: make([]domain.User, 0, len(inputs)),
		Failed:  make([]BulkUserFailure, 0),
	}

	for _, input := range inputs {
		user, _, err := s.CreateUser(ctx, input)
		if err != nil {
			zap.L().Warn("bulk create row failed",
				zap.String("email", input.Email),
				zap.Error(err))

			reason := err.Error()
			if errors.Is(err, ErrUserEmailExists) {
				reason = ErrUserEmailExists.Error()
			}

			report.Failed = append(report.Failed, BulkUserFailure{
				Email:  input.Email,
				Reason: reason,
			})

			continue
		}

		report.Created = append(report.Created, user)
	}

	return report, nil
}

// SetUserStatus suspends or reinstates an account. Suspension blocks login but
// leaves the allocation and balances untouched.
func (s *UserService) SetUserStatus(ctx context.Context, id uint, status string) (domain.User, error) {
	if status != domain.UserStatusActive && status != domain.UserStatusInactive {
		return domain.User{}, ErrInvalidStatus
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.Status = status

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, patch UserPatch) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Status != nil {
		if *patch.Status != domain.UserStatusActive && *patch.Status != domain.UserStatusInactive {
			return domain.User{}, ErrInvalidStatus
		}
		user.Status = *patch.Status
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if patch.Nodes != nil {
		if _, err := s.nodes.SetAllocation(ctx, id, *patch.Nodes, s.systemTotal); err != nil {
			return domain.User{}, fmt.Errorf("s.nodes.SetAllocation -> %w", err)
		}
	}

	return updated, nil
}

func generateTempPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
