package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository"
)

type fakeAdminUserRepo struct {
	CreateFn      func(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmailFn func(ctx context.Context, email string) (domain.User, error)
}

func (f *fakeAdminUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, user)
	}
	return user, nil
}

func (f *fakeAdminUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	return domain.User{ID: id}, nil
}

func (f *fakeAdminUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if f.FindByEmailFn != nil {
		return f.FindByEmailFn(ctx, email)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeAdminUserRepo) FindAll(context.Context) ([]domain.User, error) {
	return nil, nil
}

func (f *fakeAdminUserRepo) FindActive(context.Context) ([]domain.User, error) {
	return nil, nil
}

func (f *fakeAdminUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	return user, nil
}

func TestBulkCreateUsers_PerRowReport(t *testing.T) {
	nextID := uint(0)
	repo := &fakeAdminUserRepo{
		CreateFn: func(_ context.Context, user domain.User) (domain.User, error) {
			nextID++
			user.ID = nextID
			return user, nil
		},
		FindByEmailFn: func(_ context.Context, email string) (domain.User, error) {
			if email == "taken@example.com" {
				return domain.User{ID: 99, Email: email}, nil
			}
			return domain.User{}, repository.ErrUserNotFound
		},
	}

	nodes := &fakeNodeRepo{
		SetAllocationFn: func(_ context.Context, userID uint, newUnits, _ int) (domain.UserNode, error) {
			if newUnits > 100 {
				return domain.UserNode{}, ErrCapacityExceeded
			}
			return domain.UserNode{UserID: userID, NodesAssigned: newUnits}, nil
		},
	}

	mailer := &fakeMailer{}
	svc := NewUserService(repo, nodes, mailer, "http://localhost", 20000)

	tooMany := 500
	fine := 10
	report, err := svc.BulkCreateUsers(context.Background(), []NewUser{
		{Username: "alice", Email: "alice@example.com", Nodes: &fine},
		{Username: "bob", Email: "taken@example.com"},
		{Username: "carol", Email: "carol@example.com", Nodes: &tooMany},
	})

	require.NoError(t, err)
	require.Len(t, report.Created, 1)
	assert.Equal(t, "alice@example.com", report.Created[0].Email)

	require.Len(t, report.Failed, 2)
	assert.Equal(t, "taken@example.com", report.Failed[0].Email)
	assert.Equal(t, ErrUserEmailExists.Error(), report.Failed[0].Reason)
	assert.Equal(t, "carol@example.com", report.Failed[1].Email)
	assert.NotEmpty(t, report.Failed[1].Reason)
}
