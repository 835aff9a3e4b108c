package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaivio/nodes-api/internal/domain"
)

func TestSetAllocation(t *testing.T) {
	t.Run("rejects negative units", func(t *testing.T) {
		svc := NewNodeService(&fakeNodeRepo{}, domain.DefaultSystemTotalNodes)

		_, err := svc.SetAllocation(context.Background(), 1, -5)

		assert.ErrorIs(t, err, ErrInvalidAllocation)
	})

	t.Run("passes the system total through", func(t *testing.T) {
		var gotTotal int
		repo := &fakeNodeRepo{
			SetAllocationFn: func(_ context.Context, userID uint, newUnits, systemTotal int) (domain.UserNode, error) {
				gotTotal = systemTotal
				return domain.UserNode{UserID: userID, NodesAssigned: newUnits}, nil
			},
		}
		svc := NewNodeService(repo, 20000)

		allocation, err := svc.SetAllocation(context.Background(), 7, 150)

		require.NoError(t, err)
		assert.Equal(t, 20000, gotTotal)
		assert.Equal(t, uint(7), allocation.UserID)
		assert.Equal(t, 150, allocation.NodesAssigned)
	})

	t.Run("surfaces capacity errors", func(t *testing.T) {
		repo := &fakeNodeRepo{
			SetAllocationFn: func(context.Context, uint, int, int) (domain.UserNode, error) {
				return domain.UserNode{}, ErrCapacityExceeded
			},
		}
		svc := NewNodeService(repo, 20000)

		_, err := svc.SetAllocation(context.Background(), 7, 30000)

		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})
}

func TestAdjustReserved(t *testing.T) {
	t.Run("reads assigned total before transferring", func(t *testing.T) {
		var gotAssigned, gotDelta int
		repo := &fakeNodeRepo{
			SumAssignedFn: func(context.Context) (int, error) {
				return 1200, nil
			},
			TransferCapacityFn: func(_ context.Context, delta, activeAssigned, systemTotal int) (domain.PoolSnapshot, error) {
				gotDelta = delta
				gotAssigned = activeAssigned
				return domain.PoolSnapshot{
					Active:   activeAssigned + delta,
					Reserved: systemTotal - activeAssigned - delta - 5000,
					Inactive: 5000,
				}, nil
			},
		}
		svc := NewNodeService(repo, 20000)

		snapshot, err := svc.AdjustReserved(context.Background(), 300)

		require.NoError(t, err)
		assert.Equal(t, 300, gotDelta)
		assert.Equal(t, 1200, gotAssigned)
		assert.Equal(t, 20000, snapshot.Total())
	})

	t.Run("surfaces invariant violations", func(t *testing.T) {
		repo := &fakeNodeRepo{
			TransferCapacityFn: func(context.Context, int, int, int) (domain.PoolSnapshot, error) {
				return domain.PoolSnapshot{}, ErrInvariantViolation
			},
		}
		svc := NewNodeService(repo, 20000)

		_, err := svc.AdjustReserved(context.Background(), 100)

		assert.ErrorIs(t, err, ErrInvariantViolation)
	})
}

func TestNewNodeService_DefaultsSystemTotal(t *testing.T) {
	svc := NewNodeService(&fakeNodeRepo{}, 0)

	assert.Equal(t, domain.DefaultSystemTotalNodes, svc.SystemTotal())
}
