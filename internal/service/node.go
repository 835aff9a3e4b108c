package service

import (
	"context"
	"fmt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository"
)

var (
	ErrPoolNotFound       = repository.ErrPoolNotFound
	ErrAllocationNotFound = repository.ErrAllocationNotFound
	ErrInvalidAllocation  = repository.ErrInvalidAllocation
	ErrCapacityExceeded   = repository.ErrCapacityExceeded
	ErrInvariantViolation = repository.ErrInvariantViolation
)

type NodeRepository interface {
	GetPool(ctx context.Context, status domain.PoolStatus) (domain.NodePool, error)
	GetPoolByID(ctx context.Context, id uint) (domain.NodePool, error)
	GetAllPools(ctx context.Context) ([]domain.NodePool, error)
	CreatePool(ctx context.Context, pool domain.NodePool) (domain.NodePool, error)
	UpdatePool(ctx context.Context, id uint, patch domain.NodePoolPatch) (domain.NodePool, error)
	DeletePool(ctx context.Context, id uint) error
	TransferCapacity(ctx context.Context, delta, activeAssigned, systemTotal int) (domain.PoolSnapshot, error)
	GetAllocation(ctx context.Context, userID uint) (domain.UserNode, error)
	GetAllAllocations(ctx context.Context) ([]domain.UserNode, error)
	SumAssigned(ctx context.Context) (int, error)
	SetAllocation(ctx context.Context, userID uint, newUnits, systemTotal int) (domain.UserNode, error)
	DeleteAllocation(ctx context.Context, userID uint) error
}

// NodeService manages the three-pool capacity ledger and per-user allocations.
type NodeService struct {
	repo        NodeRepository
	systemTotal int
}

func NewNodeService(repo NodeRepository, systemTotal int) *NodeService {
	if systemTotal <= 0 {
		systemTotal = domain.DefaultSystemTotalNodes
	}

	return &NodeService{
		repo:        repo,
		systemTotal: systemTotal,
	}
}

func (s *NodeService) SystemTotal() int {
	return s.systemTotal
}

func (s *NodeService) GetPool(ctx context.Context, status domain.PoolStatus) (domain.NodePool, error) {
	pool, err := s.repo.GetPool(ctx, status)
	if err != nil {
		return domain.NodePool{}, fmt.Errorf("s.repo.GetPool -> %w", err)
	}

	return pool, nil
}

func (s *NodeService) GetAllPools(ctx context.Context) ([]domain.NodePool, error) {
	pools, err := s.repo.GetAllPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAllPools -> %w", err)
	}

	return pools, nil
}

func (s *NodeService) CreatePool(ctx context.Context, pool domain.NodePool) (domain.NodePool, error) {
	created, err := s.repo.CreatePool(ctx, pool)
	if err != nil {
		return domain.NodePool{}, fmt.Errorf("s.repo.CreatePool -> %w", err)
	}

	return created, nil
}

func (s *NodeService) UpdatePool(ctx context.Context, id uint, patch domain.NodePoolPatch) (domain.NodePool, error) {
	updated, err := s.repo.UpdatePool(ctx, id, patch)
	if err != nil {
		return domain.NodePool{}, fmt.Errorf("s.repo.UpdatePool -> %w", err)
	}

	return updated, nil
}

func (s *NodeService) DeletePool(ctx context.Context, id uint) error {
	if err := s.repo.DeletePool(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeletePool -> %w", err)
	}

	return nil
}

// AdjustReserved moves delta nodes from the reserved pool into active capacity
// (or back, for a negative delta) and returns the resulting snapshot. The
// assigned total is read first so the snapshot reports real active usage.
func (s *NodeService) AdjustReserved(ctx context.Context, delta int) (domain.PoolSnapshot, error) {
	assigned, err := s.repo.SumAssigned(ctx)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("s.repo.SumAssigned -> %w", err)
	}

	snapshot, err := s.repo.TransferCapacity(ctx, delta, assigned, s.systemTotal)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("s.repo.TransferCapacity -> %w", err)
	}

	return snapshot, nil
}

func (s *NodeService) GetAllocation(ctx context.Context, userID uint) (domain.UserNode, error) {
	allocation, err := s.repo.GetAllocation(ctx, userID)
	if err != nil {
		return domain.UserNode{}, fmt.Errorf("s.repo.GetAllocation -> %w", err)
	}

	return allocation, nil
}

func (s *NodeService) GetAllAllocations(ctx context.Context) ([]domain.UserNode, error) {
	allocations, err := s.repo.GetAllAllocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAllAllocations -> %w", err)
	}

	return allocations, nil
}

// SetAllocation sets a user's node count, moving the difference between the
// reserved and active pools in the same transaction.
func (s *NodeService) SetAllocation(ctx context.Context, userID uint, units int) (domain.UserNode, error) {
	if units < 0 {
		return domain.UserNode{}, ErrInvalidAllocation
	}

	allocation, err := s.repo.SetAllocation(ctx, userID, units, s.systemTotal)
	if err != nil {
		return domain.UserNode{}, fmt.Errorf("s.repo.SetAllocation -> %w", err)
	}

	return allocation, nil
}

// DeleteAllocation removes the user's allocation row. Pool totals are left
// as they are; the reserved adjustment endpoint is the way to rebalance.
func (s *NodeService) DeleteAllocation(ctx context.Context, userID uint) error {
	if err := s.repo.DeleteAllocation(ctx, userID); err != nil {
		return fmt.Errorf("s.repo.DeleteAllocation -> %w", err)
	}

	return nil
}
