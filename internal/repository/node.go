package repository

import (
	"context"
	"fmt"

	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/repository/dao"
)

var (
	ErrPoolNotFound       = dao.ErrPoolNotFound
	ErrAllocationNotFound = dao.ErrAllocationNotFound
	ErrInvalidAllocation  = dao.ErrInvalidAllocation
	ErrCapacityExceeded   = dao.ErrCapacityExceeded
	ErrInvariantViolation = dao.ErrInvariantViolation
)

type NodeDAO interface {
	GetPoolByStatus(ctx context.Context, status string) (dao.NodePool, error)
	GetPoolByID(ctx context.Context, id uint) (dao.NodePool, error)
	GetAllPools(ctx context.Context) ([]dao.NodePool, error)
	CreatePool(ctx context.Context, pool dao.NodePool) (dao.NodePool, error)
	UpdatePool(ctx context.Context, id uint, totalNodes, dailyReward *int) (dao.NodePool, error)
	DeletePool(ctx context.Context, id uint) error
	TransferCapacity(ctx context.Context, delta, activeAssigned, systemTotal int) (dao.PoolTotals, error)
	GetAllocation(ctx context.Context, userID uint) (dao.UserNode, error)
	GetAllAllocations(ctx context.Context) ([]dao.UserNode, error)
	SumAssigned(ctx context.Context) (int, error)
	SetAllocation(ctx context.Context, userID uint, newUnits, systemTotal int) (dao.UserNode, error)
	DeleteAllocation(ctx context.Context, userID uint) error
}

type NodeRepository struct {
	dao NodeDAO
}

func NewNodeRepository(dao NodeDAO) *NodeRepository {
	return &NodeRepository{
		dao: dao,
	}
}

func (r *NodeRepository) poolToDomain(p dao.NodePool) domain.NodePool {
	return domain.NodePool{
		ID:          p.ID,
		Status:      domain.PoolStatus(p.Status),
		TotalNodes:  p.TotalNodes,
		DailyReward: p.DailyReward,
		DateUpdated: p.DateUpdated,
	}
}

func (r *NodeRepository) allocationToDomain(n dao.UserNode) domain.UserNode {
	return domain.UserNode{
		ID:            n.ID,
		UserID:        n.UserID,
		NodesAssigned: n.NodesAssigned,
		DateAssigned:  n.DateAssigned,
	}
}

func (r *NodeRepository) GetPool(ctx context.Context, status domain.PoolStatus) (domain.NodePool, error) {
	pool, err := r.dao.GetPoolByStatus(ctx, string(status))
	if err != nil {
		return domain.NodePool{}, fmt.Errorf("r.dao.GetPoolByStatus -> %w", err)
	}

	return r.poolToDomain(pool), nil
}

func (r *NodeRepository) GetPoolByID(ctx context.Context, id uint) (domain.NodePool, error) {
	pool, err := r.dao.GetPoolByID(ctx, id)
	if err != nil {
		return domain.NodePool{}, fmt.Errorf("r.dao.GetPoolByID -> %w", err)
	}

	return r.poolToDomain(pool), nil
}

func (r *NodeRepository) GetAllPools(ctx context.Context) ([]domain.NodePool, error) {
	pools, err := r.dao.GetAllPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetAllPools -> %w", err)
	}

	converted := make([]domain.NodePool, len(pools))
	for i, p := range pools {
		converted[i] = r.poolToDomain(p)
	}

	return converted, nil
}

func (r *NodeRepository) CreatePool(ctx context.Context, pool domain.NodePool) (domain.NodePool, error) {
	created, err := r.dao.CreatePool(ctx, dao.NodePool{
		Status:      string(pool.Status),
		TotalNodes:  pool.TotalNodes,
		DailyReward: pool.DailyReward,
	})
	if err != nil {
		return domain.NodePool{}, fmt.Errorf("r.dao.CreatePool -> %w", err)
	}

	return r.poolToDomain(created), nil
}

func (r *NodeRepository) UpdatePool(ctx context.Context, id uint, patch domain.NodePoolPatch) (domain.NodePool, error) {
	updated, err := r.dao.UpdatePool(ctx, id, patch.TotalNodes, patch.DailyReward)
	if err != nil {
		return domain.NodePool{}, fmt.Errorf("r.dao.UpdatePool -> %w", err)
	}

	return r.poolToDomain(updated), nil
}

func (r *NodeRepository) DeletePool(ctx context.Context, id uint) error {
	if err := r.dao.DeletePool(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeletePool -> %w", err)
	}

	return nil
}

// TransferCapacity moves capacity between the reserved and active pools and
// returns the resulting per-pool snapshot.
func (r *NodeRepository) TransferCapacity(ctx context.Context, delta, activeAssigned, systemTotal int) (domain.PoolSnapshot, error) {
	totals, err := r.dao.TransferCapacity(ctx, delta, activeAssigned, systemTotal)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("r.dao.TransferCapacity -> %w", err)
	}

	return domain.PoolSnapshot{
		Active:   totals.Active,
		Reserved: totals.Reserved,
		Inactive: totals.Inactive,
	}, nil
}

func (r *NodeRepository) GetAllocation(ctx context.Context, userID uint) (domain.UserNode, error) {
	node, err := r.dao.GetAllocation(ctx, userID)
	if err != nil {
		return domain.UserNode{}, fmt.Errorf("r.dao.GetAllocation -> %w", err)
	}

	return r.allocationToDomain(node), nil
}

func (r *NodeRepository) GetAllAllocations(ctx context.Context) ([]domain.UserNode, error) {
	nodes, err := r.dao.GetAllAllocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetAllAllocations -> %w", err)
	}

	converted := make([]domain.UserNode, len(nodes))
	for i, n := range nodes {
		converted[i] = r.allocationToDomain(n)
	}

	return converted, nil
}

func (r *NodeRepository) SumAssigned(ctx context.Context) (int, error) {
	total, err := r.dao.SumAssigned(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumAssigned -> %w", err)
	}

	return total, nil
}

func (r *NodeRepository) SetAllocation(ctx context.Context, userID uint, newUnits, systemTotal int) (domain.UserNode, error) {
	saved, err := r.dao.SetAllocation(ctx, userID, newUnits, systemTotal)
	if err != nil {
		return domain.UserNode{}, fmt.Errorf("r.dao.SetAllocation -> %w", err)
	}

	return r.allocationToDomain(saved), nil
}

func (r *NodeRepository) DeleteAllocation(ctx context.Context, userID uint) error {
	if err := r.dao.DeleteAllocation(ctx, userID); err != nil {
		return fmt.Errorf("r.dao.DeleteAllocation -> %w", err)
	}

	return nil
}
