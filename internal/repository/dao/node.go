package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPoolNotFound       = errors.New("node pool not found")
	ErrAllocationNotFound = errors.New("user allocation not found")
	ErrInvalidAllocation  = errors.New("invalid node allocation")
	ErrCapacityExceeded   = errors.New("node capacity exceeded")
	ErrInvariantViolation = errors.New("node pool totals no longer sum to the system total")
)

type NodePool struct {
	ID          uint   `gorm:"primaryKey;column:node_id"`
	Status      string `gorm:"uniqueIndex;not null"` // "active", "reserved" or "inactive"
	TotalNodes  int    `gorm:"not null"`
	DailyReward *int
	DateUpdated time.Time `gorm:"autoUpdateTime"`
}

func (NodePool) TableName() string {
	return "nodes"
}

type UserNode struct {
	ID            uint      `gorm:"primaryKey;column:user_node_id"`
	UserID        uint      `gorm:"uniqueIndex;not null"`
	NodesAssigned int       `gorm:"not null"`
	DateAssigned  time.Time `gorm:"autoCreateTime"`
}

func (UserNode) TableName() string {
	return "user_nodes"
}

// PoolTotals is the per-pool node count after a capacity transfer.
type PoolTotals struct {
	Active   int
	Reserved int
	Inactive int
}

type NodeDAO struct {
	db *gorm.DB
}

func NewNodeDAO(db *gorm.DB) *NodeDAO {
	return &NodeDAO{
		db: db,
	}
}

func (d *NodeDAO) GetPoolByStatus(ctx context.Context, status string) (NodePool, error) {
	var pool NodePool

	result := d.db.WithContext(ctx).First(&pool, "status = ?", status)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return NodePool{}, ErrPoolNotFound
		}

		return NodePool{}, result.Error
	}

	return pool, nil
}

func (d *NodeDAO) GetPoolByID(ctx context.Context, id uint) (NodePool, error) {
	var pool NodePool

	result := d.db.WithContext(ctx).First(&pool, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return NodePool{}, ErrPoolNotFound
		}

		return NodePool{}, result.Error
	}

	return pool, nil
}

func (d *NodeDAO) GetAllPools(ctx context.Context) ([]NodePool, error) {
	var pools []NodePool

	result := d.db.WithContext(ctx).Order("node_id").Find(&pools)
	if result.Error != nil {
		return nil, result.Error
	}

	return pools, nil
}

func (d *NodeDAO) CreatePool(ctx context.Context, pool NodePool) (NodePool, error) {
	result := d.db.WithContext(ctx).Create(&pool)
	if result.Error != nil {
		return NodePool{}, result.Error
	}

	return pool, nil
}

func (d *NodeDAO) UpdatePool(ctx context.Context, id uint, totalNodes, dailyReward *int) (NodePool, error) {
	var pool NodePool

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrPoolNotFound
			}

			return result.Error
		}

		if totalNodes != nil {
			pool.TotalNodes = *totalNodes
		}
		if dailyReward != nil {
			pool.DailyReward = dailyReward
		}
		pool.DateUpdated = time.Now().UTC()

		return tx.Save(&pool).Error
	})
	if err != nil {
		return NodePool{}, err
	}

	return pool, nil
}

func (d *NodeDAO) DeletePool(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&NodePool{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPoolNotFound
	}

	return nil
}

// TransferCapacity moves delta nodes from "reserved" to "active" (positive
// delta) or from "active" back to "reserved" (negative delta). The "inactive"
// pool is the system buffer and is never touched. A zero delta returns the
// current totals without writing anything.
func (d *NodeDAO) TransferCapacity(ctx context.Context, delta, activeAssigned, systemTotal int) (PoolTotals, error) {
	var totals PoolTotals

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		totals, err = transferCapacity(tx, delta, activeAssigned, systemTotal)
		return err
	})
	if err != nil {
		return PoolTotals{}, err
	}

	return totals, nil
}

// transferCapacity runs the capacity move on the caller's transaction so
// allocation writes can share its atomicity. Pool rows are locked for the
// duration of the transaction.
func transferCapacity(tx *gorm.DB, delta, activeAssigned, systemTotal int) (PoolTotals, error) {
	var reserved, active, inactive NodePool

	// Locked in a fixed order so concurrent transfers cannot deadlock.
	for _, p := range []struct {
		status string
		dest   *NodePool
	}{
		{"active", &active},
		{"inactive", &inactive},
		{"reserved", &reserved},
	} {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(p.dest, "status = ?", p.status)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return PoolTotals{}, ErrPoolNotFound
			}

			return PoolTotals{}, result.Error
		}
	}

	if delta == 0 {
		return PoolTotals{
			Active:   activeAssigned,
			Reserved: reserved.TotalNodes,
			Inactive: inactive.TotalNodes,
		}, nil
	}

	newReserved := reserved.TotalNodes - delta
	newActive := activeAssigned + delta
	if delta > 0 && newReserved < 0 {
		return PoolTotals{}, ErrCapacityExceeded
	}
	if delta < 0 && newActive < 0 {
		return PoolTotals{}, ErrCapacityExceeded
	}

	if newActive+newReserved+inactive.TotalNodes != systemTotal {
		return PoolTotals{}, ErrInvariantViolation
	}

	now := time.Now().UTC()

	reserved.TotalNodes = newReserved
	reserved.DateUpdated = now
	if err := tx.Save(&reserved).Error; err != nil {
		return PoolTotals{}, err
	}

	active.TotalNodes = newActive
	active.DateUpdated = now
	if err := tx.Save(&active).Error; err != nil {
		return PoolTotals{}, err
	}

	return PoolTotals{
		Active:   newActive,
		Reserved: newReserved,
		Inactive: inactive.TotalNodes,
	}, nil
}

func (d *NodeDAO) GetAllocation(ctx context.Context, userID uint) (UserNode, error) {
	var node UserNode

	result := d.db.WithContext(ctx).First(&node, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return UserNode{}, ErrAllocationNotFound
		}

		return UserNode{}, result.Error
	}

	return node, nil
}

func (d *NodeDAO) GetAllAllocations(ctx context.Context) ([]UserNode, error) {
	var nodes []UserNode

	result := d.db.WithContext(ctx).Order("user_id").Find(&nodes)
	if result.Error != nil {
		return nil, result.Error
	}

	return nodes, nil
}

func (d *NodeDAO) SumAssigned(ctx context.Context) (int, error) {
	var total int

	result := d.db.WithContext(ctx).
		Model(&UserNode{}).
		Select("COALESCE(SUM(nodes_assigned), 0)").
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}

// SetAllocation writes a user's node allocation and the matching capacity
// transfer as one transaction. The new allocation is bounded by the combined
// capacity of all three pools.
func (d *NodeDAO) SetAllocation(ctx context.Context, userID uint, newUnits, systemTotal int) (UserNode, error) {
	var saved UserNode

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing UserNode
		current := 0

		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&existing, "user_id = ?", userID)
		switch {
		case result.Error == nil:
			current = existing.NodesAssigned
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			// First allocation for this user.
		default:
			return result.Error
		}

		delta := newUnits - current
		if delta < 0 && -delta > current {
			return ErrInvalidAllocation
		}

		var sumAssigned int
		if err := tx.Model(&UserNode{}).
			Select("COALESCE(SUM(nodes_assigned), 0)").
			Scan(&sumAssigned).Error; err != nil {
			return err
		}

		var available int
		if err := tx.Model(&NodePool{}).
			Select("COALESCE(SUM(total_nodes), 0)").
			Scan(&available).Error; err != nil {
			return err
		}

		if sumAssigned+delta > available {
			return ErrCapacityExceeded
		}

		if _, err := transferCapacity(tx, delta, sumAssigned, systemTotal); err != nil {
			return err
		}

		if existing.ID == 0 {
			saved = UserNode{
				UserID:        userID,
				NodesAssigned: newUnits,
				DateAssigned:  time.Now().UTC(),
			}
			return tx.Create(&saved).Error
		}

		existing.NodesAssigned = newUnits
		saved = existing
		return tx.Save(&existing).Error
	})
	if err != nil {
		return UserNode{}, err
	}

	return saved, nil
}

// DeleteAllocation drops the user's row without returning the capacity to the
// reserved pool. The admin pool editor is the way to rebalance afterwards.
func (d *NodeDAO) DeleteAllocation(ctx context.Context, userID uint) error {
	result := d.db.WithContext(ctx).Delete(&UserNode{}, "user_id = ?", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAllocationNotFound
	}

	return nil
}
