package domain

import "time"

// PoolStatus names one of the three fixed capacity pools. Together the three
// pools partition DefaultSystemTotalNodes allocation units.
type PoolStatus string

const (
	PoolActive   PoolStatus = "active"
	PoolReserved PoolStatus = "reserved"
	PoolInactive PoolStatus = "inactive"
)

// DefaultSystemTotalNodes is the fixed system-wide node capacity. The three
// pool totals must sum to this value at all times.
const DefaultSystemTotalNodes = 20000

type NodePool struct {
	ID          uint       `json:"node_id"`
	Status      PoolStatus `json:"status"`
	TotalNodes  int        `json:"total_nodes"`
	DailyReward *int       `json:"daily_reward,omitempty"`
	DateUpdated time.Time  `json:"date_updated"`
}

// PoolSnapshot is the result of a capacity transfer: the per-pool totals after
// the move.
type PoolSnapshot struct {
	Active   int `json:"active_nodes"`
	Reserved int `json:"reserved_nodes"`
	Inactive int `json:"inactive_nodes"`
}

func (s PoolSnapshot) Total() int {
	return s.Active + s.Reserved + s.Inactive
}

// NodePoolPatch carries a partial pool update. Nil fields are left untouched.
type NodePoolPatch struct {
	TotalNodes  *int
	DailyReward *int
}

type UserNode struct {
	ID            uint      `json:"user_node_id"`
	UserID        uint      `json:"user_id"`
	NodesAssigned int       `json:"nodes_assigned"`
	DateAssigned  time.Time `json:"date_assigned"`
}
