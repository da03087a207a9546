package model

import (
	"time"

	"gorm.io/datatypes"
)

// Snapshot is a point-in-time checkpoint of play-through state for one
// (instance, branch) at a given event sequence. The state document is
// computed by the client; the server only checks its shape.
type Snapshot struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	InstanceID int64          `gorm:"index:idx_snapshot_instance;not null" json:"instanceId"`
	BranchID   string         `gorm:"index:idx_snapshot_branch;size:100;not null" json:"branchId"`
	Sequence   int64          `gorm:"not null" json:"sequence"`
	State      datatypes.JSON `gorm:"not null" json:"state"`
	CreatedAt  time.Time      `gorm:"autoCreateTime:milli" json:"createdAt"`
}
