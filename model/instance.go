package model

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultBranch is the branch every play-through starts on.
const DefaultBranch = "root"

// CampaignInstance is one user's play-through of a campaign definition
// along a named branch.
type CampaignInstance struct {
	ID                int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64          `gorm:"index:idx_instance_user;not null" json:"userId"`
	CampaignDefID     int64          `gorm:"index:idx_instance_def;not null" json:"campaignDefId"`
	WorldID           *int64         `json:"worldId"`
	BranchID          string         `gorm:"size:100;not null;default:'root'" json:"branchId"`
	Title             string         `gorm:"size:200;not null" json:"title"`
	SelectedPcIDs     datatypes.JSON `json:"selectedPcIds"` // [int64,...]
	CurrentSnapshotID *int64         `json:"currentSnapshotId"`
	LastPlayedAt      time.Time      `gorm:"index:idx_instance_played" json:"lastPlayedAt"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BranchCounter holds the last allocated event sequence for one
// (instance, branch) timeline. Incremented atomically in the same
// transaction that inserts the events, so concurrent appends can never
// hand out the same sequence twice.
type BranchCounter struct {
	InstanceID   int64  `gorm:"primaryKey;autoIncrement:false" json:"instanceId"`
	BranchID     string `gorm:"primaryKey;size:100" json:"branchId"`
	LastSequence int64  `gorm:"not null;default:0" json:"lastSequence"`
}

func (BranchCounter) TableName() string { return "branch_counters" }
