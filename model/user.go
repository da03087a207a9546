package model

import "time"

// Plan names mirror the billing tiers exposed to clients.
const (
	PlanFree    = "free"
	PlanCreator = "creator"
	PlanGuild   = "guild"
)

// User represents a registered creator/player account.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash string    `gorm:"size:64;not null" json:"-"`
	DisplayName  string    `gorm:"size:50;not null" json:"displayName"`
	Plan         string    `gorm:"size:16;default:'free'" json:"plan"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
