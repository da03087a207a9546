package model

import (
	"time"

	"gorm.io/datatypes"
)

// PlayerCharacter is a user-owned hero usable across campaign instances.
type PlayerCharacter struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerUserID        int64          `gorm:"index:idx_pc_owner;not null" json:"ownerUserId"`
	Name               string         `gorm:"size:100;not null" json:"name"`
	Race               string         `gorm:"size:64;not null" json:"race"`
	Class              string         `gorm:"size:64;not null" json:"class"`
	Level              int            `gorm:"default:1" json:"level"`
	MaxHP              int            `gorm:"not null" json:"maxHp"`
	BaseStats          datatypes.JSON `json:"baseStats"` // {STR,DEX,CON,INT,WIS,CHA}
	Abilities          datatypes.JSON `json:"abilities"`
	Background         string         `gorm:"type:text" json:"background"`
	Biography          string         `gorm:"type:text" json:"biography"`
	Titles             datatypes.JSON `json:"titles"`
	GlobalAchievements datatypes.JSON `json:"globalAchievements"`
	PortraitURL        string         `gorm:"size:512" json:"portraitUrl"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}
