package model

import (
	"time"

	"gorm.io/datatypes"
)

// NpcTemplate is a reusable non-player character archetype.
type NpcTemplate struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorUserID  int64          `gorm:"index:idx_npc_author;not null" json:"authorUserId"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Race          string         `gorm:"size:64;not null" json:"race"`
	Role          string         `gorm:"size:64;not null" json:"role"`
	Faction       string         `gorm:"size:64" json:"faction"`
	BaselineLevel int            `gorm:"default:1" json:"baselineLevel"`
	Personality   datatypes.JSON `json:"personality"` // {traits,motivations,fears,quirks}
	StatBlock     datatypes.JSON `json:"statBlock"`
	Tags          datatypes.JSON `json:"tags"`
	Backstory     string         `gorm:"type:text" json:"backstory"`
	DefaultTitles datatypes.JSON `json:"defaultTitles"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BestiaryEntry is a monster/creature stat block.
type BestiaryEntry struct {
	ID                    int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorUserID          int64          `gorm:"index:idx_bestiary_author;not null" json:"authorUserId"`
	Name                  string         `gorm:"size:100;not null" json:"name"`
	Category              string         `gorm:"size:64;not null" json:"category"`
	ChallengeRating       string         `gorm:"size:16" json:"challengeRating"`
	RecommendedLevelMin   int            `gorm:"default:1" json:"recommendedLevelMin"`
	RecommendedLevelMax   int            `gorm:"default:20" json:"recommendedLevelMax"`
	StatBlock             datatypes.JSON `json:"statBlock"` // {hp,ac,speed,attacks,...}
	Tags                  datatypes.JSON `json:"tags"`
	Lore                  string         `gorm:"type:text" json:"lore"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ItemTemplate is a reusable item definition.
type ItemTemplate struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorUserID int64          `gorm:"index:idx_item_author;not null" json:"authorUserId"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Category     string         `gorm:"size:16;not null" json:"category"` // weapon|armor|consumable|quest|misc
	Rarity       string         `gorm:"size:32" json:"rarity"`
	Description  string         `gorm:"type:text" json:"description"`
	Stats        datatypes.JSON `json:"stats"` // {attackBonus,damage,defense,charges,...}
	Tags         datatypes.JSON `json:"tags"`
	IsQuestItem  bool           `gorm:"default:false" json:"isQuestItem"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// EnvironmentTemplate is a reusable location definition.
type EnvironmentTemplate struct {
	ID              int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorUserID    int64          `gorm:"index:idx_env_author;not null" json:"authorUserId"`
	Name            string         `gorm:"size:100;not null" json:"name"`
	Type            string         `gorm:"size:16;not null" json:"type"` // tavern|shop|dungeon|...
	DefaultLocation string         `gorm:"size:100" json:"defaultLocation"`
	Tags            datatypes.JSON `json:"tags"`
	Description     string         `gorm:"type:text" json:"description"`
	DefaultState    datatypes.JSON `json:"defaultState"` // {isDestroyed,isLocked,isHidden,customFlags}
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}
