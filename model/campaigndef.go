package model

import (
	"time"

	"gorm.io/datatypes"
)

// Visibility controls where a campaign definition is listed.
type Visibility = string

const (
	VisibilityPrivate     Visibility = "private"
	VisibilityPublic      Visibility = "public"
	VisibilityMarketplace Visibility = "marketplace"
)

// CampaignDefinition is an authored content bundle: quests, NPCs,
// encounters and locations, optionally rooted in a world.
type CampaignDefinition struct {
	ID                  int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorUserID        int64          `gorm:"index:idx_def_author;not null" json:"authorUserId"`
	WorldID             *int64         `gorm:"index:idx_def_world" json:"worldId"`
	Title               string         `gorm:"size:200;not null" json:"title"`
	ShortDescription    string         `gorm:"size:500" json:"shortDescription"`
	LongDescription     string         `gorm:"type:text" json:"longDescription"`
	Tags                datatypes.JSON `json:"tags"`
	BaseTruths          datatypes.JSON `json:"baseTruths"`
	RecommendedLevelMin int            `gorm:"default:1" json:"recommendedLevelMin"`
	RecommendedLevelMax int            `gorm:"default:20" json:"recommendedLevelMax"`
	Visibility          string         `gorm:"size:16;default:'private'" json:"visibility"`
	IsPaid              bool           `gorm:"default:false" json:"isPaid"`
	Price               int64          `gorm:"default:0" json:"price"` // cents
	Currency            string         `gorm:"size:3;default:'USD'" json:"currency"`
	Quests              datatypes.JSON `json:"quests"`     // [{id,name,objectives,...}]
	Npcs                datatypes.JSON `json:"npcs"`       // [{id,templateId,name,role,...}]
	Encounters          datatypes.JSON `json:"encounters"` // [{id,name,bestiaryEntryIds,...}]
	Locations           datatypes.JSON `json:"locations"`  // [{id,templateId,name,type,...}]
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}
