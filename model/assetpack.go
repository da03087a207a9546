package model

import (
	"time"

	"gorm.io/datatypes"
)

// AssetPack bundles templates for reuse or sale.
type AssetPack struct {
	ID                             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorUserID                   int64          `gorm:"index:idx_pack_author;not null" json:"authorUserId"`
	Name                           string         `gorm:"size:100;not null" json:"name"`
	Description                    string         `gorm:"type:text" json:"description"`
	Type                           string         `gorm:"size:16;not null" json:"type"` // npc|bestiary|item|location|mixed
	IncludedNpcTemplateIDs         datatypes.JSON `json:"includedNpcTemplateIds"`
	IncludedBestiaryEntryIDs       datatypes.JSON `json:"includedBestiaryEntryIds"`
	IncludedItemTemplateIDs        datatypes.JSON `json:"includedItemTemplateIds"`
	IncludedEnvironmentTemplateIDs datatypes.JSON `json:"includedEnvironmentTemplateIds"`
	IsPaid                         bool           `gorm:"default:false" json:"isPaid"`
	Price                          int64          `gorm:"default:0" json:"price"` // cents
	Currency                       string         `gorm:"size:3;default:'USD'" json:"currency"`
	CreatedAt                      time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                      time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}
