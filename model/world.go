package model

import (
	"time"

	"gorm.io/datatypes"
)

// LicenseMode controls how a world may be reused by other authors.
type LicenseMode = string

const (
	LicenseOpen       LicenseMode = "open"
	LicensePaid       LicenseMode = "paid"
	LicenseInviteOnly LicenseMode = "invite-only"
)

// World is an authored setting: shared truths, tags, and linked templates
// that campaign definitions build on.
type World struct {
	ID                           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorUserID                 int64          `gorm:"index:idx_world_author;not null" json:"authorUserId"`
	Name                         string         `gorm:"size:100;not null" json:"name"`
	Slug                         string         `gorm:"uniqueIndex;size:50;not null" json:"slug"`
	Description                  string         `gorm:"type:text" json:"description"`
	BaseTruths                   datatypes.JSON `json:"baseTruths"`
	DefaultTags                  datatypes.JSON `json:"defaultTags"` // ["grimdark","naval"]
	LinkedNpcTemplateIDs         datatypes.JSON `json:"linkedNpcTemplateIds"`
	LinkedBestiaryEntryIDs       datatypes.JSON `json:"linkedBestiaryEntryIds"`
	LinkedItemTemplateIDs        datatypes.JSON `json:"linkedItemTemplateIds"`
	LinkedEnvironmentTemplateIDs datatypes.JSON `json:"linkedEnvironmentTemplateIds"`
	LinkedAssetPackIDs           datatypes.JSON `json:"linkedAssetPackIds"`
	LicenseMode                  string         `gorm:"size:16;default:'open'" json:"licenseMode"`
	LicensePrice                 int64          `gorm:"default:0" json:"licensePrice"` // cents
	CreatedAt                    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}
