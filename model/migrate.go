package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&User{},
	&World{},
	&AssetPack{},
	&NpcTemplate{},
	&BestiaryEntry{},
	&ItemTemplate{},
	&EnvironmentTemplate{},
	&CampaignDefinition{},
	&PlayerCharacter{},
	&CampaignInstance{},
	&BranchCounter{},
	&Event{},
	&Snapshot{},
	&Purchase{},
	&AuditLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
