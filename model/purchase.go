package model

import "time"

// AssetType names a purchasable asset kind.
type AssetType = string

const (
	AssetCampaign  AssetType = "campaign"
	AssetWorld     AssetType = "world"
	AssetAssetPack AssetType = "assetPack"
)

// Purchase records that a user owns a paid asset. Existence is the
// entitlement; the row itself never changes after creation.
type Purchase struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerUserID      int64     `gorm:"uniqueIndex:idx_purchase_owner;index:idx_purchase_buyer;not null" json:"buyerUserId"`
	AssetType        string    `gorm:"uniqueIndex:idx_purchase_owner;size:16;not null" json:"assetType"`
	AssetID          int64     `gorm:"uniqueIndex:idx_purchase_owner;not null" json:"assetId"`
	PricePaid        int64     `gorm:"not null" json:"pricePaid"` // cents
	Currency         string    `gorm:"size:3;default:'USD'" json:"currency"`
	Provider         string    `gorm:"size:32;not null" json:"provider"`
	ProviderChargeID string    `gorm:"size:64;not null" json:"providerChargeId"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
