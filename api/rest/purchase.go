package rest

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/Dm-vYzion/StoryForge/audit"
	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PurchaseHandler handles the stub marketplace checkout and entitlement
// queries. No real payment provider is wired; the purchase row is the
// entitlement.
type PurchaseHandler struct {
	db    *gorm.DB
	audit *audit.Service
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(db *gorm.DB, auditSvc *audit.Service) *PurchaseHandler {
	return &PurchaseHandler{db: db, audit: auditSvc}
}

type checkoutRequest struct {
	AssetType string `json:"assetType" binding:"required,oneof=campaign world assetPack"`
	AssetID   int64  `json:"assetId" binding:"required"`
}

// resolveAsset validates the asset exists and is actually for sale,
// returning its price. A false second return means a response has been
// written.
func (h *PurchaseHandler) resolveAsset(c *gin.Context, assetType string, assetID int64) (int64, bool) {
	switch assetType {
	case model.AssetCampaign:
		var def model.CampaignDefinition
		if err := h.db.First(&def, assetID).Error; err != nil {
			fail(c, http.StatusNotFound, "Campaign not found")
			return 0, false
		}
		if !def.IsPaid {
			fail(c, http.StatusBadRequest, "This campaign is free")
			return 0, false
		}
		return def.Price, true
	case model.AssetWorld:
		var world model.World
		if err := h.db.First(&world, assetID).Error; err != nil {
			fail(c, http.StatusNotFound, "World not found")
			return 0, false
		}
		if world.LicenseMode != model.LicensePaid {
			fail(c, http.StatusBadRequest, "This world does not require purchase")
			return 0, false
		}
		return world.LicensePrice, true
	case model.AssetAssetPack:
		var pack model.AssetPack
		if err := h.db.First(&pack, assetID).Error; err != nil {
			fail(c, http.StatusNotFound, "Asset pack not found")
			return 0, false
		}
		if !pack.IsPaid {
			fail(c, http.StatusBadRequest, "This asset pack is free")
			return 0, false
		}
		return pack.Price, true
	default:
		fail(c, http.StatusBadRequest, "Invalid asset type")
		return 0, false
	}
}

// Checkout handles POST /api/purchases/checkout.
func (h *PurchaseHandler) Checkout(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	price, okAsset := h.resolveAsset(c, req.AssetType, req.AssetID)
	if !okAsset {
		return
	}

	var existing model.Purchase
	err := h.db.Where("buyer_user_id = ? AND asset_type = ? AND asset_id = ?",
		userID, req.AssetType, req.AssetID).First(&existing).Error
	if err == nil {
		fail(c, http.StatusConflict, "You already own this asset")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	purchase := &model.Purchase{
		BuyerUserID:      userID,
		AssetType:        req.AssetType,
		AssetID:          req.AssetID,
		PricePaid:        price,
		Currency:         "USD",
		Provider:         "stub",
		ProviderChargeID: fmt.Sprintf("stub_%d_%06d", time.Now().UnixMilli(), rand.Intn(1000000)),
	}
	if err := h.db.Create(purchase).Error; err != nil {
		// The unique index backstops a concurrent double checkout.
		if isUniqueViolation(err) {
			fail(c, http.StatusConflict, "You already own this asset")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if h.audit != nil {
		h.audit.Log(audit.Entry{
			TraceID:  mw.GetTraceID(c),
			UserID:   &userID,
			Action:   "purchase.checkout",
			Request:  req,
			Response: gin.H{"purchaseId": purchase.ID, "pricePaid": price},
			IP:       c.ClientIP(),
		})
	}

	ok(c, http.StatusCreated, gin.H{
		"purchase": purchase,
		"message":  "Purchase recorded successfully (stub - no real payment)",
	})
}

// MyAssets handles GET /api/purchases/my-assets: owned assets grouped
// by type plus the raw purchase history.
func (h *PurchaseHandler) MyAssets(c *gin.Context) {
	userID := mw.GetUserID(c)

	var purchases []model.Purchase
	if err := h.db.Where("buyer_user_id = ?", userID).
		Order("created_at desc").Find(&purchases).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	var campaignIDs, worldIDs, packIDs []int64
	for _, p := range purchases {
		switch p.AssetType {
		case model.AssetCampaign:
			campaignIDs = append(campaignIDs, p.AssetID)
		case model.AssetWorld:
			worldIDs = append(worldIDs, p.AssetID)
		case model.AssetAssetPack:
			packIDs = append(packIDs, p.AssetID)
		}
	}

	campaigns := []model.CampaignDefinition{}
	if len(campaignIDs) > 0 {
		h.db.Where("id IN ?", campaignIDs).Find(&campaigns)
	}
	worlds := []model.World{}
	if len(worldIDs) > 0 {
		h.db.Where("id IN ?", worldIDs).Find(&worlds)
	}
	packs := []model.AssetPack{}
	if len(packIDs) > 0 {
		h.db.Where("id IN ?", packIDs).Find(&packs)
	}

	ok(c, http.StatusOK, gin.H{
		"campaigns":       campaigns,
		"worlds":          worlds,
		"assetPacks":      packs,
		"purchaseHistory": purchases,
	})
}

// Check handles GET /api/purchases/check/:assetType/:assetId.
func (h *PurchaseHandler) Check(c *gin.Context) {
	userID := mw.GetUserID(c)
	assetType := c.Param("assetType")
	assetID, err := strconv.ParseInt(c.Param("assetId"), 10, 64)
	if err != nil || assetID <= 0 {
		fail(c, http.StatusBadRequest, "Invalid id")
		return
	}

	var purchase model.Purchase
	err = h.db.Where("buyer_user_id = ? AND asset_type = ? AND asset_id = ?",
		userID, assetType, assetID).First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ok(c, http.StatusOK, gin.H{"owned": false, "purchase": nil})
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, gin.H{"owned": true, "purchase": purchase})
}
