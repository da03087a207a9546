package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssetPackHandler handles asset pack REST endpoints.
type AssetPackHandler struct {
	db *gorm.DB
}

// NewAssetPackHandler creates a new AssetPackHandler.
func NewAssetPackHandler(db *gorm.DB) *AssetPackHandler {
	return &AssetPackHandler{db: db}
}

type createAssetPackRequest struct {
	Name                           string         `json:"name" binding:"required,min=1,max=100"`
	Description                    string         `json:"description"`
	Type                           string         `json:"type" binding:"required,oneof=npc bestiary item location mixed"`
	IncludedNpcTemplateIDs         []int64        `json:"includedNpcTemplateIds"`
	IncludedBestiaryEntryIDs       []int64        `json:"includedBestiaryEntryIds"`
	IncludedItemTemplateIDs        []int64        `json:"includedItemTemplateIds"`
	IncludedEnvironmentTemplateIDs []int64        `json:"includedEnvironmentTemplateIds"`
	IsPaid                         bool    `json:"isPaid"`
	Price                          int64   `json:"price" binding:"omitempty,min=0"`
	Currency                       string  `json:"currency" binding:"omitempty,len=3"`
}

func idsJSON(ids []int64) datatypes.JSON {
	if ids == nil {
		ids = []int64{}
	}
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}

// Create handles POST /api/asset-packs.
func (h *AssetPackHandler) Create(c *gin.Context) {
	var req createAssetPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	pack := &model.AssetPack{
		AuthorUserID:                   mw.GetUserID(c),
		Name:                           req.Name,
		Description:                    req.Description,
		Type:                           req.Type,
		IncludedNpcTemplateIDs:         idsJSON(req.IncludedNpcTemplateIDs),
		IncludedBestiaryEntryIDs:       idsJSON(req.IncludedBestiaryEntryIDs),
		IncludedItemTemplateIDs:        idsJSON(req.IncludedItemTemplateIDs),
		IncludedEnvironmentTemplateIDs: idsJSON(req.IncludedEnvironmentTemplateIDs),
		IsPaid:                         req.IsPaid,
		Price:                          req.Price,
		Currency:                       req.Currency,
	}
	if pack.Currency == "" {
		pack.Currency = "USD"
	}
	if err := h.db.Create(pack).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, pack)
}

// ListPublic handles GET /api/asset-packs/public.
func (h *AssetPackHandler) ListPublic(c *gin.Context) {
	page, limit, offset := pagination(c)

	q := h.db.Model(&model.AssetPack{})
	if packType := c.Query("type"); packType != "" {
		q = q.Where("type = ?", packType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	var packs []model.AssetPack
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&packs).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"packs": packs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages(total, limit),
		},
	})
}

// Get handles GET /api/asset-packs/:id.
func (h *AssetPackHandler) Get(c *gin.Context) {
	id, okID := parseID(c, "id")
	if !okID {
		return
	}
	var pack model.AssetPack
	if err := h.db.First(&pack, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Asset pack not found")
		return
	}
	ok(c, http.StatusOK, pack)
}

func decodeIDs(raw datatypes.JSON) []int64 {
	var ids []int64
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &ids)
	}
	return ids
}

// appendEntries merges new entries into a JSON array column value.
func appendEntries(raw datatypes.JSON, entries []map[string]interface{}) (datatypes.JSON, error) {
	existing := []map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, err
		}
	}
	merged, err := json.Marshal(append(existing, entries...))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(merged), nil
}

// Import handles POST /api/asset-packs/:id/import-into-campaign-def/:defId.
// Pack contents become campaign-local entries referencing the source
// templates; item templates are referenced, not copied.
func (h *AssetPackHandler) Import(c *gin.Context) {
	userID := mw.GetUserID(c)
	packID, okID := parseID(c, "id")
	if !okID {
		return
	}
	defID, okID := parseID(c, "defId")
	if !okID {
		return
	}

	var pack model.AssetPack
	if err := h.db.First(&pack, packID).Error; err != nil {
		fail(c, http.StatusNotFound, "Asset pack not found")
		return
	}

	var def model.CampaignDefinition
	if err := h.db.First(&def, defID).Error; err != nil {
		fail(c, http.StatusNotFound, "Campaign definition not found")
		return
	}
	if def.AuthorUserID != userID {
		fail(c, http.StatusForbidden, "You can only import packs into your own campaigns")
		return
	}

	now := time.Now().UnixMilli()

	npcIDs := decodeIDs(pack.IncludedNpcTemplateIDs)
	importedNpcs := make([]map[string]interface{}, 0, len(npcIDs))
	for i, templateID := range npcIDs {
		importedNpcs = append(importedNpcs, map[string]interface{}{
			"id":         fmt.Sprintf("imported_npc_%d_%d_%d", templateID, now, i),
			"templateId": templateID,
			"name":       fmt.Sprintf("Imported NPC %d", i+1),
			"role":       "imported",
		})
	}

	bestiaryIDs := decodeIDs(pack.IncludedBestiaryEntryIDs)
	importedEncounters := make([]map[string]interface{}, 0, len(bestiaryIDs))
	for i, bestiaryID := range bestiaryIDs {
		importedEncounters = append(importedEncounters, map[string]interface{}{
			"id":               fmt.Sprintf("imported_encounter_%d_%d_%d", bestiaryID, now, i),
			"name":             fmt.Sprintf("Imported Encounter %d", i+1),
			"bestiaryEntryIds": []int64{bestiaryID},
		})
	}

	envIDs := decodeIDs(pack.IncludedEnvironmentTemplateIDs)
	importedLocations := make([]map[string]interface{}, 0, len(envIDs))
	for i, templateID := range envIDs {
		importedLocations = append(importedLocations, map[string]interface{}{
			"id":         fmt.Sprintf("imported_location_%d_%d_%d", templateID, now, i),
			"templateId": templateID,
			"name":       fmt.Sprintf("Imported Location %d", i+1),
			"type":       "other",
		})
	}

	npcs, err := appendEntries(def.Npcs, importedNpcs)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	encounters, err := appendEntries(def.Encounters, importedEncounters)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	locations, err := appendEntries(def.Locations, importedLocations)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.db.Model(&def).Updates(map[string]interface{}{
		"npcs":       npcs,
		"encounters": encounters,
		"locations":  locations,
	}).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"imported": gin.H{
			"npcs":       len(importedNpcs),
			"encounters": len(importedEncounters),
			"locations":  len(importedLocations),
			"items":      len(decodeIDs(pack.IncludedItemTemplateIDs)),
		},
		"message": "Asset pack imported successfully",
	})
}
