package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dm-vYzion/StoryForge/cache"
	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CampaignDefHandler handles campaign definition REST endpoints.
type CampaignDefHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewCampaignDefHandler creates a new CampaignDefHandler.
func NewCampaignDefHandler(db *gorm.DB, c cache.Cache, logger *zap.Logger) *CampaignDefHandler {
	return &CampaignDefHandler{db: db, cache: c, logger: logger}
}

const popularZKey = "ranking:campaigns"

type createCampaignDefRequest struct {
	WorldID             *int64         `json:"worldId"`
	Title               string         `json:"title" binding:"required,min=1,max=200"`
	ShortDescription    string         `json:"shortDescription" binding:"max=500"`
	LongDescription     string         `json:"longDescription"`
	Tags                datatypes.JSON `json:"tags"`
	BaseTruths          datatypes.JSON `json:"baseTruths"`
	RecommendedLevelMin int            `json:"recommendedLevelMin" binding:"omitempty,min=1,max=20"`
	RecommendedLevelMax int            `json:"recommendedLevelMax" binding:"omitempty,min=1,max=20"`
	Visibility          string         `json:"visibility" binding:"omitempty,oneof=private public marketplace"`
	IsPaid              bool           `json:"isPaid"`
	Price               int64          `json:"price" binding:"omitempty,min=0"`
	Currency            string         `json:"currency" binding:"omitempty,len=3"`
	Quests              datatypes.JSON `json:"quests"`
	Npcs                datatypes.JSON `json:"npcs"`
	Encounters          datatypes.JSON `json:"encounters"`
	Locations           datatypes.JSON `json:"locations"`
}

// hasPurchase reports whether the user owns (assetType, assetID).
func hasPurchase(db *gorm.DB, userID int64, assetType string, assetID int64) (bool, error) {
	var purchase model.Purchase
	err := db.Where("buyer_user_id = ? AND asset_type = ? AND asset_id = ?",
		userID, assetType, assetID).First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create handles POST /api/campaign-defs. Building on a paid world
// requires a license unless the caller authored the world.
func (h *CampaignDefHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req createCampaignDefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.WorldID != nil {
		var world model.World
		if err := h.db.First(&world, *req.WorldID).Error; err != nil {
			fail(c, http.StatusNotFound, "World not found")
			return
		}
		if world.LicenseMode == model.LicensePaid && world.AuthorUserID != userID {
			owned, err := hasPurchase(h.db, userID, model.AssetWorld, world.ID)
			if err != nil {
				fail(c, http.StatusInternalServerError, "internal error")
				return
			}
			if !owned {
				fail(c, http.StatusForbidden, "You need to purchase a license for this world")
				return
			}
		}
	}

	def := &model.CampaignDefinition{
		AuthorUserID:        userID,
		WorldID:             req.WorldID,
		Title:               req.Title,
		ShortDescription:    req.ShortDescription,
		LongDescription:     req.LongDescription,
		Tags:                req.Tags,
		BaseTruths:          req.BaseTruths,
		RecommendedLevelMin: req.RecommendedLevelMin,
		RecommendedLevelMax: req.RecommendedLevelMax,
		Visibility:          req.Visibility,
		IsPaid:              req.IsPaid,
		Price:               req.Price,
		Currency:            req.Currency,
		Quests:              req.Quests,
		Npcs:                req.Npcs,
		Encounters:          req.Encounters,
		Locations:           req.Locations,
	}
	if def.RecommendedLevelMin == 0 {
		def.RecommendedLevelMin = 1
	}
	if def.RecommendedLevelMax == 0 {
		def.RecommendedLevelMax = 20
	}
	if def.Visibility == "" {
		def.Visibility = model.VisibilityPrivate
	}
	if def.Currency == "" {
		def.Currency = "USD"
	}

	if err := h.db.Create(def).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, def)
}

// ListPublic handles GET /api/campaign-defs/public.
func (h *CampaignDefHandler) ListPublic(c *gin.Context) {
	page, limit, offset := pagination(c)

	q := h.db.Model(&model.CampaignDefinition{}).
		Where("visibility IN ?", []string{model.VisibilityPublic, model.VisibilityMarketplace})

	if worldID := c.Query("worldId"); worldID != "" {
		q = q.Where("world_id = ?", worldID)
	}
	if minLevel := c.Query("minLevel"); minLevel != "" {
		q = q.Where("recommended_level_min >= ?", minLevel)
	}
	if maxLevel := c.Query("maxLevel"); maxLevel != "" {
		q = q.Where("recommended_level_max <= ?", maxLevel)
	}
	if tags := c.Query("tags"); tags != "" {
		tagQ := h.db.Session(&gorm.Session{NewDB: true})
		clause := tagQ
		for i, tag := range strings.Split(tags, ",") {
			like := "%\"" + strings.TrimSpace(tag) + "\"%"
			if i == 0 {
				clause = tagQ.Where("tags LIKE ?", like)
			} else {
				clause = clause.Or("tags LIKE ?", like)
			}
		}
		q = q.Where(clause)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	var campaigns []model.CampaignDefinition
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&campaigns).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"campaigns": campaigns,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages(total, limit),
		},
	})
}

// Mine handles GET /api/campaign-defs/mine.
func (h *CampaignDefHandler) Mine(c *gin.Context) {
	var campaigns []model.CampaignDefinition
	if err := h.db.Where("author_user_id = ?", mw.GetUserID(c)).
		Order("updated_at desc").Find(&campaigns).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, campaigns)
}

// teaserView is the limited shape returned for paid campaigns the
// caller has not purchased.
func teaserView(def *model.CampaignDefinition) gin.H {
	return gin.H{
		"id":                  def.ID,
		"title":               def.Title,
		"shortDescription":    def.ShortDescription,
		"tags":                def.Tags,
		"recommendedLevelMin": def.RecommendedLevelMin,
		"recommendedLevelMax": def.RecommendedLevelMax,
		"isPaid":              true,
		"price":               def.Price,
		"currency":            def.Currency,
		"requiresPurchase":    true,
	}
}

// Get handles GET /api/campaign-defs/:id. Private campaigns are only
// visible to their author; paid campaigns show a teaser until purchased.
func (h *CampaignDefHandler) Get(c *gin.Context) {
	defID, okID := parseID(c, "id")
	if !okID {
		return
	}

	var def model.CampaignDefinition
	if err := h.db.First(&def, defID).Error; err != nil {
		fail(c, http.StatusNotFound, "Campaign definition not found")
		return
	}

	userID := mw.GetUserID(c) // 0 when unauthenticated

	if def.Visibility == model.VisibilityPrivate && def.AuthorUserID != userID {
		fail(c, http.StatusForbidden, "This campaign is private")
		return
	}

	if def.IsPaid && userID != 0 && def.AuthorUserID != userID {
		owned, err := hasPurchase(h.db, userID, model.AssetCampaign, def.ID)
		if err != nil {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
		if !owned {
			ok(c, http.StatusOK, teaserView(&def))
			return
		}
	}

	ok(c, http.StatusOK, def)
}

type updateCampaignDefRequest struct {
	Title               *string         `json:"title" binding:"omitempty,min=1,max=200"`
	ShortDescription    *string         `json:"shortDescription" binding:"omitempty,max=500"`
	LongDescription     *string         `json:"longDescription"`
	Tags                *datatypes.JSON `json:"tags"`
	BaseTruths          *datatypes.JSON `json:"baseTruths"`
	RecommendedLevelMin *int            `json:"recommendedLevelMin" binding:"omitempty,min=1,max=20"`
	RecommendedLevelMax *int            `json:"recommendedLevelMax" binding:"omitempty,min=1,max=20"`
	Visibility          *string         `json:"visibility" binding:"omitempty,oneof=private public marketplace"`
	IsPaid              *bool           `json:"isPaid"`
	Price               *int64          `json:"price" binding:"omitempty,min=0"`
	Quests              *datatypes.JSON `json:"quests"`
	Npcs                *datatypes.JSON `json:"npcs"`
	Encounters          *datatypes.JSON `json:"encounters"`
	Locations           *datatypes.JSON `json:"locations"`
}

// Patch handles PATCH /api/campaign-defs/:id (author only).
func (h *CampaignDefHandler) Patch(c *gin.Context) {
	userID := mw.GetUserID(c)
	defID, okID := parseID(c, "id")
	if !okID {
		return
	}

	var def model.CampaignDefinition
	if err := h.db.First(&def, defID).Error; err != nil {
		fail(c, http.StatusNotFound, "Campaign definition not found")
		return
	}
	if def.AuthorUserID != userID {
		fail(c, http.StatusForbidden, "You can only edit your own campaigns")
		return
	}

	var req updateCampaignDefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.LongDescription != nil {
		updates["long_description"] = *req.LongDescription
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.BaseTruths != nil {
		updates["base_truths"] = *req.BaseTruths
	}
	if req.RecommendedLevelMin != nil {
		updates["recommended_level_min"] = *req.RecommendedLevelMin
	}
	if req.RecommendedLevelMax != nil {
		updates["recommended_level_max"] = *req.RecommendedLevelMax
	}
	if req.Visibility != nil {
		updates["visibility"] = *req.Visibility
	}
	if req.IsPaid != nil {
		updates["is_paid"] = *req.IsPaid
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Quests != nil {
		updates["quests"] = *req.Quests
	}
	if req.Npcs != nil {
		updates["npcs"] = *req.Npcs
	}
	if req.Encounters != nil {
		updates["encounters"] = *req.Encounters
	}
	if req.Locations != nil {
		updates["locations"] = *req.Locations
	}

	if len(updates) > 0 {
		if err := h.db.Model(&def).Updates(updates).Error; err != nil {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
	}

	var updated model.CampaignDefinition
	if err := h.db.First(&updated, defID).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, updated)
}

// popularEntry is one row of the popularity listing.
type popularEntry struct {
	CampaignDef model.CampaignDefinition `json:"campaignDef"`
	Instances   int64                    `json:"instances"`
}

// Popular handles GET /api/campaign-defs/popular: public campaigns
// ranked by how many play-throughs exist. Served from the cached sorted
// set when warm, falling back to a direct count.
func (h *CampaignDefHandler) Popular(c *gin.Context) {
	limit := 10
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	ctx := c.Request.Context()
	members, err := h.cache.ZRevRange(ctx, popularZKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		entries := make([]popularEntry, 0, len(members))
		for _, m := range members {
			defID, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			var def model.CampaignDefinition
			if err := h.db.First(&def, defID).Error; err != nil {
				continue
			}
			score, _ := h.cache.ZScore(ctx, popularZKey, m)
			entries = append(entries, popularEntry{CampaignDef: def, Instances: int64(score)})
		}
		ok(c, http.StatusOK, entries)
		return
	}

	entries, err := h.computePopular(ctx, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, entries)
}

// computePopular ranks public campaigns by instance count from the
// database and refreshes the cached sorted set.
func (h *CampaignDefHandler) computePopular(ctx context.Context, limit int) ([]popularEntry, error) {
	type row struct {
		CampaignDefID int64
		N             int64
	}
	var rows []row
	err := h.db.Model(&model.CampaignInstance{}).
		Select("campaign_def_id, COUNT(*) as n").
		Group("campaign_def_id").
		Order("n desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]popularEntry, 0, len(rows))
	for _, r := range rows {
		var def model.CampaignDefinition
		if err := h.db.First(&def, r.CampaignDefID).Error; err != nil {
			continue
		}
		if def.Visibility == model.VisibilityPrivate {
			continue
		}
		entries = append(entries, popularEntry{CampaignDef: def, Instances: r.N})
		_ = h.cache.ZAdd(ctx, popularZKey, float64(r.N), strconv.FormatInt(def.ID, 10))
	}
	return entries, nil
}

// RefreshPopularRanking recomputes the popularity sorted set. Run
// periodically by the scheduler.
func (h *CampaignDefHandler) RefreshPopularRanking(topEntries int) {
	if topEntries <= 0 {
		topEntries = 50
	}
	if _, err := h.computePopular(context.Background(), topEntries); err != nil {
		h.logger.Error("popular ranking refresh failed", zap.Error(err))
	}
}
