package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/Dm-vYzion/StoryForge/slug"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorldHandler handles world REST endpoints.
type WorldHandler struct {
	db *gorm.DB
}

// NewWorldHandler creates a new WorldHandler.
func NewWorldHandler(db *gorm.DB) *WorldHandler {
	return &WorldHandler{db: db}
}

type createWorldRequest struct {
	Name                         string         `json:"name" binding:"required,min=1,max=100"`
	Slug                         string         `json:"slug" binding:"omitempty,max=50"`
	Description                  string         `json:"description"`
	BaseTruths                   datatypes.JSON `json:"baseTruths"`
	DefaultTags                  datatypes.JSON `json:"defaultTags"`
	LinkedNpcTemplateIDs         datatypes.JSON `json:"linkedNpcTemplateIds"`
	LinkedBestiaryEntryIDs       datatypes.JSON `json:"linkedBestiaryEntryIds"`
	LinkedItemTemplateIDs        datatypes.JSON `json:"linkedItemTemplateIds"`
	LinkedEnvironmentTemplateIDs datatypes.JSON `json:"linkedEnvironmentTemplateIds"`
	LinkedAssetPackIDs           datatypes.JSON `json:"linkedAssetPackIds"`
	LicenseMode                  string         `json:"licenseMode" binding:"omitempty,oneof=open paid invite-only"`
	LicensePrice                 int64          `json:"licensePrice" binding:"omitempty,min=0"`
}

// Create handles POST /api/worlds. An explicit slug must be unused; with
// no slug one is derived from the name, probing base-2, base-3, ... until
// free. A concurrent insert can still take the probed slug first, so the
// generated path retries on the uniqueness constraint instead of
// surfacing a server error.
func (h *WorldHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req createWorldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	explicit := req.Slug != ""
	world := &model.World{
		AuthorUserID:                 userID,
		Name:                         req.Name,
		Description:                  req.Description,
		BaseTruths:                   req.BaseTruths,
		DefaultTags:                  req.DefaultTags,
		LinkedNpcTemplateIDs:         req.LinkedNpcTemplateIDs,
		LinkedBestiaryEntryIDs:       req.LinkedBestiaryEntryIDs,
		LinkedItemTemplateIDs:        req.LinkedItemTemplateIDs,
		LinkedEnvironmentTemplateIDs: req.LinkedEnvironmentTemplateIDs,
		LinkedAssetPackIDs:           req.LinkedAssetPackIDs,
		LicenseMode:                  req.LicenseMode,
		LicensePrice:                 req.LicensePrice,
	}
	if world.LicenseMode == "" {
		world.LicenseMode = model.LicenseOpen
	}

	if explicit {
		world.Slug = slug.Normalize(req.Slug)
		if world.Slug == "" {
			fail(c, http.StatusBadRequest, "Invalid slug")
			return
		}
		var existing model.World
		err := h.db.Where("slug = ?", world.Slug).First(&existing).Error
		if err == nil {
			fail(c, http.StatusConflict, "A world with this slug already exists")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.db.Create(world).Error; err != nil {
			if isUniqueViolation(err) {
				fail(c, http.StatusConflict, "A world with this slug already exists")
			} else {
				fail(c, http.StatusInternalServerError, "internal error")
			}
			return
		}
		ok(c, http.StatusCreated, world)
		return
	}

	// Generated slug: retry a few times in case another request claims
	// the probed slug between the probe and the insert.
	for attempt := 0; attempt < 3; attempt++ {
		s, err := slug.GenerateUniqueWorldSlug(h.db, req.Name)
		if err != nil {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
		world.Slug = s
		err = h.db.Create(world).Error
		if err == nil {
			ok(c, http.StatusCreated, world)
			return
		}
		if !isUniqueViolation(err) {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
		world.ID = 0
	}
	fail(c, http.StatusConflict, "A world with this slug already exists")
}

// ListPublic handles GET /api/worlds/public.
func (h *WorldHandler) ListPublic(c *gin.Context) {
	page, limit, offset := pagination(c)

	q := h.db.Model(&model.World{})
	if mode := c.Query("licenseMode"); mode != "" {
		q = q.Where("license_mode = ?", mode)
	}
	if tags := c.Query("tags"); tags != "" {
		// JSON tag arrays are matched with a containment probe per tag.
		tagQ := h.db.Session(&gorm.Session{NewDB: true})
		clause := tagQ
		for i, tag := range strings.Split(tags, ",") {
			like := fmt.Sprintf("%%%q%%", strings.TrimSpace(tag))
			if i == 0 {
				clause = tagQ.Where("default_tags LIKE ?", like)
			} else {
				clause = clause.Or("default_tags LIKE ?", like)
			}
		}
		q = q.Where(clause)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	var worlds []model.World
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&worlds).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"worlds": worlds,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages(total, limit),
		},
	})
}

// Get handles GET /api/worlds/:id.
func (h *WorldHandler) Get(c *gin.Context) {
	worldID, okID := parseID(c, "id")
	if !okID {
		return
	}
	var world model.World
	if err := h.db.First(&world, worldID).Error; err != nil {
		fail(c, http.StatusNotFound, "World not found")
		return
	}
	ok(c, http.StatusOK, world)
}

// License handles POST /api/worlds/:id/license. No real payment flow;
// the purchase row is the license.
func (h *WorldHandler) License(c *gin.Context) {
	userID := mw.GetUserID(c)
	worldID, okID := parseID(c, "id")
	if !okID {
		return
	}

	var world model.World
	if err := h.db.First(&world, worldID).Error; err != nil {
		fail(c, http.StatusNotFound, "World not found")
		return
	}

	var existing model.Purchase
	err := h.db.Where("buyer_user_id = ? AND asset_type = ? AND asset_id = ?",
		userID, model.AssetWorld, world.ID).First(&existing).Error
	if err == nil {
		fail(c, http.StatusConflict, "You already have a license for this world")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	purchase := &model.Purchase{
		BuyerUserID:      userID,
		AssetType:        model.AssetWorld,
		AssetID:          world.ID,
		PricePaid:        world.LicensePrice,
		Currency:         "USD",
		Provider:         "manual",
		ProviderChargeID: fmt.Sprintf("stub_%d", time.Now().UnixMilli()),
	}
	if err := h.db.Create(purchase).Error; err != nil {
		if isUniqueViolation(err) {
			fail(c, http.StatusConflict, "You already have a license for this world")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"purchase": purchase,
		"message":  "World license acquired successfully",
	})
}
