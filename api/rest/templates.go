package rest

import (
	"net/http"

	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateHandler handles the four template libraries: NPCs, bestiary,
// items and environments.
type TemplateHandler struct {
	db *gorm.DB
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(db *gorm.DB) *TemplateHandler {
	return &TemplateHandler{db: db}
}

type createNpcTemplateRequest struct {
	Name          string         `json:"name" binding:"required,min=1,max=100"`
	Race          string         `json:"race" binding:"required,max=64"`
	Role          string         `json:"role" binding:"required,max=64"`
	Faction       string         `json:"faction" binding:"max=64"`
	BaselineLevel int            `json:"baselineLevel" binding:"omitempty,min=1,max=20"`
	Personality   datatypes.JSON `json:"personality"`
	StatBlock     datatypes.JSON `json:"statBlock"`
	Tags          datatypes.JSON `json:"tags"`
	Backstory     string         `json:"backstory"`
	DefaultTitles datatypes.JSON `json:"defaultTitles"`
}

// CreateNpc handles POST /api/npc-templates.
func (h *TemplateHandler) CreateNpc(c *gin.Context) {
	var req createNpcTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	tpl := &model.NpcTemplate{
		AuthorUserID:  mw.GetUserID(c),
		Name:          req.Name,
		Race:          req.Race,
		Role:          req.Role,
		Faction:       req.Faction,
		BaselineLevel: req.BaselineLevel,
		Personality:   req.Personality,
		StatBlock:     req.StatBlock,
		Tags:          req.Tags,
		Backstory:     req.Backstory,
		DefaultTitles: req.DefaultTitles,
	}
	if tpl.BaselineLevel == 0 {
		tpl.BaselineLevel = 1
	}
	if err := h.db.Create(tpl).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, tpl)
}

// MineNpc handles GET /api/npc-templates/mine.
func (h *TemplateHandler) MineNpc(c *gin.Context) {
	var templates []model.NpcTemplate
	if err := h.db.Where("author_user_id = ?", mw.GetUserID(c)).
		Order("created_at desc").Find(&templates).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, templates)
}

// GetNpc handles GET /api/npc-templates/:id.
func (h *TemplateHandler) GetNpc(c *gin.Context) {
	id, okID := parseID(c, "id")
	if !okID {
		return
	}
	var tpl model.NpcTemplate
	if err := h.db.First(&tpl, id).Error; err != nil {
		fail(c, http.StatusNotFound, "NPC template not found")
		return
	}
	ok(c, http.StatusOK, tpl)
}

type createBestiaryEntryRequest struct {
	Name                string         `json:"name" binding:"required,min=1,max=100"`
	Category            string         `json:"category" binding:"required,max=64"`
	ChallengeRating     string         `json:"challengeRating" binding:"max=16"`
	RecommendedLevelMin int            `json:"recommendedLevelMin" binding:"omitempty,min=1,max=20"`
	RecommendedLevelMax int            `json:"recommendedLevelMax" binding:"omitempty,min=1,max=20"`
	StatBlock           datatypes.JSON `json:"statBlock"`
	Tags                datatypes.JSON `json:"tags"`
	Lore                string         `json:"lore"`
}

// CreateBestiary handles POST /api/bestiary.
func (h *TemplateHandler) CreateBestiary(c *gin.Context) {
	var req createBestiaryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	entry := &model.BestiaryEntry{
		AuthorUserID:        mw.GetUserID(c),
		Name:                req.Name,
		Category:            req.Category,
		ChallengeRating:     req.ChallengeRating,
		RecommendedLevelMin: req.RecommendedLevelMin,
		RecommendedLevelMax: req.RecommendedLevelMax,
		StatBlock:           req.StatBlock,
		Tags:                req.Tags,
		Lore:                req.Lore,
	}
	if entry.RecommendedLevelMin == 0 {
		entry.RecommendedLevelMin = 1
	}
	if entry.RecommendedLevelMax == 0 {
		entry.RecommendedLevelMax = 20
	}
	if err := h.db.Create(entry).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, entry)
}

// MineBestiary handles GET /api/bestiary/mine.
func (h *TemplateHandler) MineBestiary(c *gin.Context) {
	var entries []model.BestiaryEntry
	if err := h.db.Where("author_user_id = ?", mw.GetUserID(c)).
		Order("created_at desc").Find(&entries).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, entries)
}

// GetBestiary handles GET /api/bestiary/:id.
func (h *TemplateHandler) GetBestiary(c *gin.Context) {
	id, okID := parseID(c, "id")
	if !okID {
		return
	}
	var entry model.BestiaryEntry
	if err := h.db.First(&entry, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Bestiary entry not found")
		return
	}
	ok(c, http.StatusOK, entry)
}

type createItemTemplateRequest struct {
	Name        string         `json:"name" binding:"required,min=1,max=100"`
	Category    string         `json:"category" binding:"required,oneof=weapon armor consumable quest misc"`
	Rarity      string         `json:"rarity" binding:"max=32"`
	Description string         `json:"description"`
	Stats       datatypes.JSON `json:"stats"`
	Tags        datatypes.JSON `json:"tags"`
	IsQuestItem bool           `json:"isQuestItem"`
}

// CreateItem handles POST /api/item-templates.
func (h *TemplateHandler) CreateItem(c *gin.Context) {
	var req createItemTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	tpl := &model.ItemTemplate{
		AuthorUserID: mw.GetUserID(c),
		Name:         req.Name,
		Category:     req.Category,
		Rarity:       req.Rarity,
		Description:  req.Description,
		Stats:        req.Stats,
		Tags:         req.Tags,
		IsQuestItem:  req.IsQuestItem,
	}
	if err := h.db.Create(tpl).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, tpl)
}

// MineItems handles GET /api/item-templates/mine.
func (h *TemplateHandler) MineItems(c *gin.Context) {
	var templates []model.ItemTemplate
	if err := h.db.Where("author_user_id = ?", mw.GetUserID(c)).
		Order("created_at desc").Find(&templates).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, templates)
}

// GetItem handles GET /api/item-templates/:id.
func (h *TemplateHandler) GetItem(c *gin.Context) {
	id, okID := parseID(c, "id")
	if !okID {
		return
	}
	var tpl model.ItemTemplate
	if err := h.db.First(&tpl, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Item template not found")
		return
	}
	ok(c, http.StatusOK, tpl)
}

type createEnvironmentTemplateRequest struct {
	Name            string         `json:"name" binding:"required,min=1,max=100"`
	Type            string         `json:"type" binding:"required,max=16"`
	DefaultLocation string         `json:"defaultLocation" binding:"max=100"`
	Tags            datatypes.JSON `json:"tags"`
	Description     string         `json:"description"`
	DefaultState    datatypes.JSON `json:"defaultState"`
}

// CreateEnvironment handles POST /api/environments.
func (h *TemplateHandler) CreateEnvironment(c *gin.Context) {
	var req createEnvironmentTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	tpl := &model.EnvironmentTemplate{
		AuthorUserID:    mw.GetUserID(c),
		Name:            req.Name,
		Type:            req.Type,
		DefaultLocation: req.DefaultLocation,
		Tags:            req.Tags,
		Description:     req.Description,
		DefaultState:    req.DefaultState,
	}
	if err := h.db.Create(tpl).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, tpl)
}

// MineEnvironments handles GET /api/environments/mine.
func (h *TemplateHandler) MineEnvironments(c *gin.Context) {
	var templates []model.EnvironmentTemplate
	if err := h.db.Where("author_user_id = ?", mw.GetUserID(c)).
		Order("created_at desc").Find(&templates).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, templates)
}

// GetEnvironment handles GET /api/environments/:id.
func (h *TemplateHandler) GetEnvironment(c *gin.Context) {
	id, okID := parseID(c, "id")
	if !okID {
		return
	}
	var tpl model.EnvironmentTemplate
	if err := h.db.First(&tpl, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Environment template not found")
		return
	}
	ok(c, http.StatusOK, tpl)
}
