package rest

import (
	"net/http"

	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CharacterHandler handles player character REST endpoints.
type CharacterHandler struct {
	db *gorm.DB
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(db *gorm.DB) *CharacterHandler {
	return &CharacterHandler{db: db}
}

type createCharacterRequest struct {
	Name        string         `json:"name" binding:"required,min=1,max=100"`
	Race        string         `json:"race" binding:"required,max=64"`
	Class       string         `json:"class" binding:"required,max=64"`
	Level       int            `json:"level" binding:"omitempty,min=1,max=20"`
	MaxHP       int            `json:"maxHp" binding:"required,min=1"`
	BaseStats   datatypes.JSON `json:"baseStats"`
	Abilities   datatypes.JSON `json:"abilities"`
	Background  string         `json:"background"`
	Biography   string         `json:"biography"`
	Titles      datatypes.JSON `json:"titles"`
	PortraitURL string         `json:"portraitUrl" binding:"omitempty,max=512"`
}

// Create handles POST /api/player-characters.
func (h *CharacterHandler) Create(c *gin.Context) {
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	pc := &model.PlayerCharacter{
		OwnerUserID: mw.GetUserID(c),
		Name:        req.Name,
		Race:        req.Race,
		Class:       req.Class,
		Level:       req.Level,
		MaxHP:       req.MaxHP,
		BaseStats:   req.BaseStats,
		Abilities:   req.Abilities,
		Background:  req.Background,
		Biography:   req.Biography,
		Titles:      req.Titles,
		PortraitURL: req.PortraitURL,
	}
	if pc.Level == 0 {
		pc.Level = 1
	}
	if err := h.db.Create(pc).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, pc)
}

// Mine handles GET /api/player-characters/mine.
func (h *CharacterHandler) Mine(c *gin.Context) {
	var characters []model.PlayerCharacter
	if err := h.db.Where("owner_user_id = ?", mw.GetUserID(c)).
		Order("created_at desc").Find(&characters).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, characters)
}

// loadOwned fetches a character and enforces ownership, writing the
// appropriate error response on failure.
func (h *CharacterHandler) loadOwned(c *gin.Context, action string) (*model.PlayerCharacter, bool) {
	id, okID := parseID(c, "id")
	if !okID {
		return nil, false
	}
	var pc model.PlayerCharacter
	if err := h.db.First(&pc, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Player character not found")
		return nil, false
	}
	if pc.OwnerUserID != mw.GetUserID(c) {
		fail(c, http.StatusForbidden, "You can only "+action+" your own characters")
		return nil, false
	}
	return &pc, true
}

// Get handles GET /api/player-characters/:id (owner only).
func (h *CharacterHandler) Get(c *gin.Context) {
	pc, okPC := h.loadOwned(c, "view")
	if !okPC {
		return
	}
	ok(c, http.StatusOK, pc)
}

type updateCharacterRequest struct {
	Biography   *string         `json:"biography"`
	Titles      *datatypes.JSON `json:"titles"`
	PortraitURL *string         `json:"portraitUrl" binding:"omitempty,max=512"`
}

// Patch handles PATCH /api/player-characters/:id: biography, titles and
// portrait only. Stats and level belong to campaign play, not direct
// edits.
func (h *CharacterHandler) Patch(c *gin.Context) {
	pc, okPC := h.loadOwned(c, "edit")
	if !okPC {
		return
	}

	var req updateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Biography != nil {
		updates["biography"] = *req.Biography
	}
	if req.Titles != nil {
		updates["titles"] = *req.Titles
	}
	if req.PortraitURL != nil {
		updates["portrait_url"] = *req.PortraitURL
	}
	if len(updates) > 0 {
		if err := h.db.Model(pc).Updates(updates).Error; err != nil {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
	}

	var updated model.PlayerCharacter
	if err := h.db.First(&updated, pc.ID).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, updated)
}

// Delete handles DELETE /api/player-characters/:id.
func (h *CharacterHandler) Delete(c *gin.Context) {
	pc, okPC := h.loadOwned(c, "delete")
	if !okPC {
		return
	}
	if err := h.db.Delete(pc).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	okMessage(c, http.StatusOK, "Character deleted successfully")
}
