package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Dm-vYzion/StoryForge/audit"
	"github.com/Dm-vYzion/StoryForge/config"
	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/Dm-vYzion/StoryForge/progress"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InstanceHandler handles campaign instance REST endpoints: creation,
// listing, forking, and the event/snapshot/inventory sub-resources.
type InstanceHandler struct {
	db       *gorm.DB
	progress *progress.Service
	audit    *audit.Service
	game     config.GameConfig
	logger   *zap.Logger
}

// NewInstanceHandler creates a new InstanceHandler.
func NewInstanceHandler(db *gorm.DB, svc *progress.Service, auditSvc *audit.Service, game config.GameConfig, logger *zap.Logger) *InstanceHandler {
	return &InstanceHandler{db: db, progress: svc, audit: auditSvc, game: game, logger: logger}
}

type createInstanceRequest struct {
	CampaignDefID int64   `json:"campaignDefId" binding:"required"`
	Title         string  `json:"title" binding:"required,min=1,max=200"`
	SelectedPcIDs []int64 `json:"selectedPcIds" binding:"required,min=1"`
}

// Create handles POST /api/campaign-instances. Paid campaigns demand a
// purchase unless the caller authored them; every selected character
// must belong to the caller. Level mismatches against the campaign's
// recommendation are warnings, never blockers.
func (h *InstanceHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req createInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if max := h.game.MaxSelectedPcs; max > 0 && len(req.SelectedPcIDs) > max {
		fail(c, http.StatusBadRequest, fmt.Sprintf("At most %d characters can join a campaign", max))
		return
	}

	var def model.CampaignDefinition
	if err := h.db.First(&def, req.CampaignDefID).Error; err != nil {
		fail(c, http.StatusNotFound, "Campaign definition not found")
		return
	}

	if def.IsPaid && def.AuthorUserID != userID {
		owned, err := hasPurchase(h.db, userID, model.AssetCampaign, def.ID)
		if err != nil {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
		if !owned {
			fail(c, http.StatusForbidden, "You need to purchase this campaign to play it")
			return
		}
	}

	var characters []model.PlayerCharacter
	if err := h.db.Where("id IN ? AND owner_user_id = ?", req.SelectedPcIDs, userID).
		Find(&characters).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	if len(characters) != len(req.SelectedPcIDs) {
		fail(c, http.StatusBadRequest, "One or more characters not found or not owned by you")
		return
	}

	var warnings []string
	for _, pc := range characters {
		if pc.Level < def.RecommendedLevelMin {
			warnings = append(warnings, fmt.Sprintf("%s (level %d) is below the recommended level %d",
				pc.Name, pc.Level, def.RecommendedLevelMin))
		} else if pc.Level > def.RecommendedLevelMax {
			warnings = append(warnings, fmt.Sprintf("%s (level %d) is above the recommended level %d",
				pc.Name, pc.Level, def.RecommendedLevelMax))
		}
	}

	pcIDs, err := json.Marshal(req.SelectedPcIDs)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	branch := h.game.DefaultBranch
	if branch == "" {
		branch = model.DefaultBranch
	}
	inst := &model.CampaignInstance{
		UserID:        userID,
		CampaignDefID: def.ID,
		WorldID:       def.WorldID,
		BranchID:      branch,
		Title:         req.Title,
		SelectedPcIDs: pcIDs,
		LastPlayedAt:  time.Now(),
	}
	if err := h.db.Create(inst).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	h.auditAction(c, "instance.create", req, inst.ID)

	data := gin.H{"instance": inst}
	if len(warnings) > 0 {
		data["warnings"] = warnings
	}
	ok(c, http.StatusCreated, data)
}

// instanceView flattens an instance with its campaign summary and the
// selected characters.
func (h *InstanceHandler) instanceView(inst *model.CampaignInstance, full bool) gin.H {
	view := gin.H{"instance": inst}

	var def model.CampaignDefinition
	if err := h.db.First(&def, inst.CampaignDefID).Error; err == nil {
		if full {
			view["campaignDef"] = def
		} else {
			view["campaignDef"] = gin.H{
				"id":               def.ID,
				"title":            def.Title,
				"shortDescription": def.ShortDescription,
			}
		}
	}

	if pcIDs := decodeIDs(inst.SelectedPcIDs); len(pcIDs) > 0 {
		var characters []model.PlayerCharacter
		if err := h.db.Where("id IN ?", pcIDs).Find(&characters).Error; err == nil {
			if full {
				view["selectedPcs"] = characters
			} else {
				summaries := make([]gin.H, 0, len(characters))
				for _, pc := range characters {
					summaries = append(summaries, gin.H{
						"id": pc.ID, "name": pc.Name, "class": pc.Class, "level": pc.Level,
					})
				}
				view["selectedPcs"] = summaries
			}
		}
	}

	if full && inst.CurrentSnapshotID != nil {
		var snap model.Snapshot
		if err := h.db.First(&snap, *inst.CurrentSnapshotID).Error; err == nil {
			view["currentSnapshot"] = snap
		}
	}
	return view
}

// Mine handles GET /api/campaign-instances/mine, most recently played
// first.
func (h *InstanceHandler) Mine(c *gin.Context) {
	var instances []model.CampaignInstance
	if err := h.db.Where("user_id = ?", mw.GetUserID(c)).
		Order("last_played_at desc").Find(&instances).Error; err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]gin.H, 0, len(instances))
	for i := range instances {
		views = append(views, h.instanceView(&instances[i], false))
	}
	ok(c, http.StatusOK, views)
}

// loadOwnedInstance fetches an instance and enforces ownership, writing
// the error response itself on failure.
func (h *InstanceHandler) loadOwnedInstance(c *gin.Context, action string) (*model.CampaignInstance, bool) {
	id, okID := parseID(c, "id")
	if !okID {
		return nil, false
	}
	var inst model.CampaignInstance
	if err := h.db.First(&inst, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Campaign instance not found")
		return nil, false
	}
	if inst.UserID != mw.GetUserID(c) {
		fail(c, http.StatusForbidden, "You can only "+action+" your own campaigns")
		return nil, false
	}
	return &inst, true
}

// Get handles GET /api/campaign-instances/:id (owner only).
func (h *InstanceHandler) Get(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "view")
	if !okInst {
		return
	}
	ok(c, http.StatusOK, h.instanceView(inst, true))
}

type forkRequest struct {
	FromSnapshotID *int64 `json:"fromSnapshotId"`
	NewBranchName  string `json:"newBranchName" binding:"omitempty,min=1,max=100"`
}

// Fork handles POST /api/campaign-instances/:id/fork.
func (h *InstanceHandler) Fork(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "fork")
	if !okInst {
		return
	}

	var req forkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	forked, err := h.progress.Fork(inst, req.FromSnapshotID, req.NewBranchName)
	if err != nil {
		if err == progress.ErrSnapshotNotFound {
			fail(c, http.StatusNotFound, "Snapshot not found for this instance")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.auditAction(c, "instance.fork", req, forked.ID)
	ok(c, http.StatusCreated, forked)
}

// auditAction records a mutating instance operation.
func (h *InstanceHandler) auditAction(c *gin.Context, action string, request interface{}, instanceID int64) {
	if h.audit == nil {
		return
	}
	userID := mw.GetUserID(c)
	h.audit.Log(audit.Entry{
		TraceID:  mw.GetTraceID(c),
		UserID:   &userID,
		Action:   action,
		Request:  request,
		Response: gin.H{"instanceId": instanceID},
		IP:       c.ClientIP(),
	})
}
