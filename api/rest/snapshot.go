package rest

import (
	"encoding/json"
	"net/http"

	"github.com/Dm-vYzion/StoryForge/progress"
	"github.com/Dm-vYzion/StoryForge/schema"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type createSnapshotRequest struct {
	BranchID string         `json:"branchId" binding:"required,min=1,max=100"`
	State    datatypes.JSON `json:"state" binding:"required"`
}

// CreateSnapshot handles POST /api/campaign-instances/:id/snapshots.
// The state document is a client-computed checkpoint; it is checked
// for shape against the snapshot schema but never interpreted.
func (h *InstanceHandler) CreateSnapshot(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "create snapshots for")
	if !okInst {
		return
	}

	var req createSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := schema.ValidateSnapshotState(json.RawMessage(req.State)); err != nil {
		fail(c, http.StatusBadRequest, "Invalid snapshot state: "+err.Error())
		return
	}

	snapshot, err := h.progress.CreateSnapshot(inst.ID, req.BranchID, req.State)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	h.auditAction(c, "snapshot.create", gin.H{"branchId": req.BranchID}, inst.ID)
	ok(c, http.StatusCreated, snapshot)
}

// LatestSnapshot handles GET /api/campaign-instances/:id/snapshots/latest
// with an optional ?branchId filter.
func (h *InstanceHandler) LatestSnapshot(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "view snapshots for")
	if !okInst {
		return
	}

	snapshot, err := h.progress.LatestSnapshot(inst.ID, c.Query("branchId"))
	if err != nil {
		if err == progress.ErrNoSnapshot {
			fail(c, http.StatusNotFound, "No snapshot found")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	ok(c, http.StatusOK, snapshot)
}
