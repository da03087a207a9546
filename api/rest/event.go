package rest

import (
	"net/http"
	"strconv"

	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/Dm-vYzion/StoryForge/progress"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type appendEventRequest struct {
	BranchID string         `json:"branchId" binding:"required,min=1,max=100"`
	Type     string         `json:"type" binding:"required"`
	Payload  datatypes.JSON `json:"payload"`
}

// AppendEvent handles POST /api/campaign-instances/:id/events.
func (h *InstanceHandler) AppendEvent(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "add events to")
	if !okInst {
		return
	}

	var req appendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !model.ValidEventType(req.Type) {
		fail(c, http.StatusBadRequest, "Unknown event type")
		return
	}

	event, err := h.progress.Append(inst.ID, req.BranchID, req.Type, req.Payload)
	if err != nil {
		if progress.IsUniqueViolation(err) {
			fail(c, http.StatusConflict, "Concurrent event append, please retry")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	ok(c, http.StatusCreated, event)
}

// ListEvents handles GET /api/campaign-instances/:id/events with
// optional branchId, type, fromSequence and toSequence filters.
func (h *InstanceHandler) ListEvents(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "view events for")
	if !okInst {
		return
	}

	filter := progress.EventFilter{
		BranchID: c.Query("branchId"),
		Type:     c.Query("type"),
	}
	if raw := c.Query("fromSequence"); raw != "" {
		seq, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid fromSequence")
			return
		}
		filter.FromSequence = &seq
	}
	if raw := c.Query("toSequence"); raw != "" {
		seq, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid toSequence")
			return
		}
		filter.ToSequence = &seq
	}

	events, err := h.progress.Events(inst.ID, filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, events)
}
