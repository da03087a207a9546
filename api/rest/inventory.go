package rest

import (
	"net/http"

	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/Dm-vYzion/StoryForge/progress"
	"github.com/gin-gonic/gin"
)

type itemLocationRequest struct {
	Type       string `json:"type" binding:"required,oneof=pc party world"`
	ID         string `json:"id"`
	LocationID string `json:"locationId"`
}

func (r itemLocationRequest) toModel() model.ItemLocation {
	return model.ItemLocation{Type: r.Type, ID: r.ID, LocationID: r.LocationID}
}

type transferItemRequest struct {
	BranchID       string              `json:"branchId" binding:"required,min=1,max=100"`
	InstanceItemID string              `json:"instanceItemId" binding:"required"`
	From           itemLocationRequest `json:"from" binding:"required"`
	To             itemLocationRequest `json:"to" binding:"required"`
	Quantity       int                 `json:"quantity" binding:"omitempty,min=1"`
}

// TransferItem handles POST /api/campaign-instances/:id/items/transfer.
// The move lands as an adjacent ItemLost/ItemGained pair.
func (h *InstanceHandler) TransferItem(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "manage items in")
	if !okInst {
		return
	}

	var req transferItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	_, _, err := h.progress.AppendTransfer(inst.ID, req.BranchID, progress.TransferRequest{
		InstanceItemID: req.InstanceItemID,
		From:           req.From.toModel(),
		To:             req.To.toModel(),
		Quantity:       req.Quantity,
	})
	if err != nil {
		if progress.IsUniqueViolation(err) {
			fail(c, http.StatusConflict, "Concurrent event append, please retry")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	ok(c, http.StatusOK, gin.H{
		"transferred": gin.H{
			"instanceItemId": req.InstanceItemID,
			"from":           req.From,
			"to":             req.To,
			"quantity":       quantity,
		},
		"eventsCreated": 2,
	})
}

type useItemRequest struct {
	BranchID       string `json:"branchId" binding:"required,min=1,max=100"`
	InstanceItemID string `json:"instanceItemId" binding:"required"`
	PcID           string `json:"pcId" binding:"required"`
	TargetID       string `json:"targetId"`
	Quantity       int    `json:"quantity" binding:"omitempty,min=1"`
}

// UseItem handles POST /api/campaign-instances/:id/items/use.
func (h *InstanceHandler) UseItem(c *gin.Context) {
	inst, okInst := h.loadOwnedInstance(c, "use items in")
	if !okInst {
		return
	}

	var req useItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.progress.AppendUse(inst.ID, req.BranchID, progress.UseRequest{
		InstanceItemID: req.InstanceItemID,
		PcID:           req.PcID,
		TargetID:       req.TargetID,
		Quantity:       req.Quantity,
	})
	if err != nil {
		if progress.IsUniqueViolation(err) {
			fail(c, http.StatusConflict, "Concurrent event append, please retry")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	ok(c, http.StatusOK, event)
}
