package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"turf-booking/internal/services"
)

type SlotHandler struct {
	app   *pocketbase.PocketBase
	turfs *services.TurfService
}

func NewSlotHandler(app *pocketbase.PocketBase, turfs *services.TurfService) *SlotHandler {
	return &SlotHandler{
		app:   app,
		turfs: turfs,
	}
}

// GetTurf - public turf detail with upcoming slots
func (h *SlotHandler) GetTurf(e *core.RequestEvent) error {
	slug := e.Request.PathValue("slug")

	page, err := h.turfs.GetTurfPage(e.Request.Context(), slug)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, page)
}

// GetSlot - public slot detail
func (h *SlotHandler) GetSlot(e *core.RequestEvent) error {
	slotID := e.Request.PathValue("id")

	slot, err := h.turfs.GetSlot(e.Request.Context(), slotID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, slot)
}

type toggleSlotRequest struct {
	SlotID string `json:"slot_id"`
	Action string `json:"action"` // "block" or "unblock"
}

// ToggleSlot - owner takes a slot off the market or puts it back
func (h *SlotHandler) ToggleSlot(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req toggleSlotRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.SlotID == "" {
		return apis.NewBadRequestError("slot_id is required", nil)
	}

	ctx := e.Request.Context()

	switch req.Action {
	case "block":
		slot, err := h.turfs.BlockSlot(ctx, e.Auth.Id, req.SlotID)
		if err != nil {
			return apiError(err)
		}
		return e.JSON(http.StatusOK, slot)

	case "unblock":
		slot, err := h.turfs.UnblockSlot(ctx, e.Auth.Id, req.SlotID)
		if err != nil {
			return apiError(err)
		}
		return e.JSON(http.StatusOK, slot)

	default:
		return apis.NewBadRequestError("action must be block or unblock", nil)
	}
}
