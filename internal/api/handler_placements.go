package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
	"racksum-backend/internal/placement"
	"racksum-backend/internal/store"
)

type placeRequest struct {
	DeviceID     int64  `json:"device_id" binding:"required"`
	Position     int    `json:"position" binding:"required"`
	InstanceName string `json:"instance_name"`
}

type moveRequest struct {
	Position     int    `json:"position" binding:"required"`
	InstanceName string `json:"instance_name"`
}

// checkRequest describes a hypothetical placement. The size comes from the
// device template when device_id is set, otherwise from ru_size.
type checkRequest struct {
	DeviceID    int64 `json:"device_id"`
	RUSize      int   `json:"ru_size"`
	Position    int   `json:"position" binding:"required"`
	PlacementID int64 `json:"placement_id"`
}

// checkResponse is the verdict of a dry-run placement check.
type checkResponse struct {
	Fits  bool            `json:"fits"`
	Span  placement.Span  `json:"span"`
	Error string          `json:"error,omitempty"`
	Kind  apperr.Kind     `json:"kind,omitempty"`
	Range *placement.Span `json:"range,omitempty"`
}

// ListPlacements handles GET /api/racks/{rack_id}/devices.
func (h *Handler) ListPlacements(c *gin.Context) {
	id, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	rack, err := h.store.GetRack(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	devices := rack.Devices
	if devices == nil {
		devices = []model.RackDevice{}
	}
	c.JSON(http.StatusOK, devices)
}

// PlaceDevice handles POST /api/racks/{rack_id}/devices.
func (h *Handler) PlaceDevice(c *gin.Context) {
	rackID, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	var req placeRequest
	if !bindJSON(c, &req) {
		return
	}
	placed, err := h.store.PlaceDevice(c.Request.Context(), rackID, store.PlacementRequest{
		DeviceID:     req.DeviceID,
		Position:     req.Position,
		InstanceName: req.InstanceName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

// MovePlacement handles PUT /api/racks/{rack_id}/devices/{placement_id}.
func (h *Handler) MovePlacement(c *gin.Context) {
	rackID, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	placementID, ok := pathID(c, "placement_id")
	if !ok {
		return
	}
	var req moveRequest
	if !bindJSON(c, &req) {
		return
	}
	moved, err := h.store.MovePlacement(c.Request.Context(), rackID, placementID, store.PlacementRequest{
		Position:     req.Position,
		InstanceName: req.InstanceName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, moved)
}

// RemovePlacement handles DELETE /api/racks/{rack_id}/devices/{placement_id}.
func (h *Handler) RemovePlacement(c *gin.Context) {
	rackID, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	placementID, ok := pathID(c, "placement_id")
	if !ok {
		return
	}
	if err := h.store.RemovePlacement(c.Request.Context(), rackID, placementID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckPlacement handles POST /api/racks/{rack_id}/check. Rack space errors
// are part of the verdict; anything else is reported as a normal error.
func (h *Handler) CheckPlacement(c *gin.Context) {
	rackID, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	var req checkRequest
	if !bindJSON(c, &req) {
		return
	}

	size := req.RUSize
	if req.DeviceID != 0 {
		d, err := h.store.GetDeviceTemplate(c.Request.Context(), req.DeviceID)
		if err != nil {
			fail(c, err)
			return
		}
		size = d.RUSize
	}
	if size < 1 {
		fail(c, apperr.Validation("device_id or a positive ru_size is required"))
		return
	}

	cand := placement.Candidate{Kind: placement.KindDevice, ID: req.PlacementID, Position: req.Position, Size: size}
	resp := checkResponse{Fits: true, Span: placement.NewSpan(req.Position, size)}

	err := h.store.CheckSpace(c.Request.Context(), rackID, cand)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrOutOfBounds), errors.Is(err, apperr.ErrPositionConflict):
		body := newErrorResponse(err)
		resp.Fits = false
		resp.Error, resp.Kind, resp.Range = body.Error, body.Kind, body.Range
	default:
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
