package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"racksum-backend/internal/model"
	"racksum-backend/internal/placement"
	"racksum-backend/internal/resource"
	"racksum-backend/internal/store"
)

type rackRequest struct {
	Name        string `json:"name" binding:"required"`
	RUHeight    int    `json:"ru_height"`
	Description string `json:"description"`
}

// rackUsageResponse adds the free RU ranges to a rack's usage.
type rackUsageResponse struct {
	resource.RackUsage
	FreeRanges []placement.Span `json:"free_ranges"`
}

// ListRacks handles GET /api/sites/{site_id}/racks.
func (h *Handler) ListRacks(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	racks, err := h.store.ListRacks(c.Request.Context(), siteID)
	if err != nil {
		fail(c, err)
		return
	}
	if racks == nil {
		racks = []model.Rack{}
	}
	c.JSON(http.StatusOK, racks)
}

// CreateRack handles POST /api/sites/{site_id}/racks.
func (h *Handler) CreateRack(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	var req rackRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.store.GetSite(c.Request.Context(), siteID); err != nil {
		fail(c, err)
		return
	}

	rack := model.Rack{SiteID: siteID, Name: req.Name, RUHeight: req.RUHeight, Description: req.Description}
	if rack.RUHeight == 0 {
		rack.RUHeight = h.defaultRUHeight
	}
	if err := h.store.CreateRack(c.Request.Context(), &rack); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rack)
}

// GetRack handles GET /api/racks/{rack_id}.
func (h *Handler) GetRack(c *gin.Context) {
	id, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	rack, err := h.store.GetRack(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rack)
}

// UpdateRack handles PUT /api/racks/{rack_id}. A rack cannot shrink below
// the highest RU held by its occupants.
func (h *Handler) UpdateRack(c *gin.Context) {
	id, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	var req rackRequest
	if !bindJSON(c, &req) {
		return
	}
	rack, err := h.store.GetRack(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	rack.Name = req.Name
	rack.Description = req.Description
	if req.RUHeight != 0 {
		rack.RUHeight = req.RUHeight
	}
	if err := h.store.UpdateRack(c.Request.Context(), rack); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rack)
}

// DeleteRack handles DELETE /api/racks/{rack_id}.
func (h *Handler) DeleteRack(c *gin.Context) {
	id, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	if err := h.store.DeleteRack(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRackUsage handles GET /api/racks/{rack_id}/usage.
func (h *Handler) GetRackUsage(c *gin.Context) {
	id, ok := pathID(c, "rack_id")
	if !ok {
		return
	}
	rack, err := h.store.GetRack(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	free := placement.FreeRanges(rack.RUHeight, store.Occupants(rack.Devices, rack.Providers))
	if free == nil {
		free = []placement.Span{}
	}
	c.JSON(http.StatusOK, rackUsageResponse{RackUsage: h.agg.Rack(rack), FreeRanges: free})
}
