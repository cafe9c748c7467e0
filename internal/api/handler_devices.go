package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
	"racksum-backend/internal/store"
)

type deviceRequest struct {
	DeviceID       string `json:"device_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Category       string `json:"category" binding:"required"`
	RUSize         *int   `json:"ru_size" binding:"required"`
	PowerDraw      *int   `json:"power_draw" binding:"required"`
	PowerPortsUsed *int   `json:"power_ports_used"`
	Color          string `json:"color"`
	Description    string `json:"description"`
}

func (r deviceRequest) apply(d *model.DeviceTemplate) {
	d.DeviceID = r.DeviceID
	d.Name = r.Name
	d.Category = r.Category
	d.RUSize = *r.RUSize
	d.PowerDraw = *r.PowerDraw
	d.PowerPortsUsed = model.DefaultPorts
	if r.PowerPortsUsed != nil {
		d.PowerPortsUsed = *r.PowerPortsUsed
	}
	d.Color = r.Color
	d.Description = r.Description
}

// ListDevices handles GET /api/devices?category=&limit=.
func (h *Handler) ListDevices(c *gin.Context) {
	filter := store.DeviceFilter{Category: c.Query("category")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			fail(c, apperr.Validation("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}

	devices, err := h.store.ListDeviceTemplates(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	if devices == nil {
		devices = []model.DeviceTemplate{}
	}
	c.JSON(http.StatusOK, devices)
}

// CreateDevice handles POST /api/devices.
func (h *Handler) CreateDevice(c *gin.Context) {
	var req deviceRequest
	if !bindJSON(c, &req) {
		return
	}
	var d model.DeviceTemplate
	req.apply(&d)
	if err := h.store.CreateDeviceTemplate(c.Request.Context(), &d); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GetDevice handles GET /api/devices/{device_id}.
func (h *Handler) GetDevice(c *gin.Context) {
	id, ok := pathID(c, "device_id")
	if !ok {
		return
	}
	d, err := h.store.GetDeviceTemplate(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// UpdateDevice handles PUT /api/devices/{device_id}. Changing ru_size is
// refused when an existing placement would no longer fit.
func (h *Handler) UpdateDevice(c *gin.Context) {
	id, ok := pathID(c, "device_id")
	if !ok {
		return
	}
	var req deviceRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.store.GetDeviceTemplate(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	req.apply(d)
	if err := h.store.UpdateDeviceTemplate(c.Request.Context(), d); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DeleteDevice handles DELETE /api/devices/{device_id}. Placements of the
// template are removed with it.
func (h *Handler) DeleteDevice(c *gin.Context) {
	id, ok := pathID(c, "device_id")
	if !ok {
		return
	}
	if err := h.store.DeleteDeviceTemplate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
