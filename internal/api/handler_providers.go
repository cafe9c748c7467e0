package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"racksum-backend/internal/model"
)

type providerRequest struct {
	Name               string `json:"name" binding:"required"`
	Type               string `json:"type" binding:"required"`
	PowerCapacity      int    `json:"power_capacity"`
	PowerPortsCapacity int    `json:"power_ports_capacity"`
	CoolingCapacity    int    `json:"cooling_capacity"`
	Description        string `json:"description"`
	RUSize             int    `json:"ru_size"`
	RackID             *int64 `json:"rack_id"`
	Position           *int   `json:"position"`
}

func (r providerRequest) apply(p *model.Provider) {
	p.Name = r.Name
	p.Type = model.ProviderType(r.Type)
	p.PowerCapacity = r.PowerCapacity
	p.PowerPortsCapacity = r.PowerPortsCapacity
	p.CoolingCapacity = r.CoolingCapacity
	p.Description = r.Description
	p.RUSize = r.RUSize
	p.RackID = r.RackID
	p.Position = r.Position
}

// ListProviders handles GET /api/sites/{site_id}/providers.
func (h *Handler) ListProviders(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	providers, err := h.store.ListProviders(c.Request.Context(), siteID)
	if err != nil {
		fail(c, err)
		return
	}
	if providers == nil {
		providers = []model.Provider{}
	}
	c.JSON(http.StatusOK, providers)
}

// CreateProvider handles POST /api/sites/{site_id}/providers.
func (h *Handler) CreateProvider(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	var req providerRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.store.GetSite(c.Request.Context(), siteID); err != nil {
		fail(c, err)
		return
	}
	p := model.Provider{SiteID: siteID}
	req.apply(&p)
	if err := h.store.CreateProvider(c.Request.Context(), &p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GetProvider handles GET /api/providers/{provider_id}.
func (h *Handler) GetProvider(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	p, err := h.store.GetProvider(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProvider handles PUT /api/providers/{provider_id}.
func (h *Handler) UpdateProvider(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	var req providerRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.store.GetProvider(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	req.apply(p)
	if err := h.store.UpdateProvider(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProvider handles DELETE /api/providers/{provider_id}.
func (h *Handler) DeleteProvider(c *gin.Context) {
	id, ok := pathID(c, "provider_id")
	if !ok {
		return
	}
	if err := h.store.DeleteProvider(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
