package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"racksum-backend/internal/model"
)

type siteRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ListSites handles GET /api/sites.
func (h *Handler) ListSites(c *gin.Context) {
	sites, err := h.store.ListSites(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if sites == nil {
		sites = []model.Site{}
	}
	c.JSON(http.StatusOK, sites)
}

// CreateSite handles POST /api/sites.
func (h *Handler) CreateSite(c *gin.Context) {
	var req siteRequest
	if !bindJSON(c, &req) {
		return
	}
	site := model.Site{Name: req.Name, Description: req.Description}
	if err := h.store.CreateSite(c.Request.Context(), &site); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, site)
}

// GetSite handles GET /api/sites/{site_id}.
func (h *Handler) GetSite(c *gin.Context) {
	id, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	site, err := h.store.GetSite(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

// UpdateSite handles PUT /api/sites/{site_id}.
func (h *Handler) UpdateSite(c *gin.Context) {
	id, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	var req siteRequest
	if !bindJSON(c, &req) {
		return
	}
	site, err := h.store.GetSite(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	site.Name = req.Name
	site.Description = req.Description
	if err := h.store.UpdateSite(c.Request.Context(), site); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

// DeleteSite handles DELETE /api/sites/{site_id}. Racks, placements,
// providers and configurations of the site go with it.
func (h *Handler) DeleteSite(c *gin.Context) {
	id, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	if err := h.store.DeleteSite(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSiteStats handles GET /api/sites/{site_id}/stats.
func (h *Handler) GetSiteStats(c *gin.Context) {
	id, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	site, err := h.store.LoadSiteUsage(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.agg.Site(site))
}

// GetSummary handles GET /api/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()
	sites, err := h.store.LoadAllSites(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	deviceTypes, err := h.store.CountDeviceTemplates(ctx, "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.agg.Summarize(sites, deviceTypes))
}
