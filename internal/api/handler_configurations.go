package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"racksum-backend/internal/model"
)

type configurationRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	ConfigData  datatypes.JSON `json:"config_data" binding:"required"`
}

// ListAllConfigurations handles GET /api/configurations.
func (h *Handler) ListAllConfigurations(c *gin.Context) {
	h.listConfigurations(c, 0)
}

// ListConfigurations handles GET /api/sites/{site_id}/configurations.
func (h *Handler) ListConfigurations(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	h.listConfigurations(c, siteID)
}

func (h *Handler) listConfigurations(c *gin.Context, siteID int64) {
	configs, err := h.store.ListConfigurations(c.Request.Context(), siteID)
	if err != nil {
		fail(c, err)
		return
	}
	if configs == nil {
		configs = []model.RackConfiguration{}
	}
	c.JSON(http.StatusOK, configs)
}

// GetConfiguration handles GET /api/sites/{site_id}/configurations/{name}.
func (h *Handler) GetConfiguration(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	cfg, err := h.store.GetConfiguration(c.Request.Context(), siteID, c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SaveConfiguration handles POST /api/sites/{site_id}/configurations. A
// configuration with the same name in the site is replaced.
func (h *Handler) SaveConfiguration(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	var req configurationRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg := model.RackConfiguration{
		SiteID:      siteID,
		Name:        req.Name,
		Description: req.Description,
		ConfigData:  req.ConfigData,
	}
	created, err := h.store.SaveConfiguration(c.Request.Context(), &cfg)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, cfg)
}

// DeleteConfiguration handles DELETE /api/configurations/{config_id}.
func (h *Handler) DeleteConfiguration(c *gin.Context) {
	id, ok := pathID(c, "config_id")
	if !ok {
		return
	}
	if err := h.store.DeleteConfiguration(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
