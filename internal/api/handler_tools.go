package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/tools"
)

// ListTools handles GET /api/tools.
func (h *Handler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.tools.Definitions()})
}

// CallTool handles POST /api/tools/{name}. The body holds the tool arguments.
// Failures inside the tool are returned with 200 and is_error set.
func (h *Handler) CallTool(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, apperr.Validation("invalid request: %v", err))
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		fail(c, apperr.Validation("invalid request: body is not valid JSON"))
		return
	}

	res, err := h.tools.Call(c.Request.Context(), c.Param("name"), body)
	if errors.Is(err, tools.ErrUnknownTool) {
		fail(c, apperr.NotFound("tool %q not found", c.Param("name")))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
