package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/logger"
	"racksum-backend/internal/placement"
	"racksum-backend/internal/resource"
	"racksum-backend/internal/store"
	"racksum-backend/internal/tools"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store           store.Store
	agg             *resource.Aggregator
	tools           *tools.Registry
	defaultRUHeight int
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, agg *resource.Aggregator, reg *tools.Registry, defaultRUHeight int) *Handler {
	return &Handler{
		store:           s,
		agg:             agg,
		tools:           reg,
		defaultRUHeight: defaultRUHeight,
	}
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string          `json:"error"`
	Kind  apperr.Kind     `json:"kind"`
	Range *placement.Span `json:"range,omitempty"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindOutOfBounds, apperr.KindInvalidPlacementRule:
		return http.StatusUnprocessableEntity
	case apperr.KindPositionConflict, apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newErrorResponse(err error) errorResponse {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		return errorResponse{Error: "internal server error", Kind: apperr.KindInternal}
	}
	resp := errorResponse{Error: appErr.Error(), Kind: appErr.Kind}
	if appErr.HasRange() {
		resp.Range = &placement.Span{Start: appErr.Start, End: appErr.End}
	}
	return resp
}

// fail aborts the request with the status matching err's kind. Internal
// errors are logged and replaced by a generic message.
func fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(kind), newErrorResponse(err))
}

// pathID parses a numeric path parameter, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		fail(c, apperr.Validation("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, apperr.Validation("invalid request: %v", err))
		return false
	}
	return true
}

// Healthz reports whether the database is reachable.
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		logger.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
