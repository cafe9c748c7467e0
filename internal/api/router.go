package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"racksum-backend/internal/mw"
	"racksum-backend/internal/resource"
	"racksum-backend/internal/store"
	"racksum-backend/internal/tools"
)

// Options tunes the router. A RateLimit of zero disables rate limiting.
type Options struct {
	RateLimit       rate.Limit
	RateBurst       int
	LimiterTTL      time.Duration
	DefaultRUHeight int
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, agg *resource.Aggregator, reg *tools.Registry, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(mw.Logger(), gin.Recovery())

	handler := NewHandler(s, agg, reg, opts.DefaultRUHeight)

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if opts.RateLimit > 0 {
		api.Use(mw.RateLimiter(mw.NewIPRateLimiter(opts.RateLimit, opts.RateBurst, opts.LimiterTTL)))
	}
	{
		api.GET("/sites", handler.ListSites)
		api.POST("/sites", handler.CreateSite)
		api.GET("/sites/:site_id", handler.GetSite)
		api.PUT("/sites/:site_id", handler.UpdateSite)
		api.DELETE("/sites/:site_id", handler.DeleteSite)
		api.GET("/sites/:site_id/stats", handler.GetSiteStats)

		api.GET("/devices", handler.ListDevices)
		api.POST("/devices", handler.CreateDevice)
		api.GET("/devices/:device_id", handler.GetDevice)
		api.PUT("/devices/:device_id", handler.UpdateDevice)
		api.DELETE("/devices/:device_id", handler.DeleteDevice)

		api.GET("/sites/:site_id/racks", handler.ListRacks)
		api.POST("/sites/:site_id/racks", handler.CreateRack)
		api.GET("/racks/:rack_id", handler.GetRack)
		api.PUT("/racks/:rack_id", handler.UpdateRack)
		api.DELETE("/racks/:rack_id", handler.DeleteRack)
		api.GET("/racks/:rack_id/usage", handler.GetRackUsage)

		api.GET("/racks/:rack_id/devices", handler.ListPlacements)
		api.POST("/racks/:rack_id/devices", handler.PlaceDevice)
		api.PUT("/racks/:rack_id/devices/:placement_id", handler.MovePlacement)
		api.DELETE("/racks/:rack_id/devices/:placement_id", handler.RemovePlacement)
		api.POST("/racks/:rack_id/check", handler.CheckPlacement)

		api.GET("/sites/:site_id/providers", handler.ListProviders)
		api.POST("/sites/:site_id/providers", handler.CreateProvider)
		api.GET("/providers/:provider_id", handler.GetProvider)
		api.PUT("/providers/:provider_id", handler.UpdateProvider)
		api.DELETE("/providers/:provider_id", handler.DeleteProvider)

		api.GET("/configurations", handler.ListAllConfigurations)
		api.GET("/sites/:site_id/configurations", handler.ListConfigurations)
		api.POST("/sites/:site_id/configurations", handler.SaveConfiguration)
		api.GET("/sites/:site_id/configurations/:name", handler.GetConfiguration)
		api.DELETE("/configurations/:config_id", handler.DeleteConfiguration)

		api.GET("/summary", handler.GetSummary)

		api.GET("/tools", handler.ListTools)
		api.POST("/tools/:name", handler.CallTool)
	}

	return r
}
