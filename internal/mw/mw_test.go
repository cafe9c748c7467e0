package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"racksum-backend/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIPRateLimiter_PerClient(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2, time.Minute)

	a := limiter.GetLimiter("10.0.0.1")
	assert.Same(t, a, limiter.GetLimiter("10.0.0.1"))
	assert.NotSame(t, a, limiter.GetLimiter("10.0.0.2"))
	assert.Equal(t, 2, limiter.Len())
}

func TestIPRateLimiter_Expires(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1, 20*time.Millisecond)
	first := limiter.GetLimiter("10.0.0.1")

	time.Sleep(40 * time.Millisecond)

	assert.NotSame(t, first, limiter.GetLimiter("10.0.0.1"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimiter(NewIPRateLimiter(rate.Limit(0.001), 2, time.Minute)))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLogger_RecordsRoutePattern(t *testing.T) {
	router := gin.New()
	router.Use(Logger())
	router.GET("/racks/:rack_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/racks/:rack_id", "204")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/racks/17", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
