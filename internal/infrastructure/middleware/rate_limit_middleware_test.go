package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vodnet/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewHTTPRateLimitMiddleware(cfg))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doGet(router *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "127.0.0.1:50000"
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitDisabledAllowsEverything(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = false

	router := newRateLimitedRouter(cfg)
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, doGet(router))
	}
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.HTTP.RequestsPerSecond = 1
	cfg.RateLimiting.HTTP.Burst = 1
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	router := newRateLimitedRouter(cfg)

	assert.Equal(t, http.StatusOK, doGet(router))
	assert.Equal(t, http.StatusTooManyRequests, doGet(router))
}

func TestRateLimitTracksAddressesSeparately(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.HTTP.RequestsPerSecond = 1
	cfg.RateLimiting.HTTP.Burst = 1
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	router := newRateLimitedRouter(cfg)

	require.Equal(t, http.StatusOK, doGet(router))
	require.Equal(t, http.StatusTooManyRequests, doGet(router))

	// A different client address gets its own bucket.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "192.168.1.20:50000"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
