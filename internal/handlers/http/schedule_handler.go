package http

import (
	"net/http"
	"time"

	"vodnet/internal/core/ports"
	"vodnet/pkg/errors"
	"vodnet/pkg/utils"

	"github.com/gin-gonic/gin"
)

const defaultUpcomingWindow = 24 * time.Hour

type ScheduleHandler struct {
	schedule ports.ScheduleService
}

func NewScheduleHandler(schedule ports.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

func (h *ScheduleHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/schedule")
	{
		api.GET("/now", h.Now)
		api.GET("/upcoming", h.Upcoming)
	}
}

func (h *ScheduleHandler) Now(c *gin.Context) {
	entry, err := h.schedule.OnAir(c.Request.Context(), utils.Now())
	if err != nil {
		c.Error(errors.NewInternalError("failed to load schedule"))
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"on_air": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"on_air": entry})
}

func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	window := defaultUpcomingWindow
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 || parsed > 7*24*time.Hour {
			c.Error(errors.NewInvalidInputError("window must be a duration up to 168h"))
			return
		}
		window = parsed
	}

	entries, err := h.schedule.Upcoming(c.Request.Context(), utils.Now(), window)
	if err != nil {
		c.Error(errors.NewInternalError("failed to load schedule"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
