package http

import (
	"net/http"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/middleware"
	"vodnet/internal/infrastructure/monitoring"
	"vodnet/pkg/errors"

	"github.com/gin-gonic/gin"
)

type PlaybackHandler struct {
	playback ports.PlaybackService
	sessions ports.SessionManager
	metrics  *monitoring.PrometheusCollector
}

func NewPlaybackHandler(playback ports.PlaybackService, sessions ports.SessionManager, metrics *monitoring.PrometheusCollector) *PlaybackHandler {
	return &PlaybackHandler{
		playback: playback,
		sessions: sessions,
		metrics:  metrics,
	}
}

func (h *PlaybackHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/watch")
	{
		// Trailers are free; no session guard.
		api.GET("/:id/trailer", h.Trailer)

		guarded := api.Group("")
		guarded.Use(middleware.RequireSession(h.sessions))
		guarded.GET("/:id", h.Watch)
	}
}

func (h *PlaybackHandler) Watch(c *gin.Context) {
	titleID := domain.TitleID(c.Param("id"))
	episodeID := domain.EpisodeID(c.Query("episode"))

	descriptor, err := h.playback.Authorize(c.Request.Context(), titleID, episodeID)
	if h.metrics != nil {
		h.metrics.RecordPlaybackDecision(err == nil)
	}
	if err != nil {
		switch err {
		case domain.ErrPaymentRequired:
			c.Error(errors.NewPaymentRequiredError("an active subscription is required"))
		case domain.ErrTitleNotFound:
			c.Error(errors.NewNotFoundError("title"))
		case domain.ErrEpisodeNotFound:
			c.Error(errors.NewNotFoundError("episode"))
		default:
			c.Error(errors.NewInternalError("failed to authorize playback"))
		}
		return
	}

	c.JSON(http.StatusOK, descriptor)
}

func (h *PlaybackHandler) Trailer(c *gin.Context) {
	descriptor, err := h.playback.Trailer(c.Request.Context(), domain.TitleID(c.Param("id")))
	if err != nil {
		if err == domain.ErrTitleNotFound {
			c.Error(errors.NewNotFoundError("title"))
			return
		}
		c.Error(errors.NewInternalError("failed to resolve trailer"))
		return
	}

	c.JSON(http.StatusOK, descriptor)
}
