package http

import (
	"net/http"
	"strconv"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/middleware"
	"vodnet/pkg/errors"
	"vodnet/pkg/validation"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	history  ports.HistoryService
	sessions ports.SessionManager
}

func NewHistoryHandler(history ports.HistoryService, sessions ports.SessionManager) *HistoryHandler {
	return &HistoryHandler{
		history:  history,
		sessions: sessions,
	}
}

func (h *HistoryHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/history")
	api.Use(middleware.RequireSession(h.sessions))
	{
		api.POST("/progress", h.RecordProgress)
		api.GET("/continue-watching", h.ContinueWatching)
	}
}

type ProgressRequest struct {
	TitleID         string `json:"title_id" binding:"required"`
	EpisodeID       string `json:"episode_id"`
	ProgressSeconds int    `json:"progress_seconds"`
	Completed       bool   `json:"completed"`
}

func (h *HistoryHandler) RecordProgress(c *gin.Context) {
	var req ProgressRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := validation.ValidateProgressSeconds(req.ProgressSeconds); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	err := h.history.RecordProgress(
		c.Request.Context(),
		domain.TitleID(req.TitleID),
		domain.EpisodeID(req.EpisodeID),
		req.ProgressSeconds,
		req.Completed,
	)
	if err != nil {
		if err == domain.ErrNotAuthenticated {
			c.Error(errors.NewUnauthorizedError("authentication required"))
			return
		}
		c.Error(errors.NewInternalError("failed to record progress"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *HistoryHandler) ContinueWatching(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.Error(errors.NewInvalidInputError("limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	entries, err := h.history.ContinueWatching(c.Request.Context(), limit)
	if err != nil {
		if err == domain.ErrNotAuthenticated {
			c.Error(errors.NewUnauthorizedError("authentication required"))
			return
		}
		c.Error(errors.NewInternalError("failed to load watch history"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
