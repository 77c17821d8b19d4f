package http

import (
	"net/http"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/middleware"
	"vodnet/pkg/errors"
	"vodnet/pkg/validation"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	sessions ports.SessionManager
}

func NewProfileHandler(sessions ports.SessionManager) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

func (h *ProfileHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/profile")
	api.Use(middleware.RequireSession(h.sessions))
	{
		api.GET("", h.Get)
		api.PATCH("", h.Update)
	}
}

type UpdateProfileRequest struct {
	DisplayName       *string `json:"display_name"`
	AvatarURL         *string `json:"avatar_url"`
	PreferredLanguage *string `json:"preferred_language"`
}

func (h *ProfileHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Current().Profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	patch := domain.ProfilePatch{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	}
	if req.DisplayName != nil {
		if err := validation.ValidateDisplayName(*req.DisplayName); err != nil {
			c.Error(errors.NewInvalidInputError(err.Error()))
			return
		}
	}
	if req.PreferredLanguage != nil {
		lang := domain.Language(*req.PreferredLanguage)
		if lang != domain.LanguageRU && lang != domain.LanguageUZ {
			c.Error(errors.NewInvalidInputError("unsupported language"))
			return
		}
		patch.PreferredLanguage = &lang
	}

	if err := h.sessions.UpdateProfile(c.Request.Context(), patch); err != nil {
		if err == domain.ErrNotAuthenticated {
			c.Error(errors.NewUnauthorizedError("authentication required"))
			return
		}
		c.Error(errors.NewInternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.sessions.Current().Profile)
}
