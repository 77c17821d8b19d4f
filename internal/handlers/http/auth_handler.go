package http

import (
	"net/http"
	"strings"

	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/monitoring"
	"vodnet/pkg/errors"
	"vodnet/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessions ports.SessionManager
	metrics  *monitoring.PrometheusCollector
}

func NewAuthHandler(sessions ports.SessionManager, metrics *monitoring.PrometheusCollector) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		metrics:  metrics,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/login", h.Login)
		api.POST("/register", h.Register)
		api.POST("/logout", h.Logout)
		api.GET("/session", h.Session)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if h.metrics != nil {
		h.metrics.RecordLogin(err == nil)
	}
	if err != nil {
		// The provider's message goes to the user as is.
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(h.sessions.Current()))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if err := validation.ValidateEmail(req.Email); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	err := h.sessions.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if h.metrics != nil {
		h.metrics.RecordRegistration(err == nil)
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(h.sessions.Current()))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// Logout never fails; provider errors are swallowed after the local
	// session is cleared.
	_ = h.sessions.Logout(c.Request.Context())
	if h.metrics != nil {
		h.metrics.RecordLogout()
	}

	c.JSON(http.StatusOK, sessionResponse(h.sessions.Current()))
}

func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, sessionResponse(h.sessions.Current()))
}
