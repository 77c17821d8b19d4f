package http

import (
	"net/http"

	"vodnet/internal/core/ports"
	"vodnet/pkg/errors"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	plans ports.PlanService
}

func NewPlanHandler(plans ports.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

func (h *PlanHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/api/v1/plans", h.List)
}

func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.plans.ActivePlans(c.Request.Context())
	if err != nil {
		c.Error(errors.NewInternalError("failed to list plans"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}
