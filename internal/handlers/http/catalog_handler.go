package http

import (
	"context"
	"net/http"
	"strconv"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/pkg/errors"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/catalog")
	{
		api.GET("/titles", h.Browse)
		api.GET("/titles/:id", h.GetTitle)
		api.GET("/featured", h.Featured)
		api.GET("/trending", h.Trending)
		api.GET("/categories", h.Categories)
		api.GET("/collections", h.Collections)
	}
}

func (h *CatalogHandler) Browse(c *gin.Context) {
	query := ports.CatalogQuery{
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
	}

	switch contentType := c.Query("type"); contentType {
	case "":
	case string(domain.ContentMovie), string(domain.ContentSeries):
		query.Type = domain.ContentType(contentType)
	default:
		c.Error(errors.NewInvalidInputError("unknown content type"))
		return
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 200 {
			c.Error(errors.NewInvalidInputError("limit must be between 1 and 200"))
			return
		}
		query.Limit = limit
	}

	titles, err := h.catalog.Browse(c.Request.Context(), query)
	if err != nil {
		c.Error(errors.NewInternalError("failed to list titles"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

func (h *CatalogHandler) GetTitle(c *gin.Context) {
	title, err := h.catalog.GetTitle(c.Request.Context(), domain.TitleID(c.Param("id")))
	if err != nil {
		if err == domain.ErrTitleNotFound {
			c.Error(errors.NewNotFoundError("title"))
			return
		}
		c.Error(errors.NewInternalError("failed to load title"))
		return
	}

	c.JSON(http.StatusOK, title)
}

func (h *CatalogHandler) Featured(c *gin.Context) {
	h.list(c, h.catalog.Featured)
}

func (h *CatalogHandler) Trending(c *gin.Context) {
	h.list(c, h.catalog.Trending)
}

func (h *CatalogHandler) list(c *gin.Context, load func(ctx context.Context) ([]*domain.Title, error)) {
	titles, err := load(c.Request.Context())
	if err != nil {
		c.Error(errors.NewInternalError("failed to list titles"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		c.Error(errors.NewInternalError("failed to list categories"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CatalogHandler) Collections(c *gin.Context) {
	collections, err := h.catalog.Collections(c.Request.Context())
	if err != nil {
		c.Error(errors.NewInternalError("failed to list collections"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}
