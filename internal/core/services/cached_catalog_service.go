package services

import (
	"context"
	"fmt"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/pkg/cache"
)

// CachedCatalogService wraps CatalogService with TTL caching. Catalog data
// changes rarely and is read on every browse screen, so even a short TTL takes
// most of the load off the backend.
type CachedCatalogService struct {
	baseService ports.CatalogService
	cache       *cache.CacheWithFallback
	listTTL     time.Duration
	titleTTL    time.Duration
}

// NewCachedCatalogService creates a caching decorator around a catalog service.
func NewCachedCatalogService(
	baseService ports.CatalogService,
	listTTL time.Duration,
	titleTTL time.Duration,
) *CachedCatalogService {
	return &CachedCatalogService{
		baseService: baseService,
		cache:       cache.NewCacheWithFallback(listTTL),
		listTTL:     listTTL,
		titleTTL:    titleTTL,
	}
}

func (s *CachedCatalogService) Browse(ctx context.Context, query ports.CatalogQuery) ([]*domain.Title, error) {
	// Searches are too varied to be worth caching.
	if query.Search != "" {
		return s.baseService.Browse(ctx, query)
	}

	cacheKey := fmt.Sprintf("catalog:browse:%s:%s:%d", query.CategorySlug, query.Type, query.Limit)
	value, err := s.cache.GetOrSet(ctx, cacheKey, func(ctx context.Context) (interface{}, error) {
		return s.baseService.Browse(ctx, query)
	}, s.listTTL)
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Title), nil
}

func (s *CachedCatalogService) Featured(ctx context.Context) ([]*domain.Title, error) {
	value, err := s.cache.GetOrSet(ctx, "catalog:featured", func(ctx context.Context) (interface{}, error) {
		return s.baseService.Featured(ctx)
	}, s.listTTL)
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Title), nil
}

func (s *CachedCatalogService) Trending(ctx context.Context) ([]*domain.Title, error) {
	value, err := s.cache.GetOrSet(ctx, "catalog:trending", func(ctx context.Context) (interface{}, error) {
		return s.baseService.Trending(ctx)
	}, s.listTTL)
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Title), nil
}

func (s *CachedCatalogService) GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error) {
	cacheKey := fmt.Sprintf("catalog:title:%s", id)
	value, err := s.cache.GetOrSet(ctx, cacheKey, func(ctx context.Context) (interface{}, error) {
		return s.baseService.GetTitle(ctx, id)
	}, s.titleTTL)
	if err != nil {
		return nil, err
	}
	return value.(*domain.Title), nil
}

func (s *CachedCatalogService) Categories(ctx context.Context) ([]*domain.Category, error) {
	value, err := s.cache.GetOrSet(ctx, "catalog:categories", func(ctx context.Context) (interface{}, error) {
		return s.baseService.Categories(ctx)
	}, s.listTTL)
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Category), nil
}

func (s *CachedCatalogService) Collections(ctx context.Context) ([]*domain.Collection, error) {
	value, err := s.cache.GetOrSet(ctx, "catalog:collections", func(ctx context.Context) (interface{}, error) {
		return s.baseService.Collections(ctx)
	}, s.listTTL)
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Collection), nil
}

// Invalidate clears cached catalog entries with the given key prefix, or the
// whole catalog cache when prefix is empty.
func (s *CachedCatalogService) Invalidate(prefix string) {
	if prefix == "" {
		prefix = "catalog:"
	}
	s.cache.Invalidate(prefix)
}

// Stop terminates the background cache cleanup.
func (s *CachedCatalogService) Stop() {
	s.cache.Stop()
}
