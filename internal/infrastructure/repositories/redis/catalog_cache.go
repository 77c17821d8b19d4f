package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefix carries a format version; bump it when the cached JSON shape
// changes so stale entries from an older build are never decoded.
const catalogKeyPrefix = "vodnet:catalog:v1:"

// CacheMetrics receives hit/miss counts. May be nil.
type CacheMetrics interface {
	RecordCatalogCacheHit()
	RecordCatalogCacheMiss()
}

// CachedCatalogRepository is a read-through Redis cache in front of another
// CatalogRepository. Cache failures are logged and treated as misses, the
// source of truth always wins.
type CachedCatalogRepository struct {
	inner   ports.CatalogRepository
	client  *redis.Client
	ttl     time.Duration
	metrics CacheMetrics
	logger  *zap.SugaredLogger
}

func NewCachedCatalogRepository(inner ports.CatalogRepository, client *redis.Client, ttl time.Duration, metrics CacheMetrics, logger *zap.SugaredLogger) ports.CatalogRepository {
	return &CachedCatalogRepository{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func (r *CachedCatalogRepository) ListTitles(ctx context.Context, query ports.CatalogQuery) ([]*domain.Title, error) {
	// Search results are not cached, the keyspace would be unbounded.
	if query.Search != "" {
		return r.inner.ListTitles(ctx, query)
	}

	key := fmt.Sprintf("%stitles:%s:%s:%d", catalogKeyPrefix, query.CategorySlug, query.Type, query.Limit)
	var titles []*domain.Title
	if r.lookup(ctx, key, &titles) {
		return titles, nil
	}

	titles, err := r.inner.ListTitles(ctx, query)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, titles)
	return titles, nil
}

func (r *CachedCatalogRepository) ListFeatured(ctx context.Context) ([]*domain.Title, error) {
	return r.cachedTitles(ctx, catalogKeyPrefix+"featured", r.inner.ListFeatured)
}

func (r *CachedCatalogRepository) ListTrending(ctx context.Context) ([]*domain.Title, error) {
	return r.cachedTitles(ctx, catalogKeyPrefix+"trending", r.inner.ListTrending)
}

func (r *CachedCatalogRepository) cachedTitles(ctx context.Context, key string, load func(context.Context) ([]*domain.Title, error)) ([]*domain.Title, error) {
	var titles []*domain.Title
	if r.lookup(ctx, key, &titles) {
		return titles, nil
	}

	titles, err := load(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, titles)
	return titles, nil
}

func (r *CachedCatalogRepository) GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error) {
	key := catalogKeyPrefix + "title:" + string(id)
	var title domain.Title
	if r.lookup(ctx, key, &title) {
		return &title, nil
	}

	result, err := r.inner.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, result)
	return result, nil
}

func (r *CachedCatalogRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	key := catalogKeyPrefix + "categories"
	var categories []*domain.Category
	if r.lookup(ctx, key, &categories) {
		return categories, nil
	}

	categories, err := r.inner.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, categories)
	return categories, nil
}

func (r *CachedCatalogRepository) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	key := catalogKeyPrefix + "collections"
	var collections []*domain.Collection
	if r.lookup(ctx, key, &collections) {
		return collections, nil
	}

	collections, err := r.inner.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, collections)
	return collections, nil
}

// lookup reports whether key held a decodable entry.
func (r *CachedCatalogRepository) lookup(ctx context.Context, key string, out interface{}) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		r.recordMiss()
		return false
	}
	if err != nil {
		r.logger.Warnw("catalog cache read failed", "key", key, "error", err)
		r.recordMiss()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		r.logger.Warnw("dropping undecodable catalog cache entry", "key", key, "error", err)
		r.client.Del(ctx, key)
		r.recordMiss()
		return false
	}
	if r.metrics != nil {
		r.metrics.RecordCatalogCacheHit()
	}
	return true
}

func (r *CachedCatalogRepository) recordMiss() {
	if r.metrics != nil {
		r.metrics.RecordCatalogCacheMiss()
	}
}

func (r *CachedCatalogRepository) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warnw("failed to encode catalog cache entry", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warnw("catalog cache write failed", "key", key, "error", err)
	}
}
