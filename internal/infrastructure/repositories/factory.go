package repositories

import (
	"context"

	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/provider"
	"vodnet/internal/infrastructure/repositories/redis"
	"vodnet/internal/infrastructure/repositories/rest"
	"vodnet/pkg/config"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory builds the repositories backed by the provider's data
// API, layering a Redis cache over the catalog when Redis is reachable.
type RepositoryFactory struct {
	client      *provider.Client
	cfg         *config.Config
	useRedis    bool
	redisClient *goredis.Client
	metrics     redis.CacheMetrics
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, client *provider.Client, metrics redis.CacheMetrics, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		client:   client,
		cfg:      cfg,
		useRedis: cfg.Redis.Enabled,
		metrics:  metrics,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, catalog cache disabled",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = redisClient
			logger.Info("using Redis catalog cache")
		}
	}

	return factory, nil
}

// CreateCatalogRepository returns the catalog source, Redis-cached when
// available.
func (f *RepositoryFactory) CreateCatalogRepository() ports.CatalogRepository {
	catalog := rest.NewRestCatalogRepository(f.client)
	if f.useRedis && f.redisClient != nil {
		return redis.NewCachedCatalogRepository(catalog, f.redisClient, f.cfg.Catalog.ListCacheTTL, f.metrics, f.logger)
	}
	return catalog
}

func (f *RepositoryFactory) CreateScheduleRepository() ports.ScheduleRepository {
	return rest.NewRestScheduleRepository(f.client)
}

func (f *RepositoryFactory) CreatePlanRepository() ports.PlanRepository {
	return rest.NewRestPlanRepository(f.client)
}

func (f *RepositoryFactory) CreateHistoryRepository() ports.HistoryRepository {
	return rest.NewRestHistoryRepository(f.client)
}

// RedisClient exposes the cache connection for health probing, nil when the
// cache is disabled or unreachable.
func (f *RepositoryFactory) RedisClient() *goredis.Client {
	if !f.useRedis {
		return nil
	}
	return f.redisClient
}

// Close closes the Redis connection if one was established.
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redis.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck pings Redis when the cache is in use.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
