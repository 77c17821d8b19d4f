package monitoring

import (
	"context"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// AddRedisCheck adds a Redis health check
func (h *HealthChecker) AddRedisCheck(client *redis.Client, interval, timeout time.Duration) {
	h.AddCheck("redis", func(ctx context.Context) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// AddProviderCheck verifies the hosted backend's data API is reachable by
// listing categories, the cheapest read the catalog exposes.
func (h *HealthChecker) AddProviderCheck(catalog ports.CatalogRepository, interval, timeout time.Duration) {
	h.AddCheck("provider", func(ctx context.Context) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if _, err := catalog.ListCategories(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// AddSessionCheck reports unhealthy while the session is still uninitialized,
// which means Initialize never ran or never completed.
func (h *HealthChecker) AddSessionCheck(manager ports.SessionManager, interval, timeout time.Duration) {
	h.AddCheck("session", func(ctx context.Context) (bool, error) {
		return manager.Current().Status != domain.SessionUninitialized, nil
	}, interval, timeout)
}
