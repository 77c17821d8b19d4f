package rest

import (
	"context"
	"net/url"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/provider"
)

type RestPlanRepository struct {
	client *provider.Client
}

func NewRestPlanRepository(client *provider.Client) ports.PlanRepository {
	return &RestPlanRepository{client: client}
}

func (r *RestPlanRepository) ListActive(ctx context.Context) ([]*domain.Plan, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("is_active", "eq.true")
	q.Set("order", "price_monthly.asc")

	var plans []*domain.Plan
	if err := r.client.Select(ctx, "subscription_plans", q, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
