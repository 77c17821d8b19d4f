package services

import (
	"context"
	"sort"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
)

type planService struct {
	repo ports.PlanRepository
}

// NewPlanService returns the subscription-plan listing service. Purchases go
// through the backend's billing integration, not through this process.
func NewPlanService(repo ports.PlanRepository) ports.PlanService {
	return &planService{repo: repo}
}

func (s *planService) ActivePlans(ctx context.Context) ([]*domain.Plan, error) {
	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].PriceMonthly < plans[j].PriceMonthly
	})
	return plans, nil
}
