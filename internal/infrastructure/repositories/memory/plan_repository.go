package memory

import (
	"context"
	"sort"
	"sync"

	"vodnet/internal/core/domain"
)

type MemoryPlanRepository struct {
	plans map[string]*domain.Plan
	mu    sync.RWMutex
}

func NewMemoryPlanRepository() *MemoryPlanRepository {
	return &MemoryPlanRepository{
		plans: make(map[string]*domain.Plan),
	}
}

func (r *MemoryPlanRepository) AddPlan(plan *domain.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID] = plan
}

func (r *MemoryPlanRepository) ListActive(ctx context.Context) ([]*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Plan
	for _, plan := range r.plans {
		if plan.Active {
			result = append(result, plan)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PriceMonthly < result[j].PriceMonthly
	})
	return result, nil
}
