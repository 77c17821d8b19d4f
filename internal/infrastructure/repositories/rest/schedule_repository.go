package rest

import (
	"context"
	"net/url"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/provider"
	"vodnet/pkg/utils"
)

type RestScheduleRepository struct {
	client *provider.Client
}

func NewRestScheduleRepository(client *provider.Client) ports.ScheduleRepository {
	return &RestScheduleRepository{client: client}
}

func (r *RestScheduleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduleEntry, error) {
	q := url.Values{}
	q.Set("select", "*")
	// Overlap with [from, to): starts before the window ends and ends after
	// the window starts.
	q.Set("start_time", "lt."+utils.FormatTimestamp(to.UTC()))
	q.Set("end_time", "gt."+utils.FormatTimestamp(from.UTC()))
	q.Set("order", "start_time.asc")

	var entries []*domain.ScheduleEntry
	if err := r.client.Select(ctx, "tv_schedule", q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
