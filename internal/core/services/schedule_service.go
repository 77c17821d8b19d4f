package services

import (
	"context"
	"sort"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
)

// scheduleLookback bounds how far back a program may have started and still be
// on air. Guide slots longer than this are not a thing.
const scheduleLookback = 12 * time.Hour

type scheduleService struct {
	repo ports.ScheduleRepository
}

// NewScheduleService returns the live-TV guide service.
func NewScheduleService(repo ports.ScheduleRepository) ports.ScheduleService {
	return &scheduleService{repo: repo}
}

func (s *scheduleService) OnAir(ctx context.Context, now time.Time) (*domain.ScheduleEntry, error) {
	entries, err := s.repo.ListBetween(ctx, now.Add(-scheduleLookback), now.Add(time.Minute))
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.OnAirAt(now) {
			return e, nil
		}
	}
	return nil, nil
}

func (s *scheduleService) Upcoming(ctx context.Context, now time.Time, window time.Duration) ([]*domain.ScheduleEntry, error) {
	entries, err := s.repo.ListBetween(ctx, now, now.Add(window))
	if err != nil {
		return nil, err
	}

	upcoming := make([]*domain.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		if e.EndTime.After(now) {
			upcoming = append(upcoming, e)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime.Before(upcoming[j].StartTime)
	})
	return upcoming, nil
}
