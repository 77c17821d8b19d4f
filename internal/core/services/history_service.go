package services

import (
	"context"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/pkg/batch"
	"vodnet/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type historyService struct {
	repo     ports.HistoryRepository
	sessions ports.SessionManager
	batcher  *batch.Batcher
	logger   *zap.SugaredLogger
	now      func() time.Time
}

type upsertEntryOp struct {
	repo  ports.HistoryRepository
	entry *domain.WatchEntry
}

func (op *upsertEntryOp) Execute(ctx context.Context) error {
	return op.repo.Upsert(ctx, op.entry)
}

// NewHistoryService returns the watch-history service. Progress writes arrive
// every few seconds during playback, so they are batched before hitting the
// backend.
func NewHistoryService(
	repo ports.HistoryRepository,
	sessions ports.SessionManager,
	batchSize int,
	flushInterval time.Duration,
	logger *zap.SugaredLogger,
) ports.HistoryService {
	s := &historyService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		now:      utils.Now,
	}
	s.batcher = batch.NewBatcher(batchSize, flushInterval, s)
	return s
}

// ProcessBatch implements batch.Processor.
func (s *historyService) ProcessBatch(ctx context.Context, operations []batch.Operation) error {
	for _, op := range operations {
		if err := op.Execute(ctx); err != nil {
			s.logger.Warnw("watch history write failed", "error", err)
		}
	}
	return nil
}

func (s *historyService) RecordProgress(ctx context.Context, titleID domain.TitleID, episodeID domain.EpisodeID, progressSeconds int, completed bool) error {
	session := s.sessions.Current()
	if !session.Authenticated() {
		return domain.ErrNotAuthenticated
	}

	entry := &domain.WatchEntry{
		ID:              uuid.New().String(),
		UserID:          session.Profile.ID,
		TitleID:         titleID,
		EpisodeID:       episodeID,
		ProgressSeconds: progressSeconds,
		Completed:       completed,
		LastWatchedAt:   s.now(),
	}
	return s.batcher.Add(&upsertEntryOp{repo: s.repo, entry: entry})
}

func (s *historyService) ContinueWatching(ctx context.Context, limit int) ([]*domain.WatchEntry, error) {
	session := s.sessions.Current()
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	// Push out anything pending so the list reflects the latest positions.
	if err := s.batcher.Flush(ctx); err != nil {
		s.logger.Warnw("history flush before listing failed", "error", err)
	}

	entries, err := s.repo.ListByUser(ctx, session.Profile.ID, limit)
	if err != nil {
		return nil, err
	}

	unfinished := make([]*domain.WatchEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Completed {
			unfinished = append(unfinished, e)
		}
	}
	return unfinished, nil
}

func (s *historyService) Flush(ctx context.Context) error {
	return s.batcher.Flush(ctx)
}
