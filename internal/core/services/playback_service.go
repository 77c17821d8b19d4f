package services

import (
	"context"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"

	"go.uber.org/zap"
)

type playbackService struct {
	catalog  ports.CatalogService
	sessions ports.SessionManager
	logger   *zap.SugaredLogger
}

// NewPlaybackService gates playback resolution behind the current session's
// entitlement. The media itself lives with third-party embed providers; what
// is protected here is the descriptor that tells the player where to point.
func NewPlaybackService(
	catalog ports.CatalogService,
	sessions ports.SessionManager,
	logger *zap.SugaredLogger,
) ports.PlaybackService {
	return &playbackService{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *playbackService) Authorize(ctx context.Context, titleID domain.TitleID, episodeID domain.EpisodeID) (*domain.PlaybackDescriptor, error) {
	title, err := s.catalog.GetTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	if !s.sessions.CanWatch() {
		s.logger.Infow("playback denied", "title_id", titleID)
		return nil, domain.ErrPaymentRequired
	}

	if episodeID != "" {
		episode := findEpisode(title, episodeID)
		if episode == nil {
			return nil, domain.ErrEpisodeNotFound
		}
		return &domain.PlaybackDescriptor{
			TitleID:   title.ID,
			EpisodeID: episode.ID,
			Source:    episode.VideoSource,
			URL:       episode.VideoURL,
		}, nil
	}

	if title.Type == domain.ContentSeries {
		// A series has no media of its own; the caller must name an episode.
		return nil, domain.ErrEpisodeNotFound
	}
	if title.VideoURL == "" {
		return nil, domain.ErrTitleNotFound
	}

	return &domain.PlaybackDescriptor{
		TitleID: title.ID,
		Source:  title.VideoSource,
		URL:     title.VideoURL,
	}, nil
}

func (s *playbackService) Trailer(ctx context.Context, titleID domain.TitleID) (*domain.PlaybackDescriptor, error) {
	title, err := s.catalog.GetTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if title.TrailerURL == "" {
		return nil, domain.ErrTitleNotFound
	}

	// Trailers are free: no entitlement check.
	return &domain.PlaybackDescriptor{
		TitleID: title.ID,
		Source:  title.VideoSource,
		URL:     title.TrailerURL,
		Trailer: true,
	}, nil
}

func findEpisode(title *domain.Title, id domain.EpisodeID) *domain.Episode {
	for si := range title.Seasons {
		for ei := range title.Seasons[si].Episodes {
			if title.Seasons[si].Episodes[ei].ID == id {
				return &title.Seasons[si].Episodes[ei]
			}
		}
	}
	return nil
}
