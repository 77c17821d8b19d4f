package ports

import (
	"context"
	"time"

	"vodnet/internal/core/domain"
)

// SessionManager owns the process-wide authentication state. One instance per
// process; exactly one user can be signed in at a time. Every state change
// publishes a complete replacement Session to all subscribers. Concurrent
// operations are not serialized: whichever publish lands last wins, with the
// provider as the source of truth.
type SessionManager interface {
	// Initialize bootstraps the session from the provider and registers the
	// auth-event listener for the lifetime of ctx. Safe to call once; a second
	// call returns domain.ErrAlreadyInitialized. Provider failures degrade to
	// an anonymous session and are not returned.
	Initialize(ctx context.Context) error

	// Login signs in with email/password. On failure the published session is
	// left untouched and the provider's message is returned.
	Login(ctx context.Context, email, password string) error

	// Register creates an account, provisions its profile with default
	// entitlement fields, and publishes the authenticated session.
	Register(ctx context.Context, email, password, displayName string) error

	// Logout signs out with the provider and unconditionally publishes an
	// anonymous session, even when the provider call fails.
	Logout(ctx context.Context) error

	// UpdateProfile applies a partial profile update for the signed-in user and
	// merges it into the published session on success.
	UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error

	// Current returns the last published session.
	Current() domain.Session

	// CanWatch reports playback eligibility of the current session right now.
	CanWatch() bool

	// Subscribe returns a channel receiving every published session plus an
	// unsubscribe func. The current session is delivered first.
	Subscribe() (<-chan domain.Session, func())
}

type CatalogService interface {
	Browse(ctx context.Context, query CatalogQuery) ([]*domain.Title, error)
	Featured(ctx context.Context) ([]*domain.Title, error)
	Trending(ctx context.Context) ([]*domain.Title, error)
	GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error)
	Categories(ctx context.Context) ([]*domain.Category, error)
	Collections(ctx context.Context) ([]*domain.Collection, error)
}

// PlaybackService gates media resolution behind the entitlement predicate.
type PlaybackService interface {
	// Authorize resolves the playback descriptor for a title (or an episode of
	// it). Returns domain.ErrPaymentRequired when the current session is not
	// entitled, domain.ErrTitleNotFound for unknown or unpublished titles.
	Authorize(ctx context.Context, titleID domain.TitleID, episodeID domain.EpisodeID) (*domain.PlaybackDescriptor, error)

	// Trailer resolves the free trailer descriptor, if the title has one.
	Trailer(ctx context.Context, titleID domain.TitleID) (*domain.PlaybackDescriptor, error)
}

type ScheduleService interface {
	// OnAir returns the program running at the given instant, or nil.
	OnAir(ctx context.Context, now time.Time) (*domain.ScheduleEntry, error)
	Upcoming(ctx context.Context, now time.Time, window time.Duration) ([]*domain.ScheduleEntry, error)
}

type PlanService interface {
	ActivePlans(ctx context.Context) ([]*domain.Plan, error)
}

type HistoryService interface {
	// RecordProgress stores the playback position for the signed-in user.
	// Writes are batched; Flush forces them out.
	RecordProgress(ctx context.Context, titleID domain.TitleID, episodeID domain.EpisodeID, progressSeconds int, completed bool) error
	ContinueWatching(ctx context.Context, limit int) ([]*domain.WatchEntry, error)
	Flush(ctx context.Context) error
}
