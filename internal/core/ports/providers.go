package ports

import (
	"context"
	"time"

	"vodnet/internal/core/domain"
)

// ProviderSession is the token material the identity provider hands out for a
// signed-in user. ExpiresAt comes from the access token's exp claim.
type ProviderSession struct {
	UserID       domain.UserID
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AuthEventKind classifies a provider-pushed session change.
type AuthEventKind string

const (
	AuthEventSignedIn       AuthEventKind = "signed_in"
	AuthEventSignedOut      AuthEventKind = "signed_out"
	AuthEventTokenRefreshed AuthEventKind = "token_refreshed"
)

// AuthEvent is one session-change notification from the provider. Session is
// nil for AuthEventSignedOut.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *ProviderSession
}

// IdentityProvider is the auth half of the hosted backend: credential
// verification and session issuance. Error messages returned by the provider
// are surfaced to callers verbatim; this layer never reclassifies them.
type IdentityProvider interface {
	// GetSession returns the currently persisted session, or nil if the device
	// has no signed-in user.
	GetSession(ctx context.Context) (*ProviderSession, error)

	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)

	// SignUp creates an account and returns the session for it.
	SignUp(ctx context.Context, email, password, displayName string) (*ProviderSession, error)

	// SignOut revokes the current session with the provider.
	SignOut(ctx context.Context) error

	// SubscribeAuthEvents returns a channel of session-change notifications and
	// an unsubscribe func. The channel is closed on unsubscribe or when ctx is
	// cancelled.
	SubscribeAuthEvents(ctx context.Context) (<-chan AuthEvent, func(), error)
}

// ProfileStore is the data half of the hosted backend, scoped to the profiles
// table.
type ProfileStore interface {
	// FetchProfile returns the profile for the given user, or
	// domain.ErrProfileNotFound.
	FetchProfile(ctx context.Context, id domain.UserID) (*domain.Profile, error)

	// InsertProfile creates the profile row for a freshly registered account.
	InsertProfile(ctx context.Context, profile *domain.Profile) error

	// UpdateProfile applies a partial update keyed by user id.
	UpdateProfile(ctx context.Context, id domain.UserID, patch domain.ProfilePatch) error
}
