package domain

import (
	"time"
)

// SessionStatus tracks where the process-wide session is in its lifecycle.
type SessionStatus string

const (
	SessionUninitialized SessionStatus = "uninitialized"
	SessionLoading       SessionStatus = "loading"
	SessionAuthenticated SessionStatus = "authenticated"
	SessionAnonymous     SessionStatus = "anonymous"
)

// Session is the published authentication state. It is replaced as a whole on
// every transition, never mutated in place, so readers always observe a
// complete state. Profile is set only when Status is SessionAuthenticated.
type Session struct {
	Status  SessionStatus
	Profile *Profile
}

// Authenticated reports whether the session carries a signed-in identity.
func (s Session) Authenticated() bool {
	return s.Status == SessionAuthenticated && s.Profile != nil
}

// CanWatchAt decides playback eligibility for paid content at the given
// instant. Admin access is evaluated strictly before subscription status, so an
// active admin grant entitles a user whose subscription has lapsed, while an
// expired admin grant falls through to the subscription check. Comparisons are
// strict: an expiry equal to now is already expired.
func (s Session) CanWatchAt(now time.Time) bool {
	if !s.Authenticated() {
		return false
	}
	p := s.Profile

	if p.AdminAccess {
		if p.AdminAccessUntil == nil {
			return true
		}
		return now.Before(*p.AdminAccessUntil)
	}

	if p.SubscriptionTier != TierNone && p.SubscriptionExpiresAt != nil {
		return now.Before(*p.SubscriptionExpiresAt)
	}

	return false
}
