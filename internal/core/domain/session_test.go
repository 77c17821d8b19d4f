package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSession_CanWatchAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := timePtr(now.Add(time.Hour))
	past := timePtr(now.Add(-time.Hour))

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{
			name:    "anonymous session",
			session: Session{Status: SessionAnonymous},
			want:    false,
		},
		{
			name:    "loading session",
			session: Session{Status: SessionLoading},
			want:    false,
		},
		{
			name:    "authenticated without profile",
			session: Session{Status: SessionAuthenticated},
			want:    false,
		},
		{
			name: "admin grant without expiry",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				AdminAccess: true,
			}},
			want: true,
		},
		{
			name: "admin grant not yet expired",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				AdminAccess:      true,
				AdminAccessUntil: future,
			}},
			want: true,
		},
		{
			name: "admin grant expiring exactly now",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				AdminAccess:      true,
				AdminAccessUntil: timePtr(now),
			}},
			want: false,
		},
		{
			// An admin grant decides eligibility on its own; an expired
			// grant denies even when a paid subscription is still active.
			name: "expired admin grant denies despite active subscription",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				AdminAccess:           true,
				AdminAccessUntil:      past,
				SubscriptionTier:      TierPremium,
				SubscriptionExpiresAt: future,
			}},
			want: false,
		},
		{
			name: "active subscription",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				SubscriptionTier:      TierBasic,
				SubscriptionExpiresAt: future,
			}},
			want: true,
		},
		{
			name: "subscription expiring exactly now",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				SubscriptionTier:      TierBasic,
				SubscriptionExpiresAt: timePtr(now),
			}},
			want: false,
		},
		{
			name: "expired subscription",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				SubscriptionTier:      TierStandard,
				SubscriptionExpiresAt: past,
			}},
			want: false,
		},
		{
			name: "tier set but no expiry on record",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				SubscriptionTier: TierPremium,
			}},
			want: false,
		},
		{
			name: "expiry set but no tier",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				SubscriptionExpiresAt: future,
			}},
			want: false,
		},
		{
			name: "no entitlements at all",
			session: Session{Status: SessionAuthenticated, Profile: &Profile{
				DisplayName: "Viewer",
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.CanWatchAt(now))
		})
	}
}

func TestProfilePatch_ApplyTo(t *testing.T) {
	base := Profile{
		DisplayName:       "Old Name",
		AvatarURL:         "https://example.com/old.png",
		PreferredLanguage: LanguageRU,
		WalletBalance:     500,
	}

	newName := "New Name"
	lang := LanguageUZ
	patch := ProfilePatch{DisplayName: &newName, PreferredLanguage: &lang}

	merged := patch.ApplyTo(base)

	assert.Equal(t, "New Name", merged.DisplayName)
	assert.Equal(t, LanguageUZ, merged.PreferredLanguage)
	assert.Equal(t, "https://example.com/old.png", merged.AvatarURL)
	assert.Equal(t, int64(500), merged.WalletBalance)

	// The original is untouched.
	assert.Equal(t, "Old Name", base.DisplayName)
}

func TestProfilePatch_IsEmpty(t *testing.T) {
	assert.True(t, ProfilePatch{}.IsEmpty())

	name := "x"
	assert.False(t, ProfilePatch{DisplayName: &name}.IsEmpty())
}
