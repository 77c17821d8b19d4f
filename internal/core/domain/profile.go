package domain

import (
	"time"
)

type UserID string

// SubscriptionTier is the paid tier attached to a profile. TierNone means the
// user has never subscribed or the tier was cleared by billing.
type SubscriptionTier string

const (
	TierNone     SubscriptionTier = ""
	TierBasic    SubscriptionTier = "basic"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
)

type Language string

const (
	LanguageRU Language = "ru"
	LanguageUZ Language = "uz"
)

// Profile is the application-owned entitlement/metadata record keyed by the
// identity provider's user id. Everything here is written by the backend
// (billing, admin tooling); this service only reads it, except for the partial
// updates in ProfilePatch.
type Profile struct {
	ID                    UserID           `json:"id"`
	Email                 string           `json:"email"`
	DisplayName           string           `json:"display_name,omitempty"`
	AvatarURL             string           `json:"avatar_url,omitempty"`
	WalletBalance         int64            `json:"wallet_balance"`
	SubscriptionTier      SubscriptionTier `json:"subscription_tier,omitempty"`
	SubscriptionExpiresAt *time.Time       `json:"subscription_expires_at,omitempty"`
	AdminAccess           bool             `json:"admin_access"`
	AdminAccessUntil      *time.Time       `json:"admin_access_until,omitempty"`
	PreferredLanguage     Language         `json:"preferred_language"`
	IsAdmin               bool             `json:"is_admin"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// ProfilePatch carries the fields a signed-in user may change about themselves.
// Nil means "leave unchanged"; only non-nil fields are sent to the backend.
type ProfilePatch struct {
	DisplayName       *string   `json:"display_name,omitempty"`
	AvatarURL         *string   `json:"avatar_url,omitempty"`
	PreferredLanguage *Language `json:"preferred_language,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.AvatarURL == nil && p.PreferredLanguage == nil
}

// ApplyTo merges the patch into a copy of the given profile.
func (p ProfilePatch) ApplyTo(profile Profile) Profile {
	if p.DisplayName != nil {
		profile.DisplayName = *p.DisplayName
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	if p.PreferredLanguage != nil {
		profile.PreferredLanguage = *p.PreferredLanguage
	}
	return profile
}
