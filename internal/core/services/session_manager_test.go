package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProvider struct {
	session    *ports.ProviderSession
	getErr     error
	signInErr  error
	signUpErr  error
	signOutErr error

	events chan ports.AuthEvent

	signInCalls  int
	signOutCalls int
}

func (f *fakeProvider) GetSession(ctx context.Context) (*ports.ProviderSession, error) {
	return f.session, f.getErr
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*ports.ProviderSession, error) {
	f.signInCalls++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &ports.ProviderSession{UserID: "user-1", AccessToken: "token"}, nil
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password, displayName string) (*ports.ProviderSession, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &ports.ProviderSession{UserID: "user-1", AccessToken: "token"}, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeProvider) SubscribeAuthEvents(ctx context.Context) (<-chan ports.AuthEvent, func(), error) {
	if f.events == nil {
		f.events = make(chan ports.AuthEvent, 4)
	}
	return f.events, func() {}, nil
}

type fakeProfiles struct {
	profiles  map[domain.UserID]*domain.Profile
	fetchErr  error
	insertErr error
	updateErr error

	insertCalls int
	updateCalls int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: make(map[domain.UserID]*domain.Profile)}
}

func (f *fakeProfiles) FetchProfile(ctx context.Context, id domain.UserID) (*domain.Profile, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfiles) InsertProfile(ctx context.Context, profile *domain.Profile) error {
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfiles) UpdateProfile(ctx context.Context, id domain.UserID, patch domain.ProfilePatch) error {
	f.updateCalls++
	return f.updateErr
}

func newTestManager(t *testing.T, provider *fakeProvider, profiles *fakeProfiles) ports.SessionManager {
	t.Helper()
	return NewSessionManager(provider, profiles, domain.LanguageRU, zaptest.NewLogger(t).Sugar())
}

// waitForStatus polls until the published session reaches the wanted status.
// Auth events are consumed on a background goroutine, so tests observing them
// cannot assert immediately.
func waitForStatus(t *testing.T, m ports.SessionManager, want domain.SessionStatus) domain.Session {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if current := m.Current(); current.Status == want {
			return current
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached status %q, got %q", want, m.Current().Status)
	return domain.Session{}
}

func TestSessionManager_InitializeWithPersistedSession(t *testing.T) {
	provider := &fakeProvider{session: &ports.ProviderSession{UserID: "user-1"}}
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1", DisplayName: "Viewer"}

	m := newTestManager(t, provider, profiles)
	require.NoError(t, m.Initialize(context.Background()))

	current := m.Current()
	assert.Equal(t, domain.SessionAuthenticated, current.Status)
	require.NotNil(t, current.Profile)
	assert.Equal(t, "Viewer", current.Profile.DisplayName)
}

func TestSessionManager_InitializeWithoutSession(t *testing.T) {
	m := newTestManager(t, &fakeProvider{}, newFakeProfiles())
	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, domain.SessionAnonymous, m.Current().Status)
}

func TestSessionManager_InitializeProviderFailureDegradesToAnonymous(t *testing.T) {
	provider := &fakeProvider{getErr: errors.New("backend down")}

	m := newTestManager(t, provider, newFakeProfiles())
	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, domain.SessionAnonymous, m.Current().Status)
}

func TestSessionManager_InitializeTwiceFails(t *testing.T) {
	m := newTestManager(t, &fakeProvider{}, newFakeProfiles())
	require.NoError(t, m.Initialize(context.Background()))

	err := m.Initialize(context.Background())
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
}

func TestSessionManager_LoginSuccess(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1"}

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Login(context.Background(), "viewer@example.com", "secret"))

	current := m.Current()
	assert.Equal(t, domain.SessionAuthenticated, current.Status)
	assert.Equal(t, domain.UserID("user-1"), current.Profile.ID)
}

func TestSessionManager_LoginFailureLeavesSessionUntouched(t *testing.T) {
	provider := &fakeProvider{}
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1"}

	m := newTestManager(t, provider, profiles)
	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.Login(context.Background(), "viewer@example.com", "secret"))

	provider.signInErr = errors.New("Invalid login credentials")
	err := m.Login(context.Background(), "viewer@example.com", "wrong")

	// The message reaches the caller word for word.
	require.EqualError(t, err, "Invalid login credentials")

	// The previous authenticated session is still published.
	current := m.Current()
	assert.Equal(t, domain.SessionAuthenticated, current.Status)
	assert.Equal(t, domain.UserID("user-1"), current.Profile.ID)
}

func TestSessionManager_LoginEmptyCredentials(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestManager(t, provider, newFakeProfiles())

	assert.ErrorIs(t, m.Login(context.Background(), "   ", "secret"), domain.ErrEmptyCredentials)
	assert.ErrorIs(t, m.Login(context.Background(), "viewer@example.com", ""), domain.ErrEmptyCredentials)
	assert.Zero(t, provider.signInCalls)
}

func TestSessionManager_LoginProfileFetchFailureLeavesSession(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.fetchErr = errors.New("profiles table unavailable")

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Initialize(context.Background()))

	err := m.Login(context.Background(), "viewer@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, domain.SessionAnonymous, m.Current().Status)
}

func TestSessionManager_RegisterProvisionsProfile(t *testing.T) {
	profiles := newFakeProfiles()

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Register(context.Background(), "new@example.com", "secret", "Newcomer"))

	current := m.Current()
	require.Equal(t, domain.SessionAuthenticated, current.Status)
	assert.Equal(t, "Newcomer", current.Profile.DisplayName)
	assert.Equal(t, domain.TierNone, current.Profile.SubscriptionTier)
	assert.Equal(t, domain.LanguageRU, current.Profile.PreferredLanguage)
	assert.Equal(t, 1, profiles.insertCalls)
}

func TestSessionManager_RegisterSurvivesProfileInsertFailure(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.insertErr = errors.New("insert rejected")
	profiles.fetchErr = errors.New("fetch rejected")

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Register(context.Background(), "new@example.com", "secret", "Newcomer"))

	// Initial attempt plus one compensating retry.
	assert.Equal(t, 2, profiles.insertCalls)

	// Registration still publishes an authenticated session built from the
	// locally assembled defaults.
	current := m.Current()
	require.Equal(t, domain.SessionAuthenticated, current.Status)
	assert.Equal(t, domain.UserID("user-1"), current.Profile.ID)
	assert.Equal(t, "Newcomer", current.Profile.DisplayName)
	assert.False(t, current.Profile.AdminAccess)
}

func TestSessionManager_RegisterSignUpFailure(t *testing.T) {
	provider := &fakeProvider{signUpErr: errors.New("email already registered")}

	m := newTestManager(t, provider, newFakeProfiles())
	require.NoError(t, m.Initialize(context.Background()))

	err := m.Register(context.Background(), "new@example.com", "secret", "")
	require.EqualError(t, err, "email already registered")
	assert.Equal(t, domain.SessionAnonymous, m.Current().Status)
}

func TestSessionManager_LogoutAlwaysEndsAnonymous(t *testing.T) {
	provider := &fakeProvider{signOutErr: errors.New("backend down")}
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1"}

	m := newTestManager(t, provider, profiles)
	require.NoError(t, m.Login(context.Background(), "viewer@example.com", "secret"))

	// The provider error is swallowed.
	require.NoError(t, m.Logout(context.Background()))
	assert.Equal(t, domain.SessionAnonymous, m.Current().Status)
	assert.Equal(t, 1, provider.signOutCalls)
}

func TestSessionManager_UpdateProfileRequiresAuthentication(t *testing.T) {
	m := newTestManager(t, &fakeProvider{}, newFakeProfiles())

	name := "Someone"
	err := m.UpdateProfile(context.Background(), domain.ProfilePatch{DisplayName: &name})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSessionManager_UpdateProfileEmptyPatchIsNoop(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1"}

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Login(context.Background(), "viewer@example.com", "secret"))

	require.NoError(t, m.UpdateProfile(context.Background(), domain.ProfilePatch{}))
	assert.Zero(t, profiles.updateCalls)
}

func TestSessionManager_UpdateProfileMergesLocally(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{
		ID:          "user-1",
		DisplayName: "Old",
		AvatarURL:   "https://example.com/a.png",
	}

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Login(context.Background(), "viewer@example.com", "secret"))

	name := "New"
	require.NoError(t, m.UpdateProfile(context.Background(), domain.ProfilePatch{DisplayName: &name}))

	current := m.Current()
	assert.Equal(t, "New", current.Profile.DisplayName)
	assert.Equal(t, "https://example.com/a.png", current.Profile.AvatarURL)
	assert.Equal(t, 1, profiles.updateCalls)
}

func TestSessionManager_UpdateProfileProviderFailure(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1", DisplayName: "Old"}

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Login(context.Background(), "viewer@example.com", "secret"))

	profiles.updateErr = errors.New("update rejected")
	name := "New"
	err := m.UpdateProfile(context.Background(), domain.ProfilePatch{DisplayName: &name})

	require.Error(t, err)
	assert.Equal(t, "Old", m.Current().Profile.DisplayName)
}

func TestSessionManager_AuthEventsDriveSession(t *testing.T) {
	provider := &fakeProvider{}
	profiles := newFakeProfiles()
	profiles.profiles["user-2"] = &domain.Profile{ID: "user-2", DisplayName: "Other Device"}

	m := newTestManager(t, provider, profiles)
	require.NoError(t, m.Initialize(context.Background()))
	require.Equal(t, domain.SessionAnonymous, m.Current().Status)

	provider.events <- ports.AuthEvent{
		Kind:    ports.AuthEventSignedIn,
		Session: &ports.ProviderSession{UserID: "user-2"},
	}
	current := waitForStatus(t, m, domain.SessionAuthenticated)
	assert.Equal(t, "Other Device", current.Profile.DisplayName)

	provider.events <- ports.AuthEvent{Kind: ports.AuthEventSignedOut}
	waitForStatus(t, m, domain.SessionAnonymous)
}

func TestSessionManager_SubscribeDeliversCurrentFirst(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1"}

	m := newTestManager(t, &fakeProvider{}, profiles)
	require.NoError(t, m.Login(context.Background(), "viewer@example.com", "secret"))

	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	first := <-updates
	assert.Equal(t, domain.SessionAuthenticated, first.Status)

	require.NoError(t, m.Logout(context.Background()))
	next := <-updates
	assert.Equal(t, domain.SessionAnonymous, next.Status)
}

func TestSessionManager_UnsubscribeClosesChannel(t *testing.T) {
	m := newTestManager(t, &fakeProvider{}, newFakeProfiles())

	updates, unsubscribe := m.Subscribe()
	<-updates
	unsubscribe()

	_, open := <-updates
	assert.False(t, open)
}
