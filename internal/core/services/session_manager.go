package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/pkg/retry"
	"vodnet/pkg/utils"

	"go.uber.org/zap"
)

// subscriberBuffer bounds how many unconsumed session updates a subscriber may
// lag behind before updates are dropped for it.
const subscriberBuffer = 8

type sessionManager struct {
	provider ports.IdentityProvider
	profiles ports.ProfileStore
	locale   domain.Language
	logger   *zap.SugaredLogger
	now      func() time.Time

	mu          sync.RWMutex
	session     domain.Session
	subscribers map[int]chan domain.Session
	nextSubID   int
	initialized bool
	unsubscribe func()
}

// NewSessionManager creates the process-wide session manager. locale seeds the
// preferred language of newly registered profiles.
func NewSessionManager(
	provider ports.IdentityProvider,
	profiles ports.ProfileStore,
	locale domain.Language,
	logger *zap.SugaredLogger,
) ports.SessionManager {
	return &sessionManager{
		provider:    provider,
		profiles:    profiles,
		locale:      locale,
		logger:      logger,
		now:         utils.Now,
		session:     domain.Session{Status: domain.SessionUninitialized},
		subscribers: make(map[int]chan domain.Session),
	}
}

func (m *sessionManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return domain.ErrAlreadyInitialized
	}
	m.initialized = true
	m.mu.Unlock()

	m.publish(domain.Session{Status: domain.SessionLoading})

	// Bootstrap from whatever session the provider has persisted. Any failure
	// here degrades to logged-out rather than leaving consumers stuck on a
	// loading state.
	sess, err := m.provider.GetSession(ctx)
	switch {
	case err != nil:
		m.logger.Warnw("session bootstrap failed, starting anonymous", "error", err)
		m.publish(domain.Session{Status: domain.SessionAnonymous})
	case sess != nil:
		m.publishForUser(ctx, sess.UserID)
	default:
		m.publish(domain.Session{Status: domain.SessionAnonymous})
	}

	events, unsub, err := m.provider.SubscribeAuthEvents(ctx)
	if err != nil {
		m.logger.Errorw("failed to subscribe to auth events", "error", err)
		return nil
	}

	m.mu.Lock()
	m.unsubscribe = unsub
	m.mu.Unlock()

	go m.consumeAuthEvents(ctx, events)
	return nil
}

func (m *sessionManager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrEmptyCredentials
	}

	sess, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		// Provider message passes through untouched; the published session is
		// left exactly as it was.
		return err
	}

	profile, err := m.profiles.FetchProfile(ctx, sess.UserID)
	if err != nil {
		return err
	}

	m.publish(domain.Session{Status: domain.SessionAuthenticated, Profile: profile})
	m.logger.Infow("user logged in", "user_id", sess.UserID)
	return nil
}

func (m *sessionManager) Register(ctx context.Context, email, password, displayName string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrEmptyCredentials
	}

	sess, err := m.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return err
	}

	now := m.now()
	defaults := &domain.Profile{
		ID:                sess.UserID,
		Email:             email,
		DisplayName:       displayName,
		WalletBalance:     0,
		SubscriptionTier:  domain.TierNone,
		AdminAccess:       false,
		IsAdmin:           false,
		PreferredLanguage: m.locale,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// The account already exists with the provider at this point, so a failed
	// profile insert must not fail the registration. One compensating retry,
	// then log and move on with the locally built defaults.
	insertCfg := retry.DefaultConfig()
	insertCfg.MaxAttempts = 1
	if err := retry.Retry(ctx, insertCfg, func() error {
		return m.profiles.InsertProfile(ctx, defaults)
	}); err != nil {
		m.logger.Errorw("profile creation failed after sign-up",
			"user_id", sess.UserID,
			"error", err,
		)
	}

	profile, err := m.profiles.FetchProfile(ctx, sess.UserID)
	if err != nil {
		m.logger.Warnw("fetching fresh profile failed, using defaults",
			"user_id", sess.UserID,
			"error", err,
		)
		profile = defaults
	}

	m.publish(domain.Session{Status: domain.SessionAuthenticated, Profile: profile})
	m.logger.Infow("user registered", "user_id", sess.UserID)
	return nil
}

func (m *sessionManager) Logout(ctx context.Context) error {
	if err := m.provider.SignOut(ctx); err != nil {
		// Local state still ends logged-out no matter what the provider says.
		m.logger.Warnw("provider sign-out failed", "error", err)
	}
	m.publish(domain.Session{Status: domain.SessionAnonymous})
	m.logger.Info("user logged out")
	return nil
}

func (m *sessionManager) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error {
	current := m.Current()
	if !current.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	if patch.IsEmpty() {
		return nil
	}

	if err := m.profiles.UpdateProfile(ctx, current.Profile.ID, patch); err != nil {
		return err
	}

	// Optimistic local merge, no re-fetch. The session may have been replaced
	// while the update was in flight; merge into whatever is current now.
	m.mu.Lock()
	if m.session.Authenticated() {
		merged := patch.ApplyTo(*m.session.Profile)
		m.session = domain.Session{Status: domain.SessionAuthenticated, Profile: &merged}
	}
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()

	m.notify(subs, session)
	return nil
}

func (m *sessionManager) Current() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *sessionManager) CanWatch() bool {
	return m.Current().CanWatchAt(m.now())
}

func (m *sessionManager) Subscribe() (<-chan domain.Session, func()) {
	ch := make(chan domain.Session, subscriberBuffer)

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = ch
	ch <- m.session
	m.mu.Unlock()

	unsubscribe := func() {
		m.mu.Lock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
		m.mu.Unlock()
	}
	return ch, unsubscribe
}

// publish replaces the session as a whole and notifies subscribers. Readers
// never see a partially updated session.
func (m *sessionManager) publish(session domain.Session) {
	m.mu.Lock()
	m.session = session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()

	m.notify(subs, session)
}

func (m *sessionManager) snapshotSubscribersLocked() []chan domain.Session {
	subs := make([]chan domain.Session, 0, len(m.subscribers))
	for _, ch := range m.subscribers {
		subs = append(subs, ch)
	}
	return subs
}

func (m *sessionManager) notify(subs []chan domain.Session, session domain.Session) {
	for _, ch := range subs {
		select {
		case ch <- session:
		default:
			m.logger.Debugw("dropping session update for slow subscriber")
		}
	}
}

// publishForUser fetches the profile for a known-live provider session and
// publishes the authenticated state, falling back to anonymous when the
// profile cannot be resolved.
func (m *sessionManager) publishForUser(ctx context.Context, userID domain.UserID) {
	profile, err := m.profiles.FetchProfile(ctx, userID)
	if err != nil {
		m.logger.Warnw("profile fetch failed, treating as logged out",
			"user_id", userID,
			"error", err,
		)
		m.publish(domain.Session{Status: domain.SessionAnonymous})
		return
	}
	m.publish(domain.Session{Status: domain.SessionAuthenticated, Profile: profile})
}

func (m *sessionManager) consumeAuthEvents(ctx context.Context, events <-chan ports.AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Session != nil {
				m.publishForUser(ctx, ev.Session.UserID)
			} else {
				m.publish(domain.Session{Status: domain.SessionAnonymous})
			}
		}
	}
}
