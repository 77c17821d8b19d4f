package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/pkg/circuitbreaker"
	"vodnet/pkg/retry"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Config wires the client to the hosted auth+database backend.
type Config struct {
	BaseURL        string
	AnonKey        string
	RequestTimeout time.Duration
	SessionFile    string
}

// Client is the thin wrapper around the hosted backend: a GoTrue-style auth
// API under /auth/v1 and a PostgREST-style data API under /rest/v1. It
// implements ports.IdentityProvider and ports.ProfileStore; catalog and other
// repositories reuse its data-API helpers.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *zap.SugaredLogger
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config

	sessionFile string
	realtime    *realtimeHub
	metrics     Metrics

	mu      sync.RWMutex
	session *ports.ProviderSession
}

// Metrics receives one observation per backend round-trip.
type Metrics interface {
	RecordProviderRequest(operation string, duration time.Duration, err error)
}

// NewClient creates a provider client. realtimeCfg may be zero-valued when
// realtime auth events are disabled; SubscribeAuthEvents then returns a
// channel that only ever closes.
func NewClient(cfg Config, realtimeCfg RealtimeConfig, logger *zap.SugaredLogger) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		anonKey:     cfg.AnonKey,
		http:        &http.Client{Timeout: cfg.RequestTimeout},
		logger:      logger,
		breaker:     circuitbreaker.New(circuitbreaker.DefaultConfig()),
		retry:       retry.DefaultConfig(),
		sessionFile: cfg.SessionFile,
	}
	c.realtime = newRealtimeHub(c.baseURL, c.anonKey, realtimeCfg, logger)
	c.loadPersistedSession()
	return c
}

// SetMetrics attaches a metrics sink. Call before serving traffic; the client
// does not synchronize access to it.
func (c *Client) SetMetrics(m Metrics) {
	c.metrics = m
}

// Close shuts down the realtime connection.
func (c *Client) Close() {
	c.realtime.Close()
}

// apiError is the error body both halves of the backend produce.
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	}
	return ""
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// GetSession returns the persisted device session, nil when nobody is signed
// in.
func (c *Client) GetSession(ctx context.Context) (*ports.ProviderSession, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil, nil
	}
	copied := *c.session
	return &copied, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*ports.ProviderSession, error) {
	body := map[string]string{"email": email, "password": password}

	var tok tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, &tok, ""); err != nil {
		return nil, err
	}

	sess, err := c.sessionFromToken(&tok)
	if err != nil {
		return nil, err
	}
	c.storeSession(sess)
	c.realtime.announce(ports.AuthEvent{Kind: ports.AuthEventSignedIn, Session: sess})
	return sess, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*ports.ProviderSession, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"display_name": displayName},
	}

	var tok tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", body, &tok, ""); err != nil {
		return nil, err
	}

	sess, err := c.sessionFromToken(&tok)
	if err != nil {
		return nil, err
	}
	c.storeSession(sess)
	c.realtime.announce(ports.AuthEvent{Kind: ports.AuthEventSignedIn, Session: sess})
	return sess, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.RLock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.RUnlock()

	var err error
	if token != "" {
		err = c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, token)
	}

	// The local session is cleared no matter what the backend said.
	c.storeSession(nil)
	c.realtime.announce(ports.AuthEvent{Kind: ports.AuthEventSignedOut})
	return err
}

func (c *Client) SubscribeAuthEvents(ctx context.Context) (<-chan ports.AuthEvent, func(), error) {
	return c.realtime.subscribe(ctx)
}

// FetchProfile implements ports.ProfileStore.
func (c *Client) FetchProfile(ctx context.Context, id domain.UserID) (*domain.Profile, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", "eq."+string(id))

	var rows []domain.Profile
	if err := c.Select(ctx, "profiles", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return &rows[0], nil
}

func (c *Client) InsertProfile(ctx context.Context, profile *domain.Profile) error {
	return c.Insert(ctx, "profiles", profile)
}

func (c *Client) UpdateProfile(ctx context.Context, id domain.UserID, patch domain.ProfilePatch) error {
	query := url.Values{}
	query.Set("id", "eq."+string(id))
	return c.Patch(ctx, "profiles", query, patch)
}

// Select reads rows from a data-API table into out. Reads are retried; writes
// below are not, the caller decides what a repeat means.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out interface{}) error {
	path := "/rest/v1/" + table
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return retry.Retry(ctx, c.retry, func() error {
		return c.doJSON(ctx, http.MethodGet, path, nil, out, c.accessToken())
	})
}

// Insert writes one row into a data-API table.
func (c *Client) Insert(ctx context.Context, table string, row interface{}) error {
	return c.doJSON(ctx, http.MethodPost, "/rest/v1/"+table, row, nil, c.accessToken())
}

// Patch applies a partial update to the rows matched by query.
func (c *Client) Patch(ctx context.Context, table string, query url.Values, fields interface{}) error {
	path := "/rest/v1/" + table
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.doJSON(ctx, http.MethodPatch, path, fields, nil, c.accessToken())
}

// Upsert writes a row, replacing an existing one on conflict.
func (c *Client) Upsert(ctx context.Context, table string, row interface{}, onConflict string) error {
	path := "/rest/v1/" + table
	if onConflict != "" {
		path += "?on_conflict=" + url.QueryEscape(onConflict)
	}
	return c.doJSONWithHeaders(ctx, http.MethodPost, path, row, nil, c.accessToken(), map[string]string{
		"Prefer": "resolution=merge-duplicates",
	})
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session != nil {
		return c.session.AccessToken
	}
	return ""
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, userToken string) error {
	return c.doJSONWithHeaders(ctx, method, path, body, out, userToken, nil)
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.RecordProviderRequest(operation, time.Since(start), err)
	}
}

// operationLabel keeps metric cardinality bounded: method plus the path with
// the query stripped, e.g. "POST /auth/v1/token".
func operationLabel(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return method + " " + path
}

func (c *Client) doJSONWithHeaders(ctx context.Context, method, path string, body, out interface{}, userToken string, extra map[string]string) error {
	op := operationLabel(method, path)
	return c.breaker.Execute(ctx, func() error {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to encode request body: %w", err)
			}
			reader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("apikey", c.anonKey)
		req.Header.Set("Content-Type", "application/json")
		if userToken != "" {
			req.Header.Set("Authorization", "Bearer "+userToken)
		} else {
			req.Header.Set("Authorization", "Bearer "+c.anonKey)
		}
		for k, v := range extra {
			req.Header.Set(k, v)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warnw("provider request failed",
				"method", method,
				"path", path,
				"error", err,
			)
			c.observe(op, start, err)
			return err
		}
		defer resp.Body.Close()

		c.logger.Debugw("provider request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		if resp.StatusCode >= 400 {
			err := decodeError(resp)
			c.observe(op, start, err)
			return err
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				c.observe(op, start, err)
				return fmt.Errorf("failed to decode provider response: %w", err)
			}
		}
		c.observe(op, start, nil)
		return nil
	})
}

// decodeError surfaces the backend's own message verbatim; callers show it to
// users unchanged.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body apiError
	if err := json.Unmarshal(data, &body); err == nil {
		if msg := body.text(); msg != "" {
			return errors.New(msg)
		}
	}
	return fmt.Errorf("provider returned status %d", resp.StatusCode)
}

// sessionFromToken builds a ProviderSession, taking the user id and expiry
// from the access token claims. The token is verified by the backend; here it
// is only decoded.
func (c *Client) sessionFromToken(tok *tokenResponse) (*ports.ProviderSession, error) {
	if tok.AccessToken == "" {
		return nil, errors.New("provider returned no access token")
	}

	userID := tok.User.ID
	expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			userID = sub
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
	}

	if userID == "" {
		return nil, errors.New("provider returned no user id")
	}

	return &ports.ProviderSession{
		UserID:       domain.UserID(userID),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (c *Client) storeSession(sess *ports.ProviderSession) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	c.persistSession(sess)
}

func (c *Client) persistSession(sess *ports.ProviderSession) {
	if c.sessionFile == "" {
		return
	}
	if sess == nil {
		if err := os.Remove(c.sessionFile); err != nil && !os.IsNotExist(err) {
			c.logger.Warnw("failed to remove session file", "error", err)
		}
		return
	}
	data, err := json.Marshal(sess)
	if err != nil {
		c.logger.Warnw("failed to encode session", "error", err)
		return
	}
	if err := os.WriteFile(c.sessionFile, data, 0o600); err != nil {
		c.logger.Warnw("failed to persist session", "error", err)
	}
}

func (c *Client) loadPersistedSession() {
	if c.sessionFile == "" {
		return
	}
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warnw("failed to read session file", "error", err)
		}
		return
	}
	var sess ports.ProviderSession
	if err := json.Unmarshal(data, &sess); err != nil {
		c.logger.Warnw("ignoring corrupt session file", "error", err)
		return
	}
	if !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(time.Now()) {
		// Stale token from a previous run; the user signs in again.
		return
	}
	c.session = &sess
}
