package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vodnet/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]interface{}{
		"sub": sub,
		"exp": exp.Unix(),
	})
	require.NoError(t, err)
	payload := base64.RawURLEncoding.EncodeToString(claims)
	return header + "." + payload + ".signature"
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL:        server.URL,
		AnonKey:        "anon-key",
		RequestTimeout: 5 * time.Second,
	}, RealtimeConfig{}, zap.NewNop().Sugar())
	t.Cleanup(client.Close)
	return client, server
}

func TestSignInWithPassword(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testToken(t, "user-1", expiry)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "viewer@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  token,
			"refresh_token": "refresh-1",
			"expires_in":    3600,
		})
	}))

	sess, err := client.SignInWithPassword(context.Background(), "viewer@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("user-1"), sess.UserID)
	assert.Equal(t, token, sess.AccessToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)
	assert.True(t, sess.ExpiresAt.Equal(expiry))

	held, err := client.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, domain.UserID("user-1"), held.UserID)
}

func TestSignInErrorMessagePassedThrough(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
	}))

	sess, err := client.SignInWithPassword(context.Background(), "viewer@example.com", "wrong")
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, "Invalid login credentials", err.Error())

	held, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, held)
}

func TestSignOutClearsSessionOnBackendError(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	token := testToken(t, "user-1", expiry)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": token, "expires_in": 3600})
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "backend unavailable"})
		}
	}))

	_, err := client.SignInWithPassword(context.Background(), "viewer@example.com", "secret")
	require.NoError(t, err)

	err = client.SignOut(context.Background())
	require.Error(t, err)

	held, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, held)
}

func TestFetchProfile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"id":                "user-1",
				"display_name":      "Viewer",
				"subscription_tier": "premium",
			},
		})
	}))

	profile, err := client.FetchProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("user-1"), profile.ID)
	assert.Equal(t, "Viewer", profile.DisplayName)
	assert.Equal(t, domain.TierPremium, profile.SubscriptionTier)
}

func TestFetchProfileNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))

	_, err := client.FetchProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestUpsertSetsMergePreference(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "resolution=merge-duplicates", r.Header.Get("Prefer"))
		assert.Equal(t, "user_id,title_id", r.URL.Query().Get("on_conflict"))
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.Upsert(context.Background(), "watch_history", map[string]string{"id": "w1"}, "user_id,title_id")
	require.NoError(t, err)
}

func TestSelectUsesUserTokenWhenSignedIn(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	token := testToken(t, "user-1", expiry)

	var sawAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": token, "expires_in": 3600})
		default:
			sawAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, "[]")
		}
	}))

	_, err := client.SignInWithPassword(context.Background(), "viewer@example.com", "secret")
	require.NoError(t, err)

	var rows []struct{}
	require.NoError(t, client.Select(context.Background(), "movies", url.Values{}, &rows))
	assert.Equal(t, "Bearer "+token, sawAuth)
}

func TestSessionPersistence(t *testing.T) {
	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.json")

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testToken(t, "user-1", expiry)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": token, "expires_in": 3600})
	}))
	defer server.Close()

	cfg := Config{
		BaseURL:        server.URL,
		AnonKey:        "anon-key",
		RequestTimeout: 5 * time.Second,
		SessionFile:    sessionFile,
	}

	first := NewClient(cfg, RealtimeConfig{}, zap.NewNop().Sugar())
	_, err := first.SignInWithPassword(context.Background(), "viewer@example.com", "secret")
	require.NoError(t, err)
	first.Close()

	// A fresh client picks the session up from disk.
	second := NewClient(cfg, RealtimeConfig{}, zap.NewNop().Sugar())
	defer second.Close()

	held, err := second.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, domain.UserID("user-1"), held.UserID)
}

func TestExpiredPersistedSessionDiscarded(t *testing.T) {
	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.json")

	stale, err := json.Marshal(map[string]interface{}{
		"UserID":      "user-1",
		"AccessToken": "stale",
		"ExpiresAt":   time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sessionFile, stale, 0o600))

	client := NewClient(Config{
		BaseURL:        "http://localhost:0",
		AnonKey:        "anon-key",
		RequestTimeout: time.Second,
		SessionFile:    sessionFile,
	}, RealtimeConfig{}, zap.NewNop().Sugar())
	defer client.Close()

	held, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, held)
}
