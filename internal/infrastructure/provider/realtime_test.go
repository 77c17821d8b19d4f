package provider

import (
	"testing"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testHub() *realtimeHub {
	return newRealtimeHub("http://localhost", "anon", RealtimeConfig{}, zap.NewNop().Sugar())
}

func TestTranslateSignedInFrame(t *testing.T) {
	h := testHub()

	var frame wireAuthEvent
	frame.Event = "SIGNED_IN"
	frame.Payload.UserID = "user-1"
	frame.Payload.AccessToken = "tok"
	frame.Payload.ExpiresAt = "2026-04-01T10:00:00Z"

	ev, ok := h.translate(frame)
	require.True(t, ok)
	assert.Equal(t, ports.AuthEventSignedIn, ev.Kind)
	require.NotNil(t, ev.Session)
	assert.Equal(t, domain.UserID("user-1"), ev.Session.UserID)
	assert.Equal(t, "tok", ev.Session.AccessToken)
	assert.Equal(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), ev.Session.ExpiresAt)
}

func TestTranslateRefreshWithoutExpiry(t *testing.T) {
	h := testHub()

	var frame wireAuthEvent
	frame.Event = "TOKEN_REFRESHED"
	frame.Payload.UserID = "user-1"
	frame.Payload.AccessToken = "tok2"

	ev, ok := h.translate(frame)
	require.True(t, ok)
	assert.Equal(t, ports.AuthEventTokenRefreshed, ev.Kind)
	require.NotNil(t, ev.Session)
	assert.True(t, ev.Session.ExpiresAt.IsZero())
}

func TestTranslateSignedOutAndUnknownFrames(t *testing.T) {
	h := testHub()

	var out wireAuthEvent
	out.Event = "SIGNED_OUT"
	ev, ok := h.translate(out)
	require.True(t, ok)
	assert.Equal(t, ports.AuthEventSignedOut, ev.Kind)
	assert.Nil(t, ev.Session)

	var noise wireAuthEvent
	noise.Event = "PRESENCE_DIFF"
	_, ok = h.translate(noise)
	assert.False(t, ok)
}
