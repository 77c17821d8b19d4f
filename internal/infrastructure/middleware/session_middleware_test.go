package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vodnet/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessionManager struct {
	session domain.Session
}

func (s *stubSessionManager) Initialize(context.Context) error            { return nil }
func (s *stubSessionManager) Login(context.Context, string, string) error { return nil }
func (s *stubSessionManager) Register(context.Context, string, string, string) error {
	return nil
}
func (s *stubSessionManager) Logout(context.Context) error { return nil }
func (s *stubSessionManager) UpdateProfile(context.Context, domain.ProfilePatch) error {
	return nil
}
func (s *stubSessionManager) Current() domain.Session { return s.session }
func (s *stubSessionManager) CanWatch() bool          { return s.session.CanWatchAt(time.Now()) }
func (s *stubSessionManager) Subscribe() (<-chan domain.Session, func()) {
	ch := make(chan domain.Session, 1)
	ch <- s.session
	return ch, func() {}
}

func guardedRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/guarded", guard, func(c *gin.Context) {
		profile, ok := c.Get(ContextKeyProfile)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": profile.(*domain.Profile).ID})
	})
	return router
}

func get(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	return w
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	manager := &stubSessionManager{session: domain.Session{Status: domain.SessionAnonymous}}

	w := get(guardedRouter(RequireSession(manager)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSessionExposesProfile(t *testing.T) {
	manager := &stubSessionManager{session: domain.Session{
		Status:  domain.SessionAuthenticated,
		Profile: &domain.Profile{ID: "user-1", Email: "viewer@example.com"},
	}}

	w := get(guardedRouter(RequireSession(manager)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestRequireAdminRejectsRegularUser(t *testing.T) {
	manager := &stubSessionManager{session: domain.Session{
		Status:  domain.SessionAuthenticated,
		Profile: &domain.Profile{ID: "user-1"},
	}}

	w := get(guardedRouter(RequireAdmin(manager)))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	manager := &stubSessionManager{session: domain.Session{
		Status:  domain.SessionAuthenticated,
		Profile: &domain.Profile{ID: "admin-1", IsAdmin: true},
	}}

	w := get(guardedRouter(RequireAdmin(manager)))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	manager := &stubSessionManager{session: domain.Session{Status: domain.SessionAnonymous}}

	w := get(guardedRouter(RequireAdmin(manager)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
