package middleware

import (
	"net/http"

	"vodnet/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// ContextKeyProfile is where the session guards put the signed-in profile.
const ContextKeyProfile = "profile"

// RequireSession rejects requests while nobody is signed in. The profile of
// the signed-in user is stored in the Gin context for handlers downstream.
func RequireSession(manager ports.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := manager.Current()
		if !session.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextKeyProfile, session.Profile)
		c.Next()
	}
}

// RequireAdmin allows only a signed-in admin through.
func RequireAdmin(manager ports.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := manager.Current()
		if !session.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if !session.Profile.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin access required",
			})
			return
		}

		c.Set(ContextKeyProfile, session.Profile)
		c.Next()
	}
}
