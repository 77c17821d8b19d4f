package http

import (
	"vodnet/internal/core/domain"
	"vodnet/pkg/utils"

	"github.com/gin-gonic/gin"
)

// sessionResponse is the JSON shape every auth endpoint returns: the full
// published session plus the derived entitlement flag, so clients never
// reimplement the eligibility rules.
func sessionResponse(session domain.Session) gin.H {
	resp := gin.H{
		"status":    string(session.Status),
		"can_watch": session.CanWatchAt(utils.Now()),
	}
	if session.Profile != nil {
		resp["profile"] = session.Profile
	}
	return resp
}
