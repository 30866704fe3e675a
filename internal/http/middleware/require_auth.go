package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/http/flash"
	"github.com/Shivansh-Raheja/admin-panel/internal/session"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
)

// RequireAuth lets logged-in admins through. Others get
// - SSR: flash + redirect to /login?return_to=...
// - JSON: 401
func RequireAuth(flashCodec *flash.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := session.Require(c.Request.URL.RequestURI(), CurrentSession(c).View())
		if d.Allow {
			c.Next()
			return
		}

		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "authentication required",
				"request_id": GetRequestID(c),
			})
			return
		}

		SetFlashCookie(c, flashCodec, view.Flash{
			Kind:    view.FlashWarning,
			Message: "Please log in to continue.",
		})
		c.Redirect(http.StatusFound, d.Redirect)
		c.Abort()
	}
}
