package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireGuest sends admins who are already logged in from the login page
// to home.
func RequireGuest(home string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, home)
			c.Abort()
			return
		}
		c.Next()
	}
}
