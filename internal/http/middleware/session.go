package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/http/sessioncookie"
	"github.com/Shivansh-Raheja/admin-panel/internal/session"
)

const CtxKeySession = "session"

// SessionMiddleware loads the signed session cookie into a session.Session
// for the rest of the chain.
func SessionMiddleware(codec *sessioncookie.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxKeySession, session.New(codec.Load(c)))
		c.Next()
	}
}

// CurrentSession returns the request's session. Without SessionMiddleware
// it is an empty, logged-out session.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(CtxKeySession); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	s := session.New(session.NewMemoryStorage())
	c.Set(CtxKeySession, s)
	return s
}
