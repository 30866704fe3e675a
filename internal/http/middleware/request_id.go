package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

const (
	HeaderRequestID = resource.HeaderRequestID
	CtxKeyRequestID = "request_id"

	maxRequestIDLen = 64
)

// RequestID reuses a well-formed inbound X-Request-ID or mints one. The id
// also rides on the request context so backend calls forward it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(CtxKeyRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Request = c.Request.WithContext(resource.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}

// validRequestID accepts short ids made of letters, digits, '-' and '_'
// so inbound values cannot smuggle anything into logs or headers.
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for _, r := range rid {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			return false
		}
	}
	return true
}

func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyRequestID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
