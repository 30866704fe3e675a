package middleware

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/shared/apperr"
)

// ErrorPage renders an SSR error response.
type ErrorPage func(c *gin.Context, status int, publicMsg string)

// WantsJSON is true for fetch/XHR callers and for the backend's .php
// endpoints; everything else gets an HTML page.
func WantsJSON(c *gin.Context) bool {
	switch {
	case strings.Contains(c.GetHeader("Accept"), "application/json"):
		return true
	case c.GetHeader("X-Requested-With") == "XMLHttpRequest":
		return true
	default:
		return strings.HasSuffix(c.Request.URL.Path, ".php")
	}
}

func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler turns the last handler error into a response: JSON for API
// clients, page for browsers. A nil page falls back to bare HTML.
func ErrorHandler(l *slog.Logger, page ErrorPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		publicMsg := apperr.PublicMessage(err)
		rid := GetRequestID(c)

		level := slog.LevelError
		if status < 500 {
			level = slog.LevelWarn
		}
		l.LogAttrs(c.Request.Context(), level, "request_failed",
			slog.String("request_id", rid),
			slog.Int("status", status),
			slog.Any("err", err),
		)

		if WantsJSON(c) {
			payload := gin.H{
				"error":      publicMsg,
				"request_id": rid,
			}
			if ae, ok := apperr.As(err); ok && len(ae.Fields) > 0 {
				payload["fields"] = ae.Fields
			}
			c.AbortWithStatusJSON(status, payload)
			return
		}

		c.Abort()
		if page != nil {
			page(c, status, publicMsg)
			return
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(status, fmt.Sprintf("<html><body><h1>%d %s</h1><p>%s</p><p>Request ID: %s</p></body></html>",
			status, http.StatusText(status), html.EscapeString(publicMsg), html.EscapeString(rid)))
	}
}
