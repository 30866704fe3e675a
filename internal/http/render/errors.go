package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
	"github.com/Shivansh-Raheja/admin-panel/templates/pages"
)

// ErrorPage renders the SSR error page. It is the page hook of
// middleware.ErrorHandler.
func ErrorPage(c *gin.Context, status int, msg string) {
	layout := view.Layout{
		Title:     http.StatusText(status),
		RequestID: middleware.GetRequestID(c),
	}
	if f := middleware.GetFlash(c); f != nil {
		layout.Flashes = append(layout.Flashes, *f)
	}
	if s := middleware.CurrentSession(c); s.IsAuthenticated() {
		layout.AdminName = s.Name()
	}
	Component(c, status, pages.Error(view.ErrorPage{Layout: layout, Status: status, Message: msg}))
}
