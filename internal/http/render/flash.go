package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/http/flash"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
)

// RedirectWithFlash sets a one-shot flash and redirects with 303 so the
// browser follows a POST with a GET.
func RedirectWithFlash(c *gin.Context, codec *flash.Codec, location string, kind view.FlashKind, msg string) {
	middleware.SetFlashCookie(c, codec, view.Flash{Kind: kind, Message: msg})
	c.Redirect(http.StatusSeeOther, location)
}

// RedirectWithFlashes is RedirectWithFlash for several notices.
func RedirectWithFlashes(c *gin.Context, codec *flash.Codec, location string, fs []view.Flash) {
	if len(fs) > 0 {
		middleware.SetFlashCookie(c, codec, fs...)
	}
	c.Redirect(http.StatusSeeOther, location)
}
