package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/http/flash"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
)

const CtxKeyFlash = "flash"

// FlashMiddleware reads the flash cookie into the context and clears it so
// it is shown once.
func FlashMiddleware(codec *flash.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(codec.CookieName); err == nil && v != "" {
			if fs, err := codec.Decode(v); err == nil {
				c.Set(CtxKeyFlash, fs)
			}
			// clear invalid cookies too
			clearCookie(c, codec.CookieName, codec.Secure)
		}
		c.Next()
	}
}

// GetFlashes returns the notices carried into this request.
func GetFlashes(c *gin.Context) []view.Flash {
	if v, ok := c.Get(CtxKeyFlash); ok {
		if fs, ok := v.([]view.Flash); ok {
			return fs
		}
	}
	return nil
}

// GetFlash returns the first carried notice, if any.
func GetFlash(c *gin.Context) *view.Flash {
	if fs := GetFlashes(c); len(fs) > 0 {
		return &fs[0]
	}
	return nil
}

func SetFlashCookie(c *gin.Context, codec *flash.Codec, fs ...view.Flash) {
	val, err := codec.Encode(fs)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(codec.CookieName, val, codec.CookieMaxAge(), "/", "", codec.Secure, true)
}

func clearCookie(c *gin.Context, name string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", secure, true)
}
