// Package http wires the dashboard's gin engine.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/config"
	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/flash"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/handlers"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/render"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/sessioncookie"
	"github.com/Shivansh-Raheja/admin-panel/internal/metrics"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
	"github.com/Shivansh-Raheja/admin-panel/internal/session"
	"github.com/Shivansh-Raheja/admin-panel/internal/shared/apperr"
)

const (
	sessionCookie = "admin_session"
	flashCookie   = "admin_flash"
)

// Deps is everything the router needs. Metrics may be nil.
type Deps struct {
	Log         *slog.Logger
	Config      config.Web
	Resources   *schema.Registry
	Controllers *controller.Registry
	Auth        handlers.LoginService
	Metrics     *metrics.Collector
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	flashCodec := flash.NewCodec(d.Config.FlashSecret, flashCookie, d.Config.CookieSecure)
	sessCodec := sessioncookie.New(d.Config.SessionSecret, sessionCookie, d.Config.CookieSecure, d.Config.SessionTTL)

	r.Use(
		middleware.RequestID(),
		middleware.SessionMiddleware(sessCodec),
		middleware.Logger(d.Log, "/healthz", "/metrics"),
		middleware.ErrorHandler(d.Log, render.ErrorPage),
		middleware.Recovery(d.Log),
		middleware.FlashMiddleware(flashCodec),
	)
	var mutations handlers.MutationRecorder
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
		mutations = d.Metrics
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	media := func(p string) string {
		return resource.MediaURL(d.Config.APIOrigin, d.Config.APIBasePath, p)
	}
	shell := handlers.Shell{Resources: d.Resources}
	authH := handlers.NewAuthHandlers(d.Auth, flashCodec, d.Controllers, d.Log)
	dashH := handlers.NewDashboardHandler(shell, d.Controllers)
	resH := handlers.NewResourceHandlers(shell, d.Controllers, flashCodec, media, mutations, d.Log)

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, handlers.HomePath) })

	guest := r.Group(session.LoginPath, middleware.RequireGuest(handlers.HomePath))
	guest.GET("", authH.LoginGet)
	guest.POST("", authH.LoginPost)
	r.POST("/logout", authH.LogoutPost)

	dash := r.Group(handlers.HomePath, middleware.RequireAuth(flashCodec))
	dash.GET("", dashH.Home)

	res := dash.Group("/:resource")
	res.GET("", resH.List)
	res.POST("", resH.Create)
	res.GET("/new", resH.New)
	res.POST("/reload", resH.Reload)
	res.POST("/cancel", resH.Cancel)
	res.GET("/:id", resH.Detail)
	res.POST("/:id", resH.Update)
	res.GET("/:id/edit", resH.Edit)
	res.GET("/:id/delete", resH.ConfirmDelete)
	res.POST("/:id/delete", resH.Delete)

	r.NoRoute(func(c *gin.Context) {
		middleware.Fail(c, apperr.NotFoundErr("Page not found."))
	})
	return r
}
