package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/flash"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/render"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/validation"
	"github.com/Shivansh-Raheja/admin-panel/internal/modules/auth"
	"github.com/Shivansh-Raheja/admin-panel/internal/session"
	"github.com/Shivansh-Raheja/admin-panel/internal/shared/apperr"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
	"github.com/Shivansh-Raheja/admin-panel/templates/pages"
)

// LoginService checks credentials against the backend.
type LoginService interface {
	Login(ctx context.Context, email, password string) (auth.Result, error)
}

// AuthHandlers serves login and logout.
type AuthHandlers struct {
	auth        LoginService
	flash       *flash.Codec
	controllers *controller.Registry
	log         *slog.Logger
}

func NewAuthHandlers(svc LoginService, flashCodec *flash.Codec, controllers *controller.Registry, log *slog.Logger) *AuthHandlers {
	return &AuthHandlers{auth: svc, flash: flashCodec, controllers: controllers, log: log}
}

type loginInput struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func (h *AuthHandlers) loginPage(c *gin.Context, status int, form view.LoginForm, errs map[string]string, msg string) {
	render.Component(c, status, pages.Login(view.LoginPage{
		Title:   "Login",
		Form:    form,
		Errors:  errs,
		Message: msg,
		Flashes: middleware.GetFlashes(c),
	}))
}

// LoginGet renders the login page.
func (h *AuthHandlers) LoginGet(c *gin.Context) {
	h.loginPage(c, http.StatusOK, view.LoginForm{ReturnTo: session.SafeReturn(c.Query("return_to"), "")}, nil, "")
}

// LoginPost exchanges credentials for a backend token and starts the
// session.
func (h *AuthHandlers) LoginPost(c *gin.Context) {
	returnTo := session.SafeReturn(c.PostForm("return_to"), "")

	var in loginInput
	if err := c.ShouldBind(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		h.loginPage(c, http.StatusBadRequest, view.LoginForm{Email: in.Email, ReturnTo: returnTo}, errs, "")
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	res, err := h.auth.Login(c.Request.Context(), email, in.Password)
	if err != nil {
		var rejected *auth.RejectedError
		if errors.As(err, &rejected) {
			h.loginPage(c, http.StatusUnauthorized, view.LoginForm{Email: email, ReturnTo: returnTo}, nil, rejected.Message)
			return
		}
		h.log.Warn("login_failed", slog.String("request_id", middleware.GetRequestID(c)), slog.Any("err", err))
		ae := apperr.Backend(err)
		h.loginPage(c, apperr.HTTPStatus(ae), view.LoginForm{Email: email, ReturnTo: returnTo}, nil, ae.PublicMsg)
		return
	}

	sess := middleware.CurrentSession(c)
	if err := sess.Login(res.Token, res.Name); err != nil {
		middleware.Fail(c, err)
		return
	}
	render.RedirectWithFlash(c, h.flash, session.SafeReturn(returnTo, HomePath), view.FlashSuccess, "Welcome back, "+sess.Name()+".")
}

// LogoutPost forgets the token and unmounts the session's screens.
func (h *AuthHandlers) LogoutPost(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if id := sess.ID(); id != "" {
		h.controllers.DropSession(id)
	}
	if err := sess.Logout(); err != nil {
		middleware.Fail(c, err)
		return
	}
	render.RedirectWithFlash(c, h.flash, session.LoginPath, view.FlashInfo, "You have been logged out.")
}
