package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/render"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
	"github.com/Shivansh-Raheja/admin-panel/templates/pages"
)

type DashboardHandler struct {
	shell       Shell
	controllers *controller.Registry
}

func NewDashboardHandler(shell Shell, controllers *controller.Registry) *DashboardHandler {
	return &DashboardHandler{shell: shell, controllers: controllers}
}

// Home shows the welcome banner and the size of every collection this
// session has already loaded. Nothing is fetched here.
func (h *DashboardHandler) Home(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	counts := map[string]int{}
	for _, ctl := range h.controllers.Mounted(sess.ID()) {
		counts[ctl.Resource().Name] = ctl.Count()
	}

	var cards []view.CountCard
	for _, def := range h.shell.Resources.All() {
		card := view.CountCard{Label: def.Label, Href: ResourcePath(def.Name)}
		if n, ok := counts[def.Name]; ok && n >= 0 {
			card.Count = strconv.Itoa(n)
		}
		cards = append(cards, card)
	}

	render.Component(c, http.StatusOK, pages.Dashboard(view.DashboardPage{
		Layout:  h.shell.Layout(c, "Dashboard", "", nil),
		Welcome: "Welcome, " + sess.Name(),
		Cards:   cards,
	}))
}
