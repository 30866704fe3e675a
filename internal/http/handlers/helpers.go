package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
)

const (
	HomePath      = "/dashboard"
	resourcesBase = "/dashboard/"
)

// Shell builds the parts every authenticated page shares.
type Shell struct {
	Resources *schema.Registry
}

// Nav lists the home page and every resource, marking active.
func (s Shell) Nav(active string) []view.NavItem {
	items := []view.NavItem{{Label: "Dashboard", Href: HomePath, Active: active == ""}}
	for _, def := range s.Resources.All() {
		items = append(items, view.NavItem{Label: def.Label, Href: ResourcePath(def.Name), Active: def.Name == active})
	}
	return items
}

// Layout assembles the page chrome. extra notices are shown after the ones
// carried in by the flash cookie.
func (s Shell) Layout(c *gin.Context, title, active string, extra []view.Flash) view.Layout {
	return view.Layout{
		Title:     title,
		AdminName: middleware.CurrentSession(c).Name(),
		Nav:       s.Nav(active),
		Flashes:   view.Notices(append(middleware.GetFlashes(c), extra...)...),
		RequestID: middleware.GetRequestID(c),
	}
}

func ResourcePath(name string) string { return resourcesBase + name }

func alertFlashes(alerts []controller.Alert) []view.Flash {
	out := make([]view.Flash, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, view.Flash{Kind: view.FlashKind(a.Kind), Message: a.Message})
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
