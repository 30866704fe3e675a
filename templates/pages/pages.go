// Package pages renders the dashboard's HTML pages as templ components.
package pages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
	"github.com/Shivansh-Raheja/admin-panel/templates/shared"
)

//go:embed html/*.html
var files embed.FS

// Each page is parsed into its own set so every page can define "content".
var sets = map[string]*template.Template{
	"login":     parse("html/styles.html", "html/login.html"),
	"dashboard": parse("html/styles.html", "html/layout.html", "html/dashboard.html"),
	"list":      parse("html/styles.html", "html/layout.html", "html/list.html"),
	"form":      parse("html/styles.html", "html/layout.html", "html/form.html"),
	"detail":    parse("html/styles.html", "html/layout.html", "html/detail.html"),
	"confirm":   parse("html/styles.html", "html/layout.html", "html/confirm.html"),
	"error":     parse("html/styles.html", "html/layout.html", "html/error.html"),
}

func parse(names ...string) *template.Template {
	return template.Must(template.New("page").Funcs(shared.Funcs()).ParseFS(files, names...))
}

func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := sets[name]
		if !ok {
			return fmt.Errorf("pages: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "base", data)
	})
}

func Login(p view.LoginPage) templ.Component { return page("login", p) }

func Dashboard(p view.DashboardPage) templ.Component { return page("dashboard", p) }

func ResourceList(p view.ResourceListPage) templ.Component { return page("list", p) }

func ResourceForm(p view.ResourceFormPage) templ.Component { return page("form", p) }

func ResourceDetail(p view.ResourceDetailPage) templ.Component { return page("detail", p) }

func Confirm(p view.ConfirmPage) templ.Component { return page("confirm", p) }

func Error(p view.ErrorPage) templ.Component { return page("error", p) }
