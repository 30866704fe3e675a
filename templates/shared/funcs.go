// Package shared holds template helpers used by every page.
package shared

import (
	"html/template"
	"strings"

	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
)

// Funcs is the function map every page template is parsed with.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":      view.Money,
		"date":       view.Date,
		"humanize":   view.Humanize,
		"truncate":   view.Truncate,
		"lower":      strings.ToLower,
		"join":       strings.Join,
		"flashClass": FlashClass,
		"badgeClass": BadgeClass,
	}
}

// FlashClass maps a flash kind to its alert style.
func FlashClass(k view.FlashKind) string { return k.Class() }

// BadgeClass styles enum codes. Codes are backend values, so only a safe
// subset of characters reaches the class attribute.
func BadgeClass(code string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(code) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return "badge badge-" + b.String()
}
