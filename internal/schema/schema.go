// Package schema holds the declarative resource definitions that drive the
// generic CRUD screens.
package schema

import (
	"fmt"
	"strings"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindMoney    Kind = "money"
	KindDate     Kind = "date"
	KindBool     Kind = "bool"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindEnum     Kind = "enum"
	KindRelation Kind = "relation"
	KindMedia    Kind = "media"
)

func (k Kind) valid() bool {
	switch k {
	case KindText, KindTextarea, KindNumber, KindMoney, KindDate, KindBool,
		KindEmail, KindPassword, KindEnum, KindRelation, KindMedia:
		return true
	}
	return false
}

// Numeric reports whether values of this kind are sent as JSON numbers.
func (k Kind) Numeric() bool { return k == KindNumber || k == KindMoney }

type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Field is one column of a resource. Dotted names address nested values
// and are only meaningful for read-only fields.
type Field struct {
	Name             string   `yaml:"name"`
	Label            string   `yaml:"label"`
	Kind             Kind     `yaml:"kind"`
	Required         bool     `yaml:"required"`
	RequiredOnCreate bool     `yaml:"required_on_create"`
	Options          []Option `yaml:"options"`
	Relation         string   `yaml:"relation"`
	RelationLabel    string   `yaml:"relation_label"`
	Multiple         bool     `yaml:"multiple"`
	Max              int      `yaml:"max"`
	Accept           string   `yaml:"accept"`
	ListHidden       bool     `yaml:"list_hidden"`
	FormHidden       bool     `yaml:"form_hidden"`
}

// IsMedia reports whether the field holds file references.
func (f Field) IsMedia() bool { return f.Kind == KindMedia }

// OptionLabel maps an enum code to its label, falling back to the code.
func (f Field) OptionLabel(code string) string {
	for _, o := range f.Options {
		if o.Value == code {
			return o.Label
		}
	}
	return code
}

// RequiredFor reports whether the field must be filled for a create
// (editing=false) or an update.
func (f Field) RequiredFor(editing bool) bool {
	return f.Required || (f.RequiredOnCreate && !editing)
}

type Capabilities struct {
	Create bool `yaml:"create"`
	Edit   bool `yaml:"edit"`
	Delete bool `yaml:"delete"`
	Detail bool `yaml:"detail"`
}

// Resource describes one CRUD screen.
type Resource struct {
	Name         string            `yaml:"name"`
	Label        string            `yaml:"label"`
	Singular     string            `yaml:"singular"`
	Endpoint     resource.Endpoint `yaml:"endpoint"`
	Capabilities Capabilities      `yaml:"capabilities"`
	Fields       []Field           `yaml:"fields"`
}

func (r Resource) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FormFields returns the editable fields in declaration order.
func (r Resource) FormFields() []Field {
	out := make([]Field, 0, len(r.Fields))
	for _, f := range r.Fields {
		if !f.FormHidden {
			out = append(out, f)
		}
	}
	return out
}

// ListFields returns the table columns in declaration order.
func (r Resource) ListFields() []Field {
	out := make([]Field, 0, len(r.Fields))
	for _, f := range r.Fields {
		if !f.ListHidden {
			out = append(out, f)
		}
	}
	return out
}

// Relations returns the names of the collections referenced by this
// resource's relation fields, without duplicates.
func (r Resource) Relations() []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range r.Fields {
		if f.Kind == KindRelation && !seen[f.Relation] {
			seen[f.Relation] = true
			out = append(out, f.Relation)
		}
	}
	return out
}

func (r Resource) validate() error {
	if r.Name == "" {
		return fmt.Errorf("resource without name")
	}
	if strings.TrimSpace(r.Endpoint.Path) == "" {
		return fmt.Errorf("%s: endpoint path is required", r.Name)
	}
	switch r.Endpoint.Update {
	case "", resource.UpdatePut, resource.UpdatePostOverride, resource.UpdatePost:
	default:
		return fmt.Errorf("%s: unknown update mode %q", r.Name, r.Endpoint.Update)
	}
	switch r.Endpoint.Delete {
	case "", resource.DeleteQuery, resource.DeleteBody:
	default:
		return fmt.Errorf("%s: unknown delete mode %q", r.Name, r.Endpoint.Delete)
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("%s: no fields", r.Name)
	}

	seen := map[string]bool{}
	for _, f := range r.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s: field without name", r.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicate field %q", r.Name, f.Name)
		}
		seen[f.Name] = true
		if !f.Kind.valid() {
			return fmt.Errorf("%s.%s: unknown kind %q", r.Name, f.Name, f.Kind)
		}
		if f.Kind == KindEnum && len(f.Options) == 0 {
			return fmt.Errorf("%s.%s: enum without options", r.Name, f.Name)
		}
		if f.Kind == KindRelation && (f.Relation == "" || f.RelationLabel == "") {
			return fmt.Errorf("%s.%s: relation needs relation and relation_label", r.Name, f.Name)
		}
		if !f.FormHidden && strings.Contains(f.Name, ".") {
			return fmt.Errorf("%s.%s: nested fields must be form_hidden", r.Name, f.Name)
		}
	}
	return nil
}
