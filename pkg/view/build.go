package view

import (
	"path"
	"sort"
	"strings"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

// MediaResolver turns a stored media path into a URL the browser can load.
type MediaResolver func(p string) string

// Related holds the referenced collections by resource name.
type Related map[string][]resource.Record

// relationKey is the identifier field of every referenced collection.
const relationKey = "id"

var imageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".avif": true, ".bmp": true,
}

// IsImage reports whether p looks like an image by its extension.
func IsImage(p string) bool {
	p = strings.ToLower(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return imageExt[path.Ext(p)]
}

// Columns returns the table header of def.
func Columns(def schema.Resource) []Column {
	fields := def.ListFields()
	out := make([]Column, 0, len(fields))
	for _, f := range fields {
		out = append(out, Column{Label: f.Label})
	}
	return out
}

// Rows maps cached records to table rows. hrefBase is the list URL the
// row actions hang off; deleting marks the row being removed.
func Rows(def schema.Resource, records []resource.Record, related Related, media MediaResolver, hrefBase, deleting string) []Row {
	key := def.Endpoint.IDKey()
	fields := def.ListFields()
	out := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{Cells: make([]Cell, 0, len(fields))}
		for _, f := range fields {
			row.Cells = append(row.Cells, CellFor(f, rec, related, media))
		}
		if id, ok := rec.ID(key); ok {
			row.ID = id
			base := strings.TrimRight(hrefBase, "/") + "/" + id
			if def.Capabilities.Edit {
				row.EditHref = base + "/edit"
			}
			if def.Capabilities.Detail {
				row.DetailHref = base
			}
			if def.Capabilities.Delete {
				row.DeleteHref = base + "/delete"
			}
			row.Deleting = deleting != "" && deleting == id
		}
		out = append(out, row)
	}
	return out
}

// CellFor renders one field of rec for the table.
func CellFor(f schema.Field, rec resource.Record, related Related, media MediaResolver) Cell {
	if f.IsMedia() {
		var cell Cell
		for _, p := range rec.Paths(f.Name) {
			u := resolve(media, p)
			if IsImage(p) {
				cell.Images = append(cell.Images, u)
			} else {
				cell.Links = append(cell.Links, u)
			}
		}
		return cell
	}

	raw, _ := rec.Lookup(f.Name)
	v := resource.FormatScalar(raw)
	switch f.Kind {
	case schema.KindEnum:
		if v == "" {
			return Cell{}
		}
		return Cell{Text: f.OptionLabel(v), Badge: v}
	case schema.KindRelation:
		return Cell{Text: RelationLabel(f, v, related)}
	case schema.KindTextarea:
		return Cell{Text: Truncate(v, 80)}
	case schema.KindPassword:
		return Cell{}
	default:
		return Cell{Text: Scalar(f.Kind, v)}
	}
}

// Scalar formats a scalar value by kind.
func Scalar(kind schema.Kind, v string) string {
	if v == "" {
		return ""
	}
	switch kind {
	case schema.KindMoney:
		return Money(v)
	case schema.KindDate:
		return Date(v)
	case schema.KindBool:
		if v == "1" || strings.EqualFold(v, "true") {
			return "Yes"
		}
		return "No"
	default:
		return v
	}
}

// RelationLabel resolves a foreign key to the referenced record's label.
// Unknown keys are shown as they are.
func RelationLabel(f schema.Field, id string, related Related) string {
	if id == "" {
		return ""
	}
	for _, rec := range related[f.Relation] {
		if rid, ok := rec.ID(relationKey); ok && rid == id {
			if label := rec.String(f.RelationLabel); label != "" {
				return label
			}
		}
	}
	return id
}

// RelationOptions lists the referenced collection as select options.
func RelationOptions(f schema.Field, selected string, related Related) []FieldOption {
	recs := related[f.Relation]
	out := make([]FieldOption, 0, len(recs))
	for _, rec := range recs {
		id, ok := rec.ID(relationKey)
		if !ok {
			continue
		}
		label := rec.String(f.RelationLabel)
		if label == "" {
			label = id
		}
		out = append(out, FieldOption{Value: id, Label: label, Selected: id == selected})
	}
	return out
}

// FormInput is the state of an open form as the builder needs it.
type FormInput struct {
	Editing  bool
	Values   map[string]string
	Existing map[string][]string
	Pending  map[string][]string
	Errors   map[string]string
}

// FormFields builds the inputs of def's form.
func FormFields(def schema.Resource, in FormInput, related Related, media MediaResolver) []FormField {
	fields := def.FormFields()
	out := make([]FormField, 0, len(fields))
	for _, f := range fields {
		ff := FormField{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     string(f.Kind),
			Value:    in.Values[f.Name],
			Required: f.RequiredFor(in.Editing),
			Multiple: f.Multiple,
			Accept:   f.Accept,
			Max:      f.Max,
			Error:    in.Errors[f.Name],
			Pending:  in.Pending[f.Name],
		}
		switch f.Kind {
		case schema.KindEnum:
			for _, o := range f.Options {
				ff.Options = append(ff.Options, FieldOption{Value: o.Value, Label: o.Label, Selected: o.Value == ff.Value})
			}
		case schema.KindRelation:
			ff.Options = RelationOptions(f, ff.Value, related)
		case schema.KindMedia:
			for _, p := range in.Existing[f.Name] {
				ff.Existing = append(ff.Existing, ExistingFile{URL: resolve(media, p), Name: path.Base(strings.ReplaceAll(p, `\`, "/")), Image: IsImage(p)})
			}
		case schema.KindPassword:
			ff.Value = ""
		}
		out = append(out, ff)
	}
	return out
}

// Detail flattens a fetched record. Schema fields come first in declaration
// order, the remaining keys follow sorted. Nested objects become dotted
// pairs and arrays of objects become tables.
func Detail(def schema.Resource, rec resource.Record, related Related, media MediaResolver) ([]Pair, []Table) {
	var pairs []Pair
	var tables []Table
	covered := map[string]bool{}

	for _, f := range def.Fields {
		covered[f.Name] = true
		if f.Kind == schema.KindPassword {
			continue
		}
		raw, ok := rec.Lookup(f.Name)
		if !ok {
			continue
		}
		cell := CellFor(f, rec, related, media)
		if f.Kind == schema.KindTextarea {
			cell.Text = resource.FormatScalar(raw)
		}
		pairs = append(pairs, Pair{Label: f.Label, Value: cell.Text, Links: append(cell.Images, cell.Links...)})
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		if !covered[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		flatten(k, rec[k], covered, &pairs, &tables)
	}
	return pairs, tables
}

func flatten(key string, v any, covered map[string]bool, pairs *[]Pair, tables *[]Table) {
	if covered[key] {
		return
	}
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(key+"."+k, x[k], covered, pairs, tables)
		}
	case []any:
		if t, ok := tableOf(key, x); ok {
			*tables = append(*tables, t)
			return
		}
		parts := make([]string, 0, len(x))
		for _, it := range x {
			parts = append(parts, resource.FormatScalar(it))
		}
		*pairs = append(*pairs, Pair{Label: Humanize(key), Value: strings.Join(parts, ", ")})
	default:
		*pairs = append(*pairs, Pair{Label: Humanize(key), Value: resource.FormatScalar(x)})
	}
}

// tableOf renders a list of objects as a table whose columns are the union
// of the objects' keys.
func tableOf(key string, items []any) (Table, bool) {
	if len(items) == 0 {
		return Table{}, false
	}
	cols := map[string]bool{}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return Table{}, false
		}
		for k := range m {
			cols[k] = true
		}
	}
	t := Table{Title: Humanize(key)}
	for k := range cols {
		t.Columns = append(t.Columns, k)
	}
	sort.Strings(t.Columns)
	for _, it := range items {
		m := it.(map[string]any)
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = resource.FormatScalar(m[c])
		}
		t.Rows = append(t.Rows, row)
	}
	for i, c := range t.Columns {
		t.Columns[i] = Humanize(c)
	}
	return t, true
}

func resolve(media MediaResolver, p string) string {
	if media == nil {
		return p
	}
	return media(p)
}
