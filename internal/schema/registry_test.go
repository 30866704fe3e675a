package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	names := make([]string, 0)
	for _, r := range reg.All() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"categories", "products", "orders", "order_requests", "coupon", "banners",
		"partners", "brochure", "blog", "reviews", "users", "site_banners",
	}, names)

	products, ok := reg.Lookup("products")
	require.True(t, ok)
	assert.Equal(t, resource.UpdatePostOverride, products.Endpoint.Update)
	assert.True(t, products.Endpoint.Multipart)
	assert.Equal(t, []string{"categories"}, products.Relations())

	images, ok := products.Field("images")
	require.True(t, ok)
	assert.True(t, images.Multiple)
	assert.Equal(t, 5, images.Max)

	orders, _ := reg.Lookup("orders")
	assert.Equal(t, "orderId", orders.Endpoint.IDKey())
	assert.False(t, orders.Capabilities.Create)
	assert.True(t, orders.Capabilities.Detail)
	form := orders.FormFields()
	require.Len(t, form, 1)
	assert.Equal(t, "status", form[0].Name)
	assert.Equal(t, "Shipped", form[0].OptionLabel("shipped"))

	partners, _ := reg.Lookup("partners")
	banners, _ := reg.Lookup("banners")
	assert.Equal(t, banners.Fields, partners.Fields)

	site, _ := reg.Lookup("site_banners")
	assert.Equal(t, "banner", site.Endpoint.ItemKey)

	_, ok = reg.Lookup("payments")
	assert.False(t, ok)
}

func TestRequiredFor(t *testing.T) {
	f := Field{Name: "password", Kind: KindPassword, RequiredOnCreate: true}
	assert.True(t, f.RequiredFor(false))
	assert.False(t, f.RequiredFor(true))
	assert.Equal(t, "unknown", Field{}.OptionLabel("unknown"))
}

func TestParseRejectsBrokenDefinitions(t *testing.T) {
	cases := map[string]string{
		"no resources": `resources: []`,
		"missing path": `
resources:
  - name: a
    fields: [{name: x, kind: text}]`,
		"bad kind": `
resources:
  - name: a
    endpoint: {path: a.php}
    fields: [{name: x, kind: colour}]`,
		"enum without options": `
resources:
  - name: a
    endpoint: {path: a.php}
    fields: [{name: x, kind: enum}]`,
		"unknown relation": `
resources:
  - name: a
    endpoint: {path: a.php}
    fields: [{name: x, kind: relation, relation: b, relation_label: title}]`,
		"bad update mode": `
resources:
  - name: a
    endpoint: {path: a.php, update: patch}
    fields: [{name: x, kind: text}]`,
		"editable nested field": `
resources:
  - name: a
    endpoint: {path: a.php}
    fields: [{name: x.y, kind: text}]`,
		"duplicate resource": `
resources:
  - name: a
    endpoint: {path: a.php}
    fields: [{name: x, kind: text}]
  - name: a
    endpoint: {path: a.php}
    fields: [{name: x, kind: text}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resources:
  - name: faq
    label: FAQ
    endpoint: {path: faq.php, list_key: faqs}
    capabilities: {create: true}
    fields:
      - {name: question, kind: text, required: true}
`), 0o600))

	reg, err := Load(path)
	require.NoError(t, err)
	faq, ok := reg.Lookup("faq")
	require.True(t, ok)
	assert.Equal(t, "faq", faq.Singular)
	assert.Equal(t, "faqs", faq.Endpoint.ListKey)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	reg, err = Load("")
	require.NoError(t, err)
	assert.Len(t, reg.All(), 12)
}
