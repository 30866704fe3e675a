package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivansh-Raheja/admin-panel/internal/config"
	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	"github.com/Shivansh-Raheja/admin-panel/internal/metrics"
	"github.com/Shivansh-Raheja/admin-panel/internal/mockapi"
	"github.com/Shivansh-Raheja/admin-panel/internal/modules/auth"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
	"github.com/Shivansh-Raheja/admin-panel/internal/storage"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "secret123"
)

type app struct {
	t      *testing.T
	url    string
	client *http.Client
	store  *mockapi.MemoryStore
}

// newApp runs the dashboard against a seeded mock backend.
func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := mockapi.HashPassword(adminPassword)
	require.NoError(t, err)
	store := mockapi.NewMemoryStore()
	require.NoError(t, mockapi.Seed(context.Background(), store))
	uploads := t.TempDir()
	api := mockapi.New(store, storage.NewLocal(uploads, "uploads"), mockapi.Admin{Email: adminEmail, PasswordHash: hash, Name: "Admin"}, nil)
	backend := httptest.NewServer(api.Handler("/admin_api", uploads))
	t.Cleanup(backend.Close)

	cfg := config.Web{
		APIOrigin:     backend.URL,
		APIBasePath:   "/admin_api",
		SessionSecret: []byte("test-session-secret"),
		FlashSecret:   []byte("test-flash-secret"),
		SessionTTL:    time.Hour,
	}
	resources, err := schema.Default()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := metrics.New()
	builder := controller.Builder{
		BaseURL:   cfg.APIBaseURL(),
		Resources: resources,
		HTTP:      backend.Client(),
		Observer:  collector,
		Log:       logger,
	}
	r := NewRouter(Deps{
		Log:         logger,
		Config:      cfg,
		Resources:   resources,
		Controllers: controller.NewRegistry(builder.Build, cfg.SessionTTL),
		Auth:        auth.NewService(cfg.APIBaseURL(), backend.Client(), logger),
		Metrics:     collector,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &app{
		t:   t,
		url: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		store: store,
	}
}

func (a *app) do(req *http.Request) (*http.Response, string) {
	a.t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, string(b)
}

func (a *app) get(path string) (*http.Response, string) {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.url+path, nil)
	require.NoError(a.t, err)
	return a.do(req)
}

func (a *app) post(path string, form url.Values) (*http.Response, string) {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.url+path, strings.NewReader(form.Encode()))
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *app) login() {
	a.t.Helper()
	resp, _ := a.post("/login", url.Values{"email": {adminEmail}, "password": {adminPassword}})
	require.Equal(a.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(a.t, "/dashboard", resp.Header.Get("Location"))
}

func (a *app) row(collection string, id int64) (mockapi.Row, error) {
	return a.store.Get(context.Background(), collection, id)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)

	resp, body := a.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"ok"`)

	resp, body = a.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "admin_panel_http_requests_total")
}

func TestDashboardRequiresLogin(t *testing.T) {
	a := newApp(t)

	resp, _ := a.get("/dashboard/categories")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?return_to="+url.QueryEscape("/dashboard/categories"), resp.Header.Get("Location"))

	resp, body := a.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please log in to continue.")
}

func TestLogin_RejectedAndAccepted(t *testing.T) {
	a := newApp(t)

	resp, body := a.post("/login", url.Values{"email": {adminEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password.")

	resp, body = a.post("/login", url.Values{"email": {"not-an-email"}, "password": {"x"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "not-an-email")

	a.login()
	resp, body = a.get("/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back, Admin.")

	// logged-in admins are sent away from the login page
	resp, _ = a.get("/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	a.login()

	resp, _ := a.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = a.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestUnknownResource(t *testing.T) {
	a := newApp(t)
	a.login()

	resp, _ := a.get("/dashboard/warehouses")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateCategoryWithoutImage(t *testing.T) {
	a := newApp(t)
	a.login()

	resp, body := a.get("/dashboard/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sofas")

	resp, body = a.get("/dashboard/categories/new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="title"`)

	resp, _ = a.post("/dashboard/categories", url.Values{"title": {"Chairs"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/categories", resp.Header.Get("Location"))

	resp, body = a.get("/dashboard/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Chairs")
	assert.Contains(t, body, "Category created.")

	rows, err := a.store.List(context.Background(), "categories")
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, "Chairs", last.Data["title"])
	assert.NotContains(t, last.Data, "image")
}

func TestCreateCategory_MissingTitle(t *testing.T) {
	a := newApp(t)
	a.login()

	resp, body := a.post("/dashboard/categories", url.Values{"title": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Check the highlighted fields.")

	rows, err := a.store.List(context.Background(), "categories")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUpdateProductKeepsImages(t *testing.T) {
	a := newApp(t)
	images := []any{"uploads/front.png", "uploads/back.png"}
	prod, err := a.store.Create(context.Background(), "products", map[string]any{
		"name": "Desk", "cost": 100, "category_id": 1, "images": images,
	}, "")
	require.NoError(t, err)
	a.login()

	id := strconv.FormatInt(prod.ID, 10)
	resp, body := a.get("/dashboard/products/" + id + "/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "front.png")

	resp, _ = a.post("/dashboard/products/"+id, url.Values{
		"name": {"Desk"}, "cost": {"120"}, "category_id": {"1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	row, err := a.row("products", prod.ID)
	require.NoError(t, err)
	assert.Equal(t, "120", row.Data["cost"])
	assert.Equal(t, images, row.Data["images"])
}

func TestCreateProductWithTwoImages(t *testing.T) {
	a := newApp(t)
	a.login()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Stool"))
	require.NoError(t, w.WriteField("cost", "999"))
	require.NoError(t, w.WriteField("category_id", "2"))
	for _, name := range []string{"one.png", "two.jpg"} {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, a.url+"/dashboard/products", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, _ := a.do(req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	rows, err := a.store.List(context.Background(), "products")
	require.NoError(t, err)
	created := rows[len(rows)-1]
	assert.Equal(t, "Stool", created.Data["name"])
	paths, ok := created.Data["images"].([]any)
	require.True(t, ok)
	require.Len(t, paths, 2)
	assert.True(t, strings.HasSuffix(paths[0].(string), ".png"))
	assert.True(t, strings.HasSuffix(paths[1].(string), ".jpg"))
}

func TestOrderDetailAndDelete(t *testing.T) {
	a := newApp(t)
	a.login()

	resp, body := a.get("/dashboard/orders")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Asha Verma")

	resp, body = a.get("/dashboard/orders/2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Rohan Mehta")
	assert.Contains(t, body, "Catalog item")

	resp, body = a.get("/dashboard/orders/1/delete")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="confirm"`)

	// declined: nothing is deleted
	resp, _ = a.post("/dashboard/orders/1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, err := a.row("orders", 1)
	require.NoError(t, err)
	resp, body = a.get("/dashboard/orders")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Order was not deleted.")
	assert.Contains(t, body, "Asha Verma")

	resp, _ = a.post("/dashboard/orders/1/delete", url.Values{"confirm": {"1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, err = a.row("orders", 1)
	assert.ErrorIs(t, err, mockapi.ErrNotFound)

	resp, body = a.get("/dashboard/orders")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Order deleted.")
	assert.NotContains(t, body, "Asha Verma")
}

func TestDetailUnavailableForCategories(t *testing.T) {
	a := newApp(t)
	a.login()

	resp, _ := a.get("/dashboard/categories/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
