package resource

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method      string
	Query       map[string]string
	ContentType string
	JSON        map[string]any
	Form        map[string][]string
	Files       map[string][]string
	RequestID   string
}

// recorder answers every request with the next canned response and keeps
// what it received.
type recorder struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

func (rc *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cr := capturedRequest{
		Method:      r.Method,
		Query:       map[string]string{},
		ContentType: r.Header.Get("Content-Type"),
		RequestID:   r.Header.Get(HeaderRequestID),
	}
	for k := range r.URL.Query() {
		cr.Query[k] = r.URL.Query().Get(k)
	}
	switch {
	case strings.HasPrefix(cr.ContentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			cr.Form = r.MultipartForm.Value
			cr.Files = map[string][]string{}
			for name, fhs := range r.MultipartForm.File {
				for _, fh := range fhs {
					cr.Files[name] = append(cr.Files[name], fh.Filename)
				}
			}
		}
	case strings.HasPrefix(cr.ContentType, "application/json"):
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &cr.JSON)
	}

	rc.mu.Lock()
	rc.requests = append(rc.requests, cr)
	status, body := rc.status, rc.body
	rc.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (rc *recorder) last(t *testing.T) capturedRequest {
	t.Helper()
	rc.mu.Lock()
	defer rc.mu.Unlock()
	require.NotEmpty(t, rc.requests)
	return rc.requests[len(rc.requests)-1]
}

func newTestClient(t *testing.T, rc *recorder, ep Endpoint) *Client {
	t.Helper()
	srv := httptest.NewServer(rc)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/admin_api", ep)
}

func TestCreateWithoutMediaSendsJSON(t *testing.T) {
	rc := &recorder{body: `{"success":true,"message":"Coupon added","id":9}`}
	c := newTestClient(t, rc, Endpoint{Path: "coupon.php"})

	rec, err := c.Create(context.Background(), Payload{Fields: map[string]any{
		"name":     "WELCOME10",
		"discount": json.Number("10"),
	}})
	require.NoError(t, err)

	got := rc.last(t)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.True(t, strings.HasPrefix(got.ContentType, "application/json"))
	assert.Equal(t, "WELCOME10", got.JSON["name"])
	assert.EqualValues(t, 10, got.JSON["discount"])

	id, ok := rec.ID("id")
	require.True(t, ok)
	assert.Equal(t, "9", id)
	assert.Equal(t, "WELCOME10", rec.String("name"))
}

func TestCreateWithPendingMediaSwitchesToMultipart(t *testing.T) {
	rc := &recorder{body: `{"success":true}`}
	c := newTestClient(t, rc, Endpoint{Path: "products.php"})

	_, err := c.Create(context.Background(), Payload{
		Fields: map[string]any{"name": "Chair", "cost": json.Number("100")},
		Media: map[string]MediaSlot{
			"images": {Multiple: true, Pending: []File{
				{Filename: "front.jpg", ContentType: "image/jpeg", Data: []byte("a")},
				{Filename: "back.jpg", ContentType: "image/jpeg", Data: []byte("b")},
			}},
			"image_3d": {Existing: []string{"uploads/old.glb"}},
		},
	})
	require.NoError(t, err)

	got := rc.last(t)
	assert.True(t, strings.HasPrefix(got.ContentType, "multipart/form-data"))
	assert.Equal(t, []string{"Chair"}, got.Form["name"])
	assert.Equal(t, []string{"100"}, got.Form["cost"])
	assert.Equal(t, []string{"front.jpg", "back.jpg"}, got.Files["images[]"])
	assert.NotContains(t, got.Files, "image_3d", "existing-only slots are not re-sent")
}

func TestMultipartEndpointWithoutFiles(t *testing.T) {
	rc := &recorder{body: `{"success":true}`}
	c := newTestClient(t, rc, Endpoint{Path: "categories.php", Multipart: true})

	_, err := c.Create(context.Background(), Payload{Fields: map[string]any{"title": "Chairs"}})
	require.NoError(t, err)

	got := rc.last(t)
	assert.True(t, strings.HasPrefix(got.ContentType, "multipart/form-data"))
	assert.Equal(t, []string{"Chairs"}, got.Form["title"])
	assert.Empty(t, got.Files)
}

func TestUpdateModes(t *testing.T) {
	t.Run("put", func(t *testing.T) {
		rc := &recorder{body: `{"success":true}`}
		c := newTestClient(t, rc, Endpoint{Path: "coupon.php", Update: UpdatePut})

		rec, err := c.Update(context.Background(), "4", Payload{Fields: map[string]any{"name": "X"}})
		require.NoError(t, err)

		got := rc.last(t)
		assert.Equal(t, http.MethodPut, got.Method)
		assert.Equal(t, "4", got.JSON["id"])
		id, _ := rec.ID("id")
		assert.Equal(t, "4", id)
	})

	t.Run("post override", func(t *testing.T) {
		rc := &recorder{body: `{"success":true}`}
		c := newTestClient(t, rc, Endpoint{Path: "blog.php", Update: UpdatePostOverride, Multipart: true})

		_, err := c.Update(context.Background(), "12", Payload{Fields: map[string]any{"title": "Hello"}})
		require.NoError(t, err)

		got := rc.last(t)
		assert.Equal(t, http.MethodPost, got.Method)
		assert.Equal(t, "PUT", got.Query["_method"])
		assert.Equal(t, "12", got.Query["id"])
		assert.Equal(t, []string{"PUT"}, got.Form["_method"])
		assert.Equal(t, []string{"12"}, got.Form["id"])
	})

	t.Run("post upsert with custom id field", func(t *testing.T) {
		rc := &recorder{body: `{"success":true,"message":"Saved"}`}
		c := newTestClient(t, rc, Endpoint{Path: "orders.php", IDField: "orderId", Update: UpdatePost})

		_, err := c.Update(context.Background(), "42", Payload{Fields: map[string]any{"status": "shipped"}})
		require.NoError(t, err)

		got := rc.last(t)
		assert.Equal(t, http.MethodPost, got.Method)
		assert.Equal(t, "42", got.JSON["orderId"])
		assert.Equal(t, "shipped", got.JSON["status"])
	})
}

func TestRemoveModes(t *testing.T) {
	rc := &recorder{body: `{"success":true}`}
	byQuery := newTestClient(t, rc, Endpoint{Path: "orders.php", IDField: "orderId", Delete: DeleteQuery})
	require.NoError(t, byQuery.Remove(context.Background(), "42"))
	got := rc.last(t)
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "42", got.Query["id"])

	byBody := newTestClient(t, rc, Endpoint{Path: "categories.php", Delete: DeleteBody})
	require.NoError(t, byBody.Remove(context.Background(), "3"))
	got = rc.last(t)
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "3", got.JSON["id"])
}

func TestListEnvelopes(t *testing.T) {
	cases := []struct {
		name string
		ep   Endpoint
		body string
		want int
	}{
		{"bare array", Endpoint{Path: "categories.php"}, `[{"id":1,"title":"A"},{"id":2,"title":"B"}]`, 2},
		{"data envelope", Endpoint{Path: "x.php"}, `{"success":true,"data":[{"id":1}]}`, 1},
		{"named list", Endpoint{Path: "blog.php", ListKey: "blogs"}, `{"success":true,"blogs":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"single item", Endpoint{Path: "site_banners.php", ItemKey: "banner"}, `{"success":true,"banner":{"id":1,"text":"Sale"}}`, 1},
		{"null item", Endpoint{Path: "site_banners.php", ItemKey: "banner"}, `{"success":true,"banner":null}`, 0},
		{"empty body", Endpoint{Path: "x.php"}, ``, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc := &recorder{body: tc.body}
			c := newTestClient(t, rc, tc.ep)
			out, err := c.List(context.Background())
			require.NoError(t, err)
			assert.Len(t, out, tc.want)
		})
	}
}

func TestGetFallsBackToListLookup(t *testing.T) {
	rc := &recorder{body: `[{"orderId":"41"},{"orderId":"42","status":"processing"}]`}
	c := newTestClient(t, rc, Endpoint{Path: "orders.php", IDField: "orderId"})

	rec, err := c.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "processing", rec.String("status"))
	assert.Equal(t, "42", rc.last(t).Query["id"])
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		rc := &recorder{status: http.StatusUnprocessableEntity, body: `{"message":"Invalid input","fields":{"title":"Title is required"}}`}
		c := newTestClient(t, rc, Endpoint{Path: "categories.php"})
		_, err := c.Create(context.Background(), Payload{})

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "Invalid input", ve.Message)
		assert.Equal(t, "Title is required", ve.Fields["title"])
		assert.Equal(t, "Invalid input", Describe(err))
	})

	t.Run("validation message from fields", func(t *testing.T) {
		rc := &recorder{status: http.StatusBadRequest, body: `{"errors":{"email":["Email already taken"]}}`}
		c := newTestClient(t, rc, Endpoint{Path: "users.php"})
		_, err := c.Create(context.Background(), Payload{})

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "Email already taken", ve.Message)
	})

	t.Run("server with message", func(t *testing.T) {
		rc := &recorder{status: http.StatusInternalServerError, body: `{"success":false,"message":"Database unavailable"}`}
		c := newTestClient(t, rc, Endpoint{Path: "categories.php"})
		_, err := c.List(context.Background())

		var se *ServerError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusInternalServerError, se.Status)
		assert.Equal(t, "Database unavailable", Describe(err))
	})

	t.Run("unparseable body defaults to generic server error", func(t *testing.T) {
		rc := &recorder{status: http.StatusBadGateway, body: `<html>nginx</html>`}
		c := newTestClient(t, rc, Endpoint{Path: "categories.php"})
		_, err := c.List(context.Background())

		var se *ServerError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, GenericMessage, Describe(err))
	})

	t.Run("success false on 200", func(t *testing.T) {
		rc := &recorder{body: `{"success":false,"message":"Email already exists"}`}
		c := newTestClient(t, rc, Endpoint{Path: "users.php"})
		_, err := c.Create(context.Background(), Payload{})

		var se *ServerError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "Email already exists", Describe(err))
	})

	t.Run("network", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		c := NewClient(base, Endpoint{Path: "categories.php"}, WithHTTPClient(&http.Client{Timeout: time.Second}))
		_, err := c.List(context.Background())

		assert.True(t, IsNetwork(err))
		assert.Equal(t, unreachableMessage, Describe(err))
	})
}

type countingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *countingObserver) ObserveCall(endpoint, op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, endpoint+"/"+op+"/"+outcome)
}

func TestObserverAndToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	obs := &countingObserver{}
	c := NewClient(srv.URL, Endpoint{Path: "reviews.php"}, WithToken("tok"), WithObserver(obs))
	_, err := c.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, []string{"reviews.php/list/ok"}, obs.calls)
}

func TestRequestIDIsForwarded(t *testing.T) {
	rc := &recorder{body: `[]`}
	c := newTestClient(t, rc, Endpoint{Path: "categories.php"})

	_, err := c.List(WithRequestID(context.Background(), "req-42"))
	require.NoError(t, err)
	assert.Equal(t, "req-42", rc.last(t).RequestID)

	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rc.last(t).RequestID)
}

func TestLongMessagesAreClippedOnRuneBoundary(t *testing.T) {
	msg := strings.Repeat("a", 199) + strings.Repeat("é", 20)
	body, err := json.Marshal(map[string]any{"success": false, "message": msg})
	require.NoError(t, err)

	rc := &recorder{status: http.StatusUnprocessableEntity, body: string(body)}
	c := newTestClient(t, rc, Endpoint{Path: "categories.php"})
	_, err = c.Create(context.Background(), Payload{})
	require.Error(t, err)

	got := Describe(err)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 199), got)
}
