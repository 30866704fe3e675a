package form

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

type fakeSubmitter struct {
	creates []resource.Payload
	updates map[string]resource.Payload
	err     error
}

func (f *fakeSubmitter) Create(_ context.Context, p resource.Payload) (resource.Record, error) {
	f.creates = append(f.creates, p)
	if f.err != nil {
		return nil, f.err
	}
	return resource.Record{"id": "1"}, nil
}

func (f *fakeSubmitter) Update(_ context.Context, id string, p resource.Payload) (resource.Record, error) {
	if f.updates == nil {
		f.updates = map[string]resource.Payload{}
	}
	f.updates[id] = p
	if f.err != nil {
		return nil, f.err
	}
	return resource.Record{"id": id}, nil
}

func lookup(t *testing.T, name string) schema.Resource {
	t.Helper()
	reg, err := schema.Default()
	require.NoError(t, err)
	def, ok := reg.Lookup(name)
	require.True(t, ok)
	return def
}

func TestCreateWithoutImage(t *testing.T) {
	s := New(lookup(t, "categories"))
	s.OpenForCreate()
	require.NoError(t, s.SetField("title", "Chairs"))

	sub := &fakeSubmitter{}
	rec, err := s.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "1", rec.String("id"))

	require.Len(t, sub.creates, 1)
	p := sub.creates[0]
	assert.Equal(t, "Chairs", p.Fields["title"])
	assert.False(t, p.HasPendingMedia())
}

func TestMissingRequiredNeverCallsClient(t *testing.T) {
	s := New(lookup(t, "categories"))
	s.OpenForCreate()

	sub := &fakeSubmitter{}
	_, err := s.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, sub.creates)
	assert.Equal(t, "This field is required.", s.FieldErrors()["title"])
	assert.True(t, s.IsOpen())
}

func TestTypedValidation(t *testing.T) {
	s := New(lookup(t, "coupon"))
	s.OpenForCreate()
	require.NoError(t, s.Apply(map[string]string{
		"name":       "SAVE",
		"discount":   "ten",
		"valid_from": "31/01/2025",
		"status":     "7",
	}))

	fe := s.Validate()
	assert.Equal(t, "Enter a number.", fe["discount"])
	assert.Equal(t, "Enter a valid date.", fe["valid_from"])
	assert.Equal(t, "Choose one of the listed options.", fe["status"])
	assert.NotContains(t, fe, "usage_limit", "optional and empty")
}

func TestEditKeepsExistingMediaAndConvertsScalars(t *testing.T) {
	s := New(lookup(t, "products"))
	require.NoError(t, s.OpenForEdit(resource.Record{
		"id":          json.Number("7"),
		"name":        "Chair",
		"cost":        json.Number("100"),
		"category_id": json.Number("2"),
		"images":      `["uploads/a.jpg","uploads/b.jpg"]`,
	}))
	assert.Equal(t, "7", s.ID())
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.jpg"}, s.Existing("images"))
	assert.Empty(t, s.Pending("images"))

	require.NoError(t, s.SetField("cost", "120"))
	sub := &fakeSubmitter{}
	_, err := s.Submit(context.Background(), sub)
	require.NoError(t, err)

	p := sub.updates["7"]
	assert.Equal(t, json.Number("120"), p.Fields["cost"])
	assert.Nil(t, p.Fields["mrp"])
	assert.Equal(t, resource.SlotExisting, p.Media["images"].State())
	assert.False(t, p.HasPendingMedia())
	assert.NotContains(t, p.Fields, "id")
}

func TestEditOrderSendsStatusOnly(t *testing.T) {
	s := New(lookup(t, "orders"))
	require.NoError(t, s.OpenForEdit(resource.Record{
		"orderId":  "42",
		"status":   "processing",
		"customer": map[string]any{"name": "Asha"},
	}))
	require.NoError(t, s.SetField("status", "shipped"))
	assert.ErrorIs(t, s.SetField("customer.name", "x"), ErrUnknownField)

	sub := &fakeSubmitter{}
	_, err := s.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "shipped"}, sub.updates["42"].Fields)
}

func TestPasswordOmittedWhenBlankOnEdit(t *testing.T) {
	s := New(lookup(t, "users"))
	require.NoError(t, s.OpenForEdit(resource.Record{"id": "3", "name": "Ravi", "email": "ravi@example.com"}))
	assert.Empty(t, s.Validate())
	assert.NotContains(t, s.Payload().Fields, "password")

	s.OpenForCreate()
	require.NoError(t, s.Apply(map[string]string{"name": "Ravi", "email": "ravi@example.com"}))
	assert.Contains(t, s.Validate(), "password")
}

func TestBoolFields(t *testing.T) {
	s := New(lookup(t, "site_banners"))
	require.NoError(t, s.OpenForEdit(resource.Record{"id": "1", "text": "Sale", "is_active": true}))
	assert.Equal(t, "1", s.Value("is_active"))

	require.NoError(t, s.Apply(map[string]string{"text": "Sale"}))
	assert.Equal(t, false, s.Payload().Fields["is_active"])
}

func TestSoftLimitsWarnWithoutTruncating(t *testing.T) {
	s := New(lookup(t, "products"))
	s.OpenForCreate()

	files := make([]resource.File, 7)
	for i := range files {
		files[i] = resource.File{Filename: "p.jpg", ContentType: "image/jpeg"}
	}
	files[6] = resource.File{Filename: "notes.txt", ContentType: "text/plain"}
	require.NoError(t, s.SetMediaField("images", files))

	assert.Len(t, s.Pending("images"), 7)
	w := s.Warnings()
	require.Len(t, w, 2)
	assert.Contains(t, w[0], "at most 5")
	assert.Contains(t, w[1], "notes.txt")

	assert.Error(t, s.SetMediaField("image_3d", []resource.File{{Filename: "a.glb"}, {Filename: "b.glb"}}))
}

func TestRequiredMediaOnCreateOnly(t *testing.T) {
	s := New(lookup(t, "reviews"))
	s.OpenForCreate()
	require.NoError(t, s.Apply(map[string]string{"name": "Meera", "review": "Great"}))
	assert.Contains(t, s.Validate(), "image")

	require.NoError(t, s.OpenForEdit(resource.Record{"id": "5", "name": "Meera", "review": "Great"}))
	assert.Empty(t, s.Validate())
}

func TestClientFailureKeepsFormOpen(t *testing.T) {
	s := New(lookup(t, "users"))
	s.OpenForCreate()
	require.NoError(t, s.Apply(map[string]string{"name": "Ravi", "email": "ravi@example.com", "password": "secret1"}))

	sub := &fakeSubmitter{err: &resource.ValidationError{
		Op: "create", Status: 422, Message: "Email already exists",
		Fields: map[string]string{"email": "Email already exists", "other": "ignored"},
	}}
	_, err := s.Submit(context.Background(), sub)

	var ve *resource.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, s.IsOpen())
	assert.Equal(t, "ravi@example.com", s.Value("email"))
	assert.Equal(t, err, s.Err())
	assert.Equal(t, "Email already exists", s.FieldErrors()["email"])
	assert.NotContains(t, s.FieldErrors(), "other")
}

func TestClosedForm(t *testing.T) {
	s := New(lookup(t, "categories"))
	assert.ErrorIs(t, s.SetField("title", "x"), ErrClosed)
	_, err := s.Submit(context.Background(), &fakeSubmitter{})
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, s.OpenForEdit(resource.Record{"title": "no id"}), ErrNoID)

	s.OpenForCreate()
	require.NoError(t, s.SetField("title", "x"))
	s.Reset()
	assert.False(t, s.IsOpen())
	assert.Empty(t, s.Values())
}

func TestEditSendsTextAsStored(t *testing.T) {
	s := New(lookup(t, "products"))
	require.NoError(t, s.OpenForEdit(resource.Record{
		"id": json.Number("7"), "name": "Chair", "cost": json.Number("100"),
		"description": "  Solid oak.\n",
	}))
	require.NoError(t, s.SetField("cost", " 120 "))

	p := s.Payload()
	assert.Equal(t, "  Solid oak.\n", p.Fields["description"])
	assert.Equal(t, json.Number("120"), p.Fields["cost"])
}

func TestPrepareDetachesRequestFromForm(t *testing.T) {
	s := New(lookup(t, "categories"))
	s.OpenForCreate()
	require.NoError(t, s.SetField("title", "Chairs"))

	req, err := s.Prepare()
	require.NoError(t, err)
	assert.Empty(t, req.ID)

	require.NoError(t, s.SetField("title", "Stools"))
	assert.Equal(t, "Chairs", req.Payload.Fields["title"])

	sub := &fakeSubmitter{err: &resource.ValidationError{
		Op: "create", Status: 409, Message: "Title already exists.",
		Fields: map[string]string{"title": "Title already exists."},
	}}
	_, err = req.Send(context.Background(), sub)
	require.Error(t, err)
	require.Len(t, sub.creates, 1)

	before := s.FieldErrors()
	s.Finish(err)
	assert.Empty(t, before)
	assert.Equal(t, "Title already exists.", s.FieldErrors()["title"])
	assert.Equal(t, err, s.Err())
	assert.True(t, s.IsOpen())

	s.Finish(nil)
	assert.NoError(t, s.Err())
}

func TestPrepareRejectsInvalidForm(t *testing.T) {
	s := New(lookup(t, "categories"))
	_, err := s.Prepare()
	assert.ErrorIs(t, err, ErrClosed)

	s.OpenForCreate()
	_, err = s.Prepare()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, s.FieldErrors(), "title")
}
