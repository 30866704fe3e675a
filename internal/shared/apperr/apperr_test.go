package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InvalidErr("bad", nil), http.StatusBadRequest},
		{NotFoundErr("missing"), http.StatusNotFound},
		{&AppError{Kind: Unauthorized}, http.StatusUnauthorized},
		{&AppError{Kind: Unavailable, Err: errors.New("dial tcp")}, http.StatusBadGateway},
		{Wrap(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := NotFoundErr("Unknown resource.")
	wrapped := fmt.Errorf("handler: %w", base)

	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, NotFound, ae.Kind)
	assert.Equal(t, "Unknown resource.", PublicMessage(wrapped))
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	err := Wrap(errors.New("sql: connection refused"))
	assert.Equal(t, genericMessage, PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, Wrap(nil))
}

func TestBackend(t *testing.T) {
	assert.Nil(t, Backend(nil))

	refused := Backend(fmt.Errorf("create: %w", &resource.ValidationError{
		Op: "create", Status: http.StatusBadRequest, Message: "Title is required.",
		Fields: map[string]string{"title": "required"},
	}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(refused))
	assert.Equal(t, "Title is required.", PublicMessage(refused))
	assert.Equal(t, "required", refused.Fields["title"])

	missing := Backend(&resource.ValidationError{Status: http.StatusNotFound, Message: "Record not found."})
	assert.Equal(t, http.StatusNotFound, HTTPStatus(missing))

	denied := Backend(&resource.ValidationError{Status: http.StatusUnauthorized, Message: "Unauthorized."})
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(denied))

	down := Backend(&resource.NetworkError{Op: "list", Err: errors.New("dial tcp: refused")})
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(down))
	assert.NotContains(t, PublicMessage(down), "dial tcp")

	broken := Backend(&resource.ServerError{Op: "get", Status: 500, Message: "Database offline."})
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(broken))
	assert.Equal(t, "Database offline.", PublicMessage(broken))
}
