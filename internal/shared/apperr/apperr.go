// Package apperr carries route-level failures to the error handler.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

type Kind string

const (
	Invalid      Kind = "invalid"
	NotFound     Kind = "not_found"
	Unauthorized Kind = "unauthorized"
	Unavailable  Kind = "unavailable"
	Internal     Kind = "internal"
)

const genericMessage = "Something went wrong. Please try again."

type AppError struct {
	Kind      Kind
	PublicMsg string            // safe to show to the admin
	Fields    map[string]string // per-field messages (optional)
	Err       error             // internal cause, logged only
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.PublicMsg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

func InvalidErr(publicMsg string, fields map[string]string) *AppError {
	return &AppError{Kind: Invalid, PublicMsg: publicMsg, Fields: fields}
}

func NotFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: publicMsg}
}

// Wrap hides an internal error behind the generic public message (500).
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Kind: Internal, PublicMsg: genericMessage, Err: err}
}

// Backend classifies a failed catalog backend call. Input the backend
// refused keeps its field messages; anything else is reported as the
// backend being unavailable, with the message resource.Describe allows.
func Backend(err error) *AppError {
	if err == nil {
		return nil
	}
	ae := &AppError{Kind: Unavailable, PublicMsg: resource.Describe(err), Err: err}

	var ve *resource.ValidationError
	if errors.As(err, &ve) {
		ae.Fields = ve.Fields
		switch ve.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			ae.Kind = Unauthorized
		case http.StatusNotFound:
			ae.Kind = NotFound
		default:
			ae.Kind = Invalid
		}
	}
	return ae
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func HTTPStatus(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case Invalid:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return genericMessage
}
