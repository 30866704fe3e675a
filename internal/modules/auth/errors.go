package auth

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")

// RejectedError carries the backend's reason for refusing a login.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return "login rejected: " + e.Message }

func (e *RejectedError) Unwrap() error { return ErrInvalidCredentials }
