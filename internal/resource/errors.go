package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	GenericMessage     = "The server could not process the request."
	unreachableMessage = "The server could not be reached."
	maxMessageLen      = 200
)

// NetworkError means no usable response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a failed response without field-level detail.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server error (%d): %s", e.Op, e.Status, e.Message)
}

// ValidationError is a rejected request carrying a user-facing message.
type ValidationError struct {
	Op      string
	Status  int
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation error (%d): %s", e.Op, e.Status, e.Message)
}

// Describe returns the message that may be shown to the admin for err.
func Describe(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return unreachableMessage
	}
	return GenericMessage
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

type failureBody struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
	Fields  json.RawMessage `json:"fields"`
}

// classify turns a failed response into the most specific error it can.
func classify(op string, status int, body []byte) error {
	msg, fields, parsed := parseFailure(body)
	switch {
	case status >= 400 && status < 500 && parsed && (msg != "" || len(fields) > 0):
		if msg == "" {
			msg = firstFieldMessage(fields)
		}
		return &ValidationError{Op: op, Status: status, Message: msg, Fields: fields}
	case parsed && msg != "":
		return &ServerError{Op: op, Status: status, Message: msg}
	default:
		return &ServerError{Op: op, Status: status, Message: GenericMessage}
	}
}

// rejected inspects a 2xx body for the {"success": false} envelope.
func rejected(op string, status int, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var fb failureBody
	if err := json.Unmarshal(trimmed, &fb); err != nil {
		return nil
	}
	if fb.Success == nil || *fb.Success {
		return nil
	}
	msg, fields, _ := parseFailure(trimmed)
	if len(fields) > 0 {
		if msg == "" {
			msg = firstFieldMessage(fields)
		}
		return &ValidationError{Op: op, Status: status, Message: msg, Fields: fields}
	}
	if msg == "" {
		msg = GenericMessage
	}
	return &ServerError{Op: op, Status: status, Message: msg}
}

func parseFailure(body []byte) (string, map[string]string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", nil, false
	}
	var fb failureBody
	if err := json.Unmarshal(trimmed, &fb); err != nil {
		return "", nil, false
	}

	msg := fb.Message
	if msg == "" {
		msg = rawString(fb.Error)
	}

	fields := rawFields(fb.Fields)
	if len(fields) == 0 {
		fields = rawFields(fb.Errors)
	}
	if msg == "" {
		// {"errors": ["a", "b"]}
		var list []string
		if err := json.Unmarshal(fb.Errors, &list); err == nil && len(list) > 0 {
			msg = strings.Join(list, " ")
		}
	}
	return clip(msg), fields, true
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func rawFields(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case string:
			out[k] = clip(x)
		case []any:
			if len(x) > 0 {
				out[k] = clip(FormatScalar(x[0]))
			}
		default:
			out[k] = clip(FormatScalar(x))
		}
	}
	return out
}

func firstFieldMessage(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fields[k] != "" {
			return fields[k]
		}
	}
	return http.StatusText(http.StatusUnprocessableEntity)
}

// clip caps s at maxMessageLen bytes without splitting a rune.
func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
