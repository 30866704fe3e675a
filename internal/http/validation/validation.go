package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to its message. The "_" key holds a
// message that belongs to no single field.
type FieldErrors map[string]string

// Any reports whether at least one message is set.
func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// FromBindError converts a gin bind/validation error into field messages.
// dst is the bound struct pointer; its form tags name the fields.
func FromBindError(err error, dst any) FieldErrors {
	out := FieldErrors{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			key := fieldKey(dst, fe.StructField())
			out[key] = Message(fe.Tag(), fe.Param())
		}
		return out
	}

	out["_"] = "The submitted form is invalid."
	return out
}

// fieldKey names a failed struct field the way the request did: its form
// tag, then its json tag, then the lower-cased Go name.
func fieldKey(dst any, structField string) string {
	fallback := strings.ToLower(structField)

	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fallback
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return fallback
	}
	for _, key := range []string{"form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fallback
}

// Message returns the user-facing text for a failed validator tag.
func Message(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "number", "numeric":
		return "Enter a number."
	case "datetime":
		return "Enter a valid date."
	case "oneof":
		return "Choose one of the listed options."
	case "min":
		return "Must be at least " + param + " characters."
	case "max":
		return "Must be at most " + param + " characters."
	default:
		return "Invalid value."
	}
}
