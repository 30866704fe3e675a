// Package form holds the in-progress state of a create or edit form.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Shivansh-Raheja/admin-panel/internal/http/validation"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

var (
	ErrClosed       = errors.New("form is not open")
	ErrInvalid      = errors.New("form has invalid fields")
	ErrUnknownField = errors.New("unknown form field")
	ErrNoID         = errors.New("record has no identifier")
)

type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Submitter is the part of the resource client a form needs.
type Submitter interface {
	Create(ctx context.Context, p resource.Payload) (resource.Record, error)
	Update(ctx context.Context, id string, p resource.Payload) (resource.Record, error)
}

// State is one form instance. It is not safe for concurrent use.
type State struct {
	def      schema.Resource
	validate *validator.Validate

	mode      Mode
	id        string
	values    map[string]string
	media     map[string]resource.MediaSlot
	fieldErrs validation.FieldErrors
	err       error
}

func New(def schema.Resource) *State {
	return &State{def: def, validate: validator.New()}
}

func (s *State) Mode() Mode { return s.mode }

func (s *State) IsOpen() bool { return s.mode != ModeClosed }

func (s *State) Editing() bool { return s.mode == ModeEdit }

// ID is the identifier of the record being edited.
func (s *State) ID() string { return s.id }

// OpenForCreate starts an empty form.
func (s *State) OpenForCreate() {
	s.clear()
	s.mode = ModeCreate
}

// OpenForEdit loads rec into the form. Scalar values are copied, media
// fields keep their existing paths for preview and start with nothing
// pending.
func (s *State) OpenForEdit(rec resource.Record) error {
	id, ok := rec.ID(s.def.Endpoint.IDKey())
	if !ok {
		return ErrNoID
	}
	s.clear()
	s.mode = ModeEdit
	s.id = id
	for _, f := range s.def.FormFields() {
		if f.IsMedia() {
			s.media[f.Name] = resource.MediaSlot{Existing: rec.Paths(f.Name), Multiple: f.Multiple}
			continue
		}
		if f.Kind == schema.KindPassword {
			continue
		}
		s.values[f.Name] = normalizeScalar(f, rec[f.Name])
	}
	return nil
}

// Reset discards everything and closes the form.
func (s *State) Reset() {
	s.clear()
	s.mode = ModeClosed
}

func (s *State) clear() {
	s.id = ""
	s.values = map[string]string{}
	s.media = map[string]resource.MediaSlot{}
	s.fieldErrs = nil
	s.err = nil
}

// SetField records a scalar value.
func (s *State) SetField(name, value string) error {
	if !s.IsOpen() {
		return ErrClosed
	}
	f, ok := s.def.Field(name)
	if !ok || f.FormHidden || f.IsMedia() {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if f.Kind == schema.KindBool {
		value = boolValue(value)
	}
	s.values[name] = value
	delete(s.fieldErrs, name)
	return nil
}

// Apply sets every editable scalar field from a submitted form. Unchecked
// checkboxes are absent from a submission and read as false.
func (s *State) Apply(values map[string]string) error {
	if !s.IsOpen() {
		return ErrClosed
	}
	for _, f := range s.def.FormFields() {
		if f.IsMedia() {
			continue
		}
		if err := s.SetField(f.Name, values[f.Name]); err != nil {
			return err
		}
	}
	return nil
}

// SetMediaField stages files for upload. An empty list keeps the slot's
// existing paths and clears anything pending.
func (s *State) SetMediaField(name string, files []resource.File) error {
	if !s.IsOpen() {
		return ErrClosed
	}
	f, ok := s.def.Field(name)
	if !ok || f.FormHidden || !f.IsMedia() {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !f.Multiple && len(files) > 1 {
		return fmt.Errorf("%s accepts a single file", f.Label)
	}
	slot := s.media[name]
	slot.Multiple = f.Multiple
	slot.Pending = append([]resource.File(nil), files...)
	s.media[name] = slot
	delete(s.fieldErrs, name)
	return nil
}

func (s *State) Value(name string) string { return s.values[name] }

// Values returns a copy of the scalar values.
func (s *State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *State) Existing(name string) []string {
	return append([]string(nil), s.media[name].Existing...)
}

func (s *State) Pending(name string) []resource.File {
	return append([]resource.File(nil), s.media[name].Pending...)
}

// FieldErrors returns the messages from the last Submit.
func (s *State) FieldErrors() validation.FieldErrors {
	out := validation.FieldErrors{}
	for k, v := range s.fieldErrs {
		out[k] = v
	}
	return out
}

// Err is the failure of the last Submit, if any.
func (s *State) Err() error { return s.err }

// Warnings lists soft-limit violations of the staged media. Files are
// never dropped because of them.
func (s *State) Warnings() []string {
	var out []string
	for _, f := range s.def.FormFields() {
		if !f.IsMedia() {
			continue
		}
		pending := s.media[f.Name].Pending
		if f.Max > 0 && len(pending) > f.Max {
			out = append(out, fmt.Sprintf("%s: %d files selected, at most %d are recommended.", f.Label, len(pending), f.Max))
		}
		if f.Accept == "" {
			continue
		}
		for _, file := range pending {
			if !accepts(f.Accept, file) {
				out = append(out, fmt.Sprintf("%s: %s does not look like %s.", f.Label, file.Filename, f.Accept))
			}
		}
	}
	return out
}

// Validate checks required and typed scalar fields and required media.
func (s *State) Validate() validation.FieldErrors {
	out := validation.FieldErrors{}
	editing := s.Editing()
	for _, f := range s.def.FormFields() {
		if f.IsMedia() {
			if f.RequiredFor(editing) && s.media[f.Name].State() == resource.SlotAbsent {
				out[f.Name] = validation.Message("required", "")
			}
			continue
		}
		v := strings.TrimSpace(s.values[f.Name])
		if v == "" {
			if f.RequiredFor(editing) && f.Kind != schema.KindBool {
				out[f.Name] = validation.Message("required", "")
			}
			continue
		}
		if tag := ruleFor(f); tag != "" {
			var ve validator.ValidationErrors
			if err := s.validate.Var(v, tag); errors.As(err, &ve) && len(ve) > 0 {
				out[f.Name] = validation.Message(ve[0].Tag(), ve[0].Param())
			}
		}
	}
	return out
}

func ruleFor(f schema.Field) string {
	switch f.Kind {
	case schema.KindEmail:
		return "email"
	case schema.KindNumber, schema.KindMoney:
		return "numeric"
	case schema.KindDate:
		return "datetime=2006-01-02"
	case schema.KindEnum:
		codes := make([]string, 0, len(f.Options))
		for _, o := range f.Options {
			codes = append(codes, o.Value)
		}
		return "oneof=" + strings.Join(codes, " ")
	}
	return ""
}

// Payload builds the request body. Text is sent as entered; only number
// and bool fields are trimmed for conversion. On edit, empty password
// fields are left out so the stored password is kept.
func (s *State) Payload() resource.Payload {
	p := resource.Payload{Fields: map[string]any{}, Media: map[string]resource.MediaSlot{}}
	for _, f := range s.def.FormFields() {
		if f.IsMedia() {
			if slot, ok := s.media[f.Name]; ok {
				p.Media[f.Name] = resource.MediaSlot{
					Existing: append([]string(nil), slot.Existing...),
					Pending:  append([]resource.File(nil), slot.Pending...),
					Multiple: slot.Multiple,
				}
			}
			continue
		}
		raw := s.values[f.Name]
		v := strings.TrimSpace(raw)
		switch {
		case f.Kind == schema.KindPassword && v == "" && s.Editing():
			continue
		case f.Kind.Numeric():
			if v == "" {
				p.Fields[f.Name] = nil
			} else {
				p.Fields[f.Name] = json.Number(v)
			}
		case f.Kind == schema.KindBool:
			p.Fields[f.Name] = v == "1"
		default:
			p.Fields[f.Name] = raw
		}
	}
	return p
}

// Request is a validated submission detached from the form, safe to send
// while the form itself is read elsewhere.
type Request struct {
	ID      string
	Payload resource.Payload
}

// Send creates or updates through sub depending on whether ID is set.
func (r Request) Send(ctx context.Context, sub Submitter) (resource.Record, error) {
	if r.ID != "" {
		return sub.Update(ctx, r.ID, r.Payload)
	}
	return sub.Create(ctx, r.Payload)
}

// Prepare validates the form and builds its Request. Validation failures
// are kept on the form and reported as ErrInvalid.
func (s *State) Prepare() (Request, error) {
	if !s.IsOpen() {
		return Request{}, ErrClosed
	}
	s.err = nil
	s.fieldErrs = s.Validate()
	if s.fieldErrs.Any() {
		s.err = ErrInvalid
		return Request{}, ErrInvalid
	}
	req := Request{Payload: s.Payload()}
	if s.Editing() {
		req.ID = s.id
	}
	return req, nil
}

// Finish records the outcome of a Request built by Prepare. Backend field
// messages for fields on this form are shown next to them.
func (s *State) Finish(err error) {
	s.err = err
	if err == nil {
		return
	}
	fieldErrs := validation.FieldErrors{}
	for k, v := range s.fieldErrs {
		fieldErrs[k] = v
	}
	var ve *resource.ValidationError
	if errors.As(err, &ve) {
		for name, msg := range ve.Fields {
			if _, ok := s.def.Field(name); ok {
				fieldErrs[name] = msg
			}
		}
	}
	s.fieldErrs = fieldErrs
}

// Submit validates and hands the payload to sub. On any failure the form
// stays open with its values and the error is kept for display.
func (s *State) Submit(ctx context.Context, sub Submitter) (resource.Record, error) {
	req, err := s.Prepare()
	if err != nil {
		return nil, err
	}
	rec, err := req.Send(ctx, sub)
	s.Finish(err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func normalizeScalar(f schema.Field, v any) string {
	s := resource.FormatScalar(v)
	switch f.Kind {
	case schema.KindBool:
		return boolValue(s)
	case schema.KindDate:
		// "2025-01-31 10:00:00" -> "2025-01-31"
		if len(s) > 10 {
			return s[:10]
		}
	}
	return s
}

func boolValue(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return "1"
	default:
		return "0"
	}
}

func accepts(accept string, f resource.File) bool {
	name := strings.ToLower(f.Filename)
	ct := strings.ToLower(f.ContentType)
	for _, a := range strings.Split(strings.ToLower(accept), ",") {
		a = strings.TrimSpace(a)
		switch {
		case a == "":
		case strings.HasPrefix(a, "."):
			if path.Ext(name) == a {
				return true
			}
		case strings.HasSuffix(a, "/*"):
			if strings.HasPrefix(ct, strings.TrimSuffix(a, "*")) {
				return true
			}
		case ct == a:
			return true
		}
	}
	return false
}
