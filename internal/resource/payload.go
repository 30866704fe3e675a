package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"
)

// Payload is what the form hands to the client: scalar fields plus media
// slots.
type Payload struct {
	Fields map[string]any
	Media  map[string]MediaSlot
}

// HasPendingMedia reports whether any slot carries a file to upload.
func (p Payload) HasPendingMedia() bool {
	for _, s := range p.Media {
		if s.State() == SlotPending {
			return true
		}
	}
	return false
}

func (p Payload) merged(extra map[string]any) map[string]any {
	out := make(map[string]any, len(p.Fields)+len(extra))
	for k, v := range p.Fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// encode serializes the payload. Multipart is used whenever a file is
// pending or the endpoint only reads form data; JSON otherwise.
func (p Payload) encode(forceMultipart bool, extra map[string]any) (io.Reader, string, error) {
	fields := p.merged(extra)
	if !forceMultipart && !p.HasPendingMedia() {
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, "", fmt.Errorf("encode json payload: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range sortedKeys(fields) {
		if err := w.WriteField(k, FormatScalar(fields[k])); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	names := make([]string, 0, len(p.Media))
	for name := range p.Media {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		slot := p.Media[name]
		if slot.State() != SlotPending {
			continue
		}
		part := name
		if slot.Multiple {
			part = name + "[]"
		}
		for _, f := range slot.Pending {
			if err := writeFile(w, part, f); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func writeFile(w *multipart.Writer, part string, f File) error {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(part), quoteEscaper.Replace(f.Filename)))
	h.Set("Content-Type", ct)
	pw, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", part, err)
	}
	if _, err := pw.Write(f.Data); err != nil {
		return fmt.Errorf("write part %s: %w", part, err)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
