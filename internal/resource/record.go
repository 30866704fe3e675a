package resource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one backend item, kept as an opaque field map.
type Record map[string]any

// ID returns the record identifier stored under field. Numbers and strings
// are both accepted; transient records report false.
func (r Record) ID(field string) (string, bool) {
	if r == nil {
		return "", false
	}
	s := FormatScalar(r[field])
	if s == "" {
		return "", false
	}
	return s, true
}

// String returns the display form of a scalar field.
func (r Record) String(field string) string {
	if r == nil {
		return ""
	}
	return FormatScalar(r[field])
}

// Paths returns the media paths stored under field. Backends hand these out
// as a single string, a JSON array, or a JSON-encoded array inside a string.
func (r Record) Paths(field string) []string {
	if r == nil {
		return nil
	}
	switch v := r[field].(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var out []string
			if err := json.Unmarshal([]byte(s), &out); err == nil {
				return compact(out)
			}
		}
		return []string{s}
	case []string:
		return compact(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			out = append(out, FormatScalar(it))
		}
		return compact(out)
	default:
		return compact([]string{FormatScalar(v)})
	}
}

// Lookup resolves a dotted path such as "customer.name" through nested
// objects.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FormatScalar renders a decoded JSON value the way it would be posted in a
// form field.
func FormatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
