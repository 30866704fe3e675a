package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errUnrecognized = errors.New("unrecognized response envelope")

func decodeJSON(body []byte) (any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeCollection accepts a bare array, {success, data}, {success, <list
// key>} or a single-object envelope and always returns a collection.
func decodeCollection(body []byte, ep Endpoint) ([]Record, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return []Record{}, nil
	case []any:
		return toRecords(x)
	case map[string]any:
		for _, key := range []string{ep.ListKey, "data", ep.ItemKey} {
			if key == "" {
				continue
			}
			inner, ok := x[key]
			if !ok {
				continue
			}
			switch y := inner.(type) {
			case nil:
				return []Record{}, nil
			case []any:
				return toRecords(y)
			case map[string]any:
				return []Record{Record(y)}, nil
			default:
				return nil, fmt.Errorf("%w: %q is %T", errUnrecognized, key, inner)
			}
		}
		if _, ok := x[ep.IDKey()]; ok {
			return []Record{Record(x)}, nil
		}
		if _, ok := x["success"]; ok {
			return []Record{}, nil
		}
		return nil, errUnrecognized
	default:
		return nil, fmt.Errorf("%w: %T", errUnrecognized, v)
	}
}

// decodeRecord extracts one record from a detail or mutation response. The
// second result is false when the body only acknowledged the call.
func decodeRecord(body []byte, ep Endpoint) (Record, bool, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, false, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		if arr, isArr := v.([]any); isArr && len(arr) == 1 {
			if m, isMap := arr[0].(map[string]any); isMap {
				return Record(m), true, nil
			}
		}
		return nil, false, nil
	}
	for _, key := range []string{ep.ItemKey, "data"} {
		if key == "" {
			continue
		}
		if m, isMap := obj[key].(map[string]any); isMap {
			return Record(m), true, nil
		}
	}
	if _, isEnvelope := obj["success"]; !isEnvelope {
		return Record(obj), true, nil
	}
	// {"success": true, "message": "...", "id": 12}
	ack := Record{}
	for _, key := range []string{ep.IDKey(), "id", "insert_id"} {
		if id := FormatScalar(obj[key]); id != "" {
			ack[ep.IDKey()] = obj[key]
			break
		}
	}
	return ack, false, nil
}

func toRecords(in []any) ([]Record, error) {
	out := make([]Record, 0, len(in))
	for i, it := range in {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T", errUnrecognized, i, it)
		}
		out = append(out, Record(m))
	}
	return out, nil
}
