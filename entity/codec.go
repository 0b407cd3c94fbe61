package entity

import (
	"bytes"
	"encoding/json"

	apperrors "github.com/kbukum/docket/errors"
)

// Encode returns the request body for e: its sendable fields by wire name.
// ok is false when e declares no sendable fields; callers skip the write.
func Encode(e Entity) (body map[string]any, ok bool) {
	sendable := e.Fields().Sendable()
	if len(sendable) == 0 {
		return nil, false
	}
	body = make(map[string]any, len(sendable))
	for _, f := range sendable {
		body[f.Name] = f.Value()
	}
	return body, true
}

// Hydrate assigns every recognized key of the JSON object data onto e.
// Malformed JSON is a MALFORMED_BODY error; a value that does not fit its
// field is a HYDRATION_ERROR.
func Hydrate(e Entity, data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return apperrors.MalformedBody("expected a JSON object for "+e.Kind(), err)
	}
	if obj == nil {
		return apperrors.MalformedBody("expected a JSON object for "+e.Kind()+", got null", nil)
	}
	return HydrateObject(e, obj)
}

// HydrateObject is Hydrate over an already split object. When two keys
// differ only in the case of their first letter, the key already in wire
// form ("title" over "Title") is the one applied.
func HydrateObject(e Entity, obj map[string]json.RawMessage) error {
	chosen := make(map[string]string, len(obj))
	for key := range obj {
		name := LowerFirst(key)
		prev, seen := chosen[name]
		if !seen || key == name || (prev != name && key < prev) {
			chosen[name] = key
		}
	}

	for _, f := range e.Fields() {
		key, ok := chosen[LowerFirst(f.Name)]
		if !ok {
			continue
		}
		if err := f.Set(obj[key]); err != nil {
			return apperrors.Hydration(e.Kind(), f.Name, err)
		}
	}
	return nil
}

// Decode builds a new T from a JSON object.
func Decode[T any, PT interface {
	*T
	Entity
}](data []byte) (*T, error) {
	v := new(T)
	if err := Hydrate(PT(v), data); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeList builds one T per element of a JSON array, in array order.
// An empty body yields an empty slice.
func DecodeList[T any, PT interface {
	*T
	Entity
}](data []byte) ([]*T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*T{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, apperrors.MalformedBody("expected a JSON array", err)
	}
	out := make([]*T, 0, len(items))
	for _, item := range items {
		v := new(T)
		if err := Hydrate(PT(v), item); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
