package entity

import (
	"encoding/json"
	"unicode"
	"unicode/utf8"
)

// Entity is a record served by a REST collection.
type Entity interface {
	// Kind is the registry key of the entity type, e.g. "case".
	Kind() string
	// EntityID is the server-assigned identifier, 0 until created.
	EntityID() int64
	// Fields binds the instance's fields. It is called on every encode and
	// hydrate, so the bindings always point at the receiver.
	Fields() Fields
}

// IsNew reports whether e has not been created on the server yet.
func IsNew(e Entity) bool {
	return e.EntityID() == 0
}

// Field binds one wire name to a value on an entity instance.
type Field struct {
	Name     string
	Sendable bool

	get func() any
	set func(json.RawMessage) error
}

// Fields is the ordered field table of an entity.
type Fields []Field

// Sendable binds a field that is part of create and update bodies.
func Sendable[V any](name string, ptr *V) Field {
	return bind(name, true, ptr)
}

// ReadOnly binds a field that is only ever filled from responses.
func ReadOnly[V any](name string, ptr *V) Field {
	return bind(name, false, ptr)
}

func bind[V any](name string, sendable bool, ptr *V) Field {
	return Field{
		Name:     name,
		Sendable: sendable,
		get:      func() any { return *ptr },
		set:      func(raw json.RawMessage) error { return json.Unmarshal(raw, ptr) },
	}
}

// Value returns the current value of the bound field.
func (f Field) Value() any {
	return f.get()
}

// Set decodes raw JSON into the bound field.
func (f Field) Set(raw json.RawMessage) error {
	return f.set(raw)
}

// Sendable returns only the sendable fields.
func (fs Fields) Sendable() Fields {
	out := make(Fields, 0, len(fs))
	for _, f := range fs {
		if f.Sendable {
			out = append(out, f)
		}
	}
	return out
}

// Lookup finds a field by wire name using first-letter case adaptation.
func (fs Fields) Lookup(name string) (Field, bool) {
	key := LowerFirst(name)
	for _, f := range fs {
		if LowerFirst(f.Name) == key {
			return f, true
		}
	}
	return Field{}, false
}

// LowerFirst lowers the first letter of s and leaves the rest untouched,
// so "CaseId" becomes "caseId".
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
