// Package registry maps entity kinds to the REST collection paths that serve
// them. A Registry is built once from a fixed table and is read-only after.
package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Resource describes one entity kind on the remote API.
type Resource struct {
	// Kind is the logical type name, e.g. "case".
	Kind string
	// Path is the collection path, e.g. "cases".
	Path string
	// Nested overrides the path used for a child kind under this resource.
	// Children not listed use their own collection path.
	Nested map[string]string
}

// Registry is an immutable kind → path table. Safe for concurrent use.
type Registry struct {
	paths  map[string]string
	nested map[string]map[string]string
}

// New builds a registry. Empty, duplicate kinds and duplicate paths are rejected.
func New(resources ...Resource) (*Registry, error) {
	r := &Registry{
		paths:  make(map[string]string, len(resources)),
		nested: make(map[string]map[string]string),
	}
	owners := make(map[string]string, len(resources))

	for _, res := range resources {
		if res.Kind == "" {
			return nil, fmt.Errorf("registry: resource with path %q has no kind", res.Path)
		}
		path := strings.Trim(res.Path, "/")
		if path == "" {
			return nil, fmt.Errorf("registry: kind %q has no path", res.Kind)
		}
		if _, dup := r.paths[res.Kind]; dup {
			return nil, fmt.Errorf("registry: kind %q registered twice", res.Kind)
		}
		if other, dup := owners[path]; dup {
			return nil, fmt.Errorf("registry: path %q claimed by %q and %q", path, other, res.Kind)
		}
		r.paths[res.Kind] = path
		owners[path] = res.Kind

		if len(res.Nested) > 0 {
			children := make(map[string]string, len(res.Nested))
			for child, p := range res.Nested {
				children[child] = strings.Trim(p, "/")
			}
			r.nested[res.Kind] = children
		}
	}

	for parent, children := range r.nested {
		for child := range children {
			if _, ok := r.paths[child]; !ok {
				return nil, fmt.Errorf("registry: %q nests unregistered kind %q", parent, child)
			}
		}
	}
	return r, nil
}

// MustNew is New for static tables; it panics on error.
func MustNew(resources ...Resource) *Registry {
	r, err := New(resources...)
	if err != nil {
		panic(err)
	}
	return r
}

// PathFor returns the collection path of kind. Asking for an unregistered kind
// is a programming error and panics.
func (r *Registry) PathFor(kind string) string {
	path, ok := r.paths[kind]
	if !ok {
		panic(fmt.Sprintf("registry: unregistered kind %q", kind))
	}
	return path
}

// NestedPathFor returns the path segment of child kind below a parent resource.
// Both kinds must be registered.
func (r *Registry) NestedPathFor(parent, child string) string {
	r.PathFor(parent)
	if p, ok := r.nested[parent][child]; ok {
		return p
	}
	return r.PathFor(child)
}

// Lookup reports the path of kind without panicking.
func (r *Registry) Lookup(kind string) (string, bool) {
	path, ok := r.paths[kind]
	return path, ok
}

// KindForPath is the reverse of PathFor.
func (r *Registry) KindForPath(path string) (string, bool) {
	path = strings.Trim(path, "/")
	for kind, p := range r.paths {
		if p == path {
			return kind, true
		}
	}
	return "", false
}

// Kinds returns all registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.paths))
	for k := range r.paths {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
