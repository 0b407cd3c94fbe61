package registry

import (
	"reflect"
	"strings"
	"testing"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(
		Resource{Kind: "case", Path: "cases", Nested: map[string]string{"note": "comments"}},
		Resource{Kind: "document", Path: "/documents/"},
		Resource{Kind: "note", Path: "notes"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestPathFor(t *testing.T) {
	r := testRegistry(t)
	tests := map[string]string{"case": "cases", "document": "documents", "note": "notes"}
	for kind, want := range tests {
		if got := r.PathFor(kind); got != want {
			t.Errorf("PathFor(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestPathFor_UnregisteredPanics(t *testing.T) {
	r := testRegistry(t)
	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic for unregistered kind")
		}
		if !strings.Contains(rec.(string), "widget") {
			t.Errorf("panic message should name the kind, got %v", rec)
		}
	}()
	r.PathFor("widget")
}

func TestNestedPathFor(t *testing.T) {
	r := testRegistry(t)
	if got := r.NestedPathFor("case", "document"); got != "documents" {
		t.Errorf("default nested path = %q, want documents", got)
	}
	if got := r.NestedPathFor("case", "note"); got != "comments" {
		t.Errorf("overridden nested path = %q, want comments", got)
	}
	if got := r.NestedPathFor("document", "note"); got != "notes" {
		t.Errorf("nested path without override = %q, want notes", got)
	}
}

func TestNestedPathFor_UnregisteredParentPanics(t *testing.T) {
	r := testRegistry(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered parent")
		}
	}()
	r.NestedPathFor("widget", "document")
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name      string
		resources []Resource
		wantErr   string
	}{
		{"empty kind", []Resource{{Path: "cases"}}, "no kind"},
		{"empty path", []Resource{{Kind: "case", Path: "/"}}, "no path"},
		{"duplicate kind", []Resource{{Kind: "case", Path: "cases"}, {Kind: "case", Path: "other"}}, "registered twice"},
		{"duplicate path", []Resource{{Kind: "case", Path: "cases"}, {Kind: "matter", Path: "cases"}}, "claimed by"},
		{"unknown nested", []Resource{{Kind: "case", Path: "cases", Nested: map[string]string{"x": "xs"}}}, "unregistered kind"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.resources...)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustNew(Resource{Kind: "case"})
}

func TestLookupAndReverse(t *testing.T) {
	r := testRegistry(t)
	if p, ok := r.Lookup("case"); !ok || p != "cases" {
		t.Errorf("Lookup(case) = %q, %v", p, ok)
	}
	if _, ok := r.Lookup("widget"); ok {
		t.Error("Lookup(widget) should report false")
	}
	if k, ok := r.KindForPath("/documents"); !ok || k != "document" {
		t.Errorf("KindForPath(/documents) = %q, %v", k, ok)
	}
	if _, ok := r.KindForPath("widgets"); ok {
		t.Error("KindForPath(widgets) should report false")
	}
}

func TestKinds_Sorted(t *testing.T) {
	r := testRegistry(t)
	want := []string{"case", "document", "note"}
	if got := r.Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
}
