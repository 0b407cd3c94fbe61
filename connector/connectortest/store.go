package connectortest

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/kbukum/docket/registry"
)

// store is the in-memory state shared by Server and Recorder. Objects are
// kept as decoded JSON keyed by collection path and id.
type store struct {
	reg *registry.Registry

	mu      sync.Mutex
	objects map[string]map[int64]map[string]any
	nextID  map[string]int64
	links   map[string][]int64
	assets  map[string][]string
	actions map[string][]string
}

func newStore(reg *registry.Registry) *store {
	return &store{
		reg:     reg,
		objects: make(map[string]map[int64]map[string]any),
		nextID:  make(map[string]int64),
		links:   make(map[string][]int64),
		assets:  make(map[string][]string),
		actions: make(map[string][]string),
	}
}

func objectKey(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10)
}

// known reports whether collection is a registered collection path.
func (s *store) known(collection string) bool {
	_, ok := s.reg.KindForPath(collection)
	return ok
}

// childCollection resolves the nested segment sub below collection to the
// child's own collection path.
func (s *store) childCollection(collection, sub string) (string, bool) {
	parent, ok := s.reg.KindForPath(collection)
	if !ok {
		return "", false
	}
	for _, kind := range s.reg.Kinds() {
		if s.reg.NestedPathFor(parent, kind) == sub {
			return s.reg.PathFor(kind), true
		}
	}
	return "", false
}

func (s *store) put(collection string, id int64, obj map[string]any) {
	if s.objects[collection] == nil {
		s.objects[collection] = make(map[int64]map[string]any)
	}
	obj = maps.Clone(obj)
	if obj == nil {
		obj = make(map[string]any)
	}
	obj["id"] = id
	s.objects[collection][id] = obj
	if id >= s.nextID[collection] {
		s.nextID[collection] = id
	}
}

func (s *store) seed(collection string, id int64, obj map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, obj)
}

func (s *store) create(collection string, body map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID[collection] + 1
	s.put(collection, id, body)
	return maps.Clone(s.objects[collection][id])
}

func (s *store) update(collection string, id int64, body map[string]any) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[collection][id]
	if !ok {
		return nil, false
	}
	for k, v := range body {
		if k != "id" {
			obj[k] = v
		}
	}
	return maps.Clone(obj), true
}

func (s *store) get(collection string, id int64) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[collection][id]
	if !ok {
		return nil, false
	}
	return maps.Clone(obj), true
}

func (s *store) remove(collection string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[collection][id]; !ok {
		return false
	}
	delete(s.objects[collection], id)
	return true
}

// list returns the objects of collection in id order whose fields equal
// every query value.
func (s *store) list(collection string, query map[string]string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := slices.Sorted(maps.Keys(s.objects[collection]))
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		obj := s.objects[collection][id]
		if matches(obj, query) {
			out = append(out, maps.Clone(obj))
		}
	}
	return out
}

func matches(obj map[string]any, query map[string]string) bool {
	for k, want := range query {
		v, ok := obj[k]
		if !ok || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

func (s *store) link(parent string, parentID int64, sub string, childID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := objectKey(parent, parentID) + "/" + sub
	if !slices.Contains(s.links[key], childID) {
		s.links[key] = append(s.links[key], childID)
	}
}

// linked returns the children linked below parent in link order. Children
// not stored in childCollection are returned as bare ids.
func (s *store) linked(parent string, parentID int64, sub, childCollection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.links[objectKey(parent, parentID)+"/"+sub]
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.childLocked(childCollection, id))
	}
	return out
}

func (s *store) findLinked(parent string, parentID int64, sub, childCollection string, childID int64) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.links[objectKey(parent, parentID)+"/"+sub], childID) {
		return nil, false
	}
	return s.childLocked(childCollection, childID), true
}

func (s *store) childLocked(collection string, id int64) map[string]any {
	if obj, ok := s.objects[collection][id]; ok {
		return maps.Clone(obj)
	}
	return map[string]any{"id": id}
}

func (s *store) linkedIDs(parent string, parentID int64, sub string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.links[objectKey(parent, parentID)+"/"+sub])
}

func (s *store) setAsset(collection string, id int64, name string, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[objectKey(collection, id)+"/"+name] = slices.Clone(values)
}

func (s *store) asset(collection string, id int64, name string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.assets[objectKey(collection, id)+"/"+name]
	return slices.Clone(values), ok
}

func (s *store) act(collection string, id int64, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := objectKey(collection, id)
	s.actions[key] = append(s.actions[key], action)
}

func (s *store) performed(collection string, id int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.actions[objectKey(collection, id)])
}
