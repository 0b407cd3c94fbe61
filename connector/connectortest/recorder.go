package connectortest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/kbukum/docket/connector"
	"github.com/kbukum/docket/entity"
	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/registry"
)

var _ connector.API = (*Recorder)(nil)

// Call is one operation received by a Recorder.
type Call struct {
	Op    string
	Kind  string
	ID    int64
	Arg   string
	Query map[string]string
}

// Recorder is an in-memory connector.API. It shares the Server's store
// semantics without HTTP, for tests of code that consumes the connector.
type Recorder struct {
	store *store

	mu    sync.Mutex
	calls []Call
	errs  []error
}

// NewRecorder creates an empty Recorder over reg.
func NewRecorder(reg *registry.Registry) *Recorder {
	return &Recorder{store: newStore(reg)}
}

// Factory returns a connector.Factory that always yields r.
func (r *Recorder) Factory() connector.Factory {
	return func(connector.Config) (connector.API, error) { return r, nil }
}

// Seed stores obj under the collection of kind.
func (r *Recorder) Seed(kind string, id int64, obj map[string]any) {
	r.store.seed(r.store.reg.PathFor(kind), id, obj)
}

// SetAsset serves values as the named asset of an entity.
func (r *Recorder) SetAsset(e entity.Entity, name string, values ...string) {
	r.store.setAsset(r.store.reg.PathFor(e.Kind()), e.EntityID(), name, values)
}

// FailNext makes the next call return err. Calls queue up.
func (r *Recorder) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// Calls returns the received calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Actions returns the actions performed on e.
func (r *Recorder) Actions(e entity.Entity) []string {
	return r.store.performed(r.store.reg.PathFor(e.Kind()), e.EntityID())
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}
	return nil
}

func notFound(method, path string) error {
	return apperrors.UnexpectedStatus(method, path, http.StatusNotFound, nil)
}

// persisted rejects entities that have no server-side identity yet, the way
// connector.Client does before sending anything.
func persisted(e entity.Entity) error {
	if entity.IsNew(e) {
		return apperrors.InvalidInput("id", e.Kind()+" has not been created yet")
	}
	return nil
}

func hydrate(e entity.Entity, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return apperrors.Internal(err)
	}
	return entity.Hydrate(e, data)
}

// Registry implements connector.API.
func (r *Recorder) Registry() *registry.Registry { return r.store.reg }

// WriteObject implements connector.API.
func (r *Recorder) WriteObject(_ context.Context, e entity.Entity) (bool, error) {
	body, ok := entity.Encode(e)
	if !ok {
		return false, nil
	}
	if err := r.record(Call{Op: "write", Kind: e.Kind(), ID: e.EntityID()}); err != nil {
		return false, err
	}
	// Round-trip through JSON so stored values look like a server's.
	data, err := json.Marshal(body)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return false, apperrors.Internal(err)
	}

	collection := r.store.reg.PathFor(e.Kind())
	if entity.IsNew(e) {
		created := r.store.create(collection, obj)
		return true, hydrate(e, created)
	}
	if _, ok := r.store.update(collection, e.EntityID(), obj); !ok {
		return false, notFound(http.MethodPut, objectKey(collection, e.EntityID()))
	}
	return true, nil
}

// DeleteObject implements connector.API.
func (r *Recorder) DeleteObject(_ context.Context, e entity.Entity) error {
	if err := persisted(e); err != nil {
		return err
	}
	if err := r.record(Call{Op: "delete", Kind: e.Kind(), ID: e.EntityID()}); err != nil {
		return err
	}
	collection := r.store.reg.PathFor(e.Kind())
	if !r.store.remove(collection, e.EntityID()) {
		return notFound(http.MethodDelete, objectKey(collection, e.EntityID()))
	}
	return nil
}

// ReadObject implements connector.API.
func (r *Recorder) ReadObject(_ context.Context, e entity.Entity) error {
	if err := persisted(e); err != nil {
		return err
	}
	if err := r.record(Call{Op: "read", Kind: e.Kind(), ID: e.EntityID()}); err != nil {
		return err
	}
	collection := r.store.reg.PathFor(e.Kind())
	obj, ok := r.store.get(collection, e.EntityID())
	if !ok {
		return notFound(http.MethodGet, objectKey(collection, e.EntityID()))
	}
	return hydrate(e, obj)
}

// LinkEntity implements connector.API.
func (r *Recorder) LinkEntity(_ context.Context, parent, child entity.Entity) error {
	if err := persisted(parent); err != nil {
		return err
	}
	if err := persisted(child); err != nil {
		return err
	}
	childID := strconv.FormatInt(child.EntityID(), 10)
	if err := r.record(Call{Op: "link", Kind: parent.Kind(), ID: parent.EntityID(), Arg: child.Kind() + "/" + childID}); err != nil {
		return err
	}
	collection := r.store.reg.PathFor(parent.Kind())
	sub := r.store.reg.NestedPathFor(parent.Kind(), child.Kind())
	_, known := r.store.childCollection(collection, sub)
	if _, ok := r.store.get(collection, parent.EntityID()); !ok || !known {
		return notFound(connector.VerbLink, objectKey(collection, parent.EntityID())+"/"+sub+"/"+childID)
	}
	r.store.link(collection, parent.EntityID(), sub, child.EntityID())
	return nil
}

// PerformAction implements connector.API.
func (r *Recorder) PerformAction(_ context.Context, e entity.Entity, action string) error {
	if action == "" {
		return apperrors.InvalidInput("action", "action name is required")
	}
	if err := persisted(e); err != nil {
		return err
	}
	if err := r.record(Call{Op: "action", Kind: e.Kind(), ID: e.EntityID(), Arg: action}); err != nil {
		return err
	}
	collection := r.store.reg.PathFor(e.Kind())
	if _, ok := r.store.get(collection, e.EntityID()); !ok {
		return notFound(connector.VerbAction, objectKey(collection, e.EntityID())+"/"+action)
	}
	r.store.act(collection, e.EntityID(), action)
	return nil
}

// GetFileAssets implements connector.API.
func (r *Recorder) GetFileAssets(_ context.Context, e entity.Entity, asset string) ([]byte, error) {
	encoded, err := r.asset(e, asset)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.MalformedBody("asset "+asset+" is not valid base64", err)
	}
	return data, nil
}

// GetTextAssets implements connector.API.
func (r *Recorder) GetTextAssets(_ context.Context, e entity.Entity, asset string) (string, error) {
	return r.asset(e, asset)
}

func (r *Recorder) asset(e entity.Entity, name string) (string, error) {
	if name == "" {
		return "", apperrors.InvalidInput("asset", "asset name is required")
	}
	if err := persisted(e); err != nil {
		return "", err
	}
	if err := r.record(Call{Op: "asset", Kind: e.Kind(), ID: e.EntityID(), Arg: name}); err != nil {
		return "", err
	}
	collection := r.store.reg.PathFor(e.Kind())
	_, exists := r.store.get(collection, e.EntityID())
	values, ok := r.store.asset(collection, e.EntityID(), name)
	if !exists || !ok {
		return "", notFound(http.MethodGet, objectKey(collection, e.EntityID())+"/"+name)
	}
	if len(values) == 0 {
		return "", apperrors.MalformedBody("asset "+name+" is empty", nil)
	}
	return values[0], nil
}

// Get implements connector.API. It serves collections, single objects and
// linked collections from the store.
func (r *Recorder) Get(_ context.Context, path string, query map[string]string) ([]byte, error) {
	lowered := make(map[string]string, len(query))
	for k, v := range query {
		name := entity.LowerFirst(k)
		if _, dup := lowered[name]; dup {
			return nil, apperrors.InvalidInput("query", "parameter "+name+" given more than once")
		}
		lowered[name] = v
	}
	if err := r.record(Call{Op: "find", Arg: path, Query: query}); err != nil {
		return nil, err
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if !r.store.known(parts[0]) {
		return nil, notFound(http.MethodGet, path)
	}
	var id, subID int64
	var err error
	if len(parts) > 1 {
		if id, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
			return nil, notFound(http.MethodGet, path)
		}
	}
	if len(parts) > 3 {
		if subID, err = strconv.ParseInt(parts[3], 10, 64); err != nil {
			return nil, notFound(http.MethodGet, path)
		}
	}

	var result any
	switch len(parts) {
	case 1:
		result = r.store.list(parts[0], lowered)
	case 2:
		obj, ok := r.store.get(parts[0], id)
		if !ok {
			return nil, notFound(http.MethodGet, path)
		}
		result = obj
	case 3, 4:
		child, ok := r.store.childCollection(parts[0], parts[2])
		if !ok {
			return nil, notFound(http.MethodGet, path)
		}
		if len(parts) == 3 {
			result = r.store.linked(parts[0], id, parts[2], child)
			break
		}
		obj, ok := r.store.findLinked(parts[0], id, parts[2], child, subID)
		if !ok {
			return nil, notFound(http.MethodGet, path)
		}
		result = obj
	default:
		return nil, notFound(http.MethodGet, path)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return data, nil
}
