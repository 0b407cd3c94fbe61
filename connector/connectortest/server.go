package connectortest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/docket/connector"
	"github.com/kbukum/docket/registry"
	"github.com/kbukum/docket/wsse"
)

// Credentials accepted by a Server unless overridden.
const (
	Key    = "test-key"
	Secret = "test-secret"
	User   = "tester"

	// BasePath is the API prefix served by Server.
	BasePath = "/api/v1"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Request is one exchange observed by a Server.
type Request struct {
	// Method is the verb exactly as sent, before any normalisation.
	Method string
	// Path is relative to BasePath.
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	body   string
}

// Server is an in-process fake of the remote API. It verifies WSSE
// signatures, keeps collections in memory and records every request.
type Server struct {
	store    *store
	verifier *wsse.Verifier
	engine   *gin.Engine
	ts       *httptest.Server
	key      string
	secret   string

	mu       sync.Mutex
	requests []Request
	failures []failure
}

// Option customizes a Server.
type Option func(*Server)

// WithCredentials replaces the accepted key and secret.
func WithCredentials(key, secret string) Option {
	return func(s *Server) { s.key, s.secret = key, secret }
}

// NewServer starts a fake API for the collections of reg. It is closed when
// the test ends.
func NewServer(t testing.TB, reg *registry.Registry, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		store:  newStore(reg),
		key:    Key,
		secret: Secret,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.verifier = wsse.NewVerifier(wsse.StaticSecrets(map[string]string{s.key: s.secret}))

	s.engine = gin.New()
	api := s.engine.Group(BasePath, s.authenticate, s.injectFailure)
	api.GET("/:collection", s.handleList)
	api.POST("/:collection", s.handleCreate)
	api.GET("/:collection/:id", s.handleRead)
	api.PUT("/:collection/:id", s.handleUpdate)
	api.DELETE("/:collection/:id", s.handleDelete)
	api.GET("/:collection/:id/:sub", s.handleSub)
	api.PATCH("/:collection/:id/:sub", s.handleAction)
	api.GET("/:collection/:id/:sub/:subid", s.handleFindLinked)
	api.Handle(connector.VerbLink, "/:collection/:id/:sub/:subid", s.handleLink)

	s.ts = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.ts.Close)
	return s
}

// URL is the API base URL, including BasePath.
func (s *Server) URL() string {
	return s.ts.URL + BasePath
}

// Client returns the server's HTTP client.
func (s *Server) Client() *http.Client {
	return s.ts.Client()
}

// Config returns a connector configuration pointing at the server.
func (s *Server) Config() connector.Config {
	return connector.Config{
		Endpoint:  s.URL(),
		Vendor:    connector.DefaultVendor,
		APIKey:    s.key,
		APISecret: s.secret,
		APIUser:   User,
	}
}

// Seed stores obj under collection with the given id.
func (s *Server) Seed(collection string, id int64, obj map[string]any) {
	s.store.seed(collection, id, obj)
}

// Object returns the stored object.
func (s *Server) Object(collection string, id int64) (map[string]any, bool) {
	return s.store.get(collection, id)
}

// Objects returns the stored objects of collection in id order.
func (s *Server) Objects(collection string) []map[string]any {
	return s.store.list(collection, nil)
}

// SetAsset serves values as the named text asset of an object.
func (s *Server) SetAsset(collection string, id int64, name string, values ...string) {
	s.store.setAsset(collection, id, name, values)
}

// SetFileAsset serves data base64 encoded as the named asset of an object.
func (s *Server) SetFileAsset(collection string, id int64, name string, data []byte) {
	s.store.setAsset(collection, id, name, []string{base64.StdEncoding.EncodeToString(data)})
}

// Link attaches childID below an object under the nested segment sub.
func (s *Server) Link(collection string, id int64, sub string, childID int64) {
	s.store.link(collection, id, sub, childID)
}

// Links returns the child ids linked below an object.
func (s *Server) Links(collection string, id int64, sub string) []int64 {
	return s.store.linkedIDs(collection, id, sub)
}

// Actions returns the actions performed on an object, in order.
func (s *Server) Actions(collection string, id int64) []string {
	return s.store.performed(collection, id)
}

// FailNext makes the next authenticated request answer with status and body.
// Calls queue up.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, body: body})
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// serveHTTP records the raw request, then normalises the verb for routing:
// the API accepts lowercase verbs such as "patch".
func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   strings.TrimPrefix(r.URL.Path, BasePath),
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	r.Method = strings.ToUpper(r.Method)
	s.engine.ServeHTTP(w, r)
}

func (s *Server) authenticate(c *gin.Context) {
	if _, err := s.verifier.VerifyRequest(c.Request); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func (s *Server) injectFailure(c *gin.Context) {
	s.mu.Lock()
	var f *failure
	if len(s.failures) > 0 {
		f = &s.failures[0]
		s.failures = s.failures[1:]
	}
	s.mu.Unlock()

	if f != nil {
		c.Data(f.status, "application/json", []byte(f.body))
		c.Abort()
		return
	}
	c.Next()
}

// object resolves :collection and :id, answering 404 when either is unknown.
func (s *Server) object(c *gin.Context) (string, int64, bool) {
	collection := c.Param("collection")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || !s.store.known(collection) {
		c.Status(http.StatusNotFound)
		return "", 0, false
	}
	if _, ok := s.store.get(collection, id); !ok {
		c.Status(http.StatusNotFound)
		return "", 0, false
	}
	return collection, id, true
}

func (s *Server) handleList(c *gin.Context) {
	collection := c.Param("collection")
	if !s.store.known(collection) {
		c.Status(http.StatusNotFound)
		return
	}
	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		query[k] = v[0]
	}
	c.JSON(http.StatusOK, s.store.list(collection, query))
}

func (s *Server) handleCreate(c *gin.Context) {
	collection := c.Param("collection")
	if !s.store.known(collection) {
		c.Status(http.StatusNotFound)
		return
	}
	body, ok := bindObject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, s.store.create(collection, body))
}

func (s *Server) handleRead(c *gin.Context) {
	collection, id, ok := s.object(c)
	if !ok {
		return
	}
	obj, _ := s.store.get(collection, id)
	c.JSON(http.StatusOK, obj)
}

func (s *Server) handleUpdate(c *gin.Context) {
	collection, id, ok := s.object(c)
	if !ok {
		return
	}
	body, ok := bindObject(c)
	if !ok {
		return
	}
	obj, _ := s.store.update(collection, id, body)
	c.JSON(http.StatusOK, obj)
}

func (s *Server) handleDelete(c *gin.Context) {
	collection, id, ok := s.object(c)
	if !ok {
		return
	}
	s.store.remove(collection, id)
	c.Status(http.StatusNoContent)
}

// handleSub serves a linked collection when :sub names one, otherwise an asset.
func (s *Server) handleSub(c *gin.Context) {
	collection, id, ok := s.object(c)
	if !ok {
		return
	}
	sub := c.Param("sub")
	if child, ok := s.store.childCollection(collection, sub); ok {
		c.JSON(http.StatusOK, s.store.linked(collection, id, sub, child))
		return
	}
	values, ok := s.store.asset(collection, id, sub)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, values)
}

func (s *Server) handleAction(c *gin.Context) {
	collection, id, ok := s.object(c)
	if !ok {
		return
	}
	s.store.act(collection, id, c.Param("sub"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFindLinked(c *gin.Context) {
	collection, id, ok := s.object(c)
	if !ok {
		return
	}
	sub := c.Param("sub")
	child, ok := s.store.childCollection(collection, sub)
	subID, err := strconv.ParseInt(c.Param("subid"), 10, 64)
	if !ok || err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	obj, ok := s.store.findLinked(collection, id, sub, child, subID)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, obj)
}

func (s *Server) handleLink(c *gin.Context) {
	collection, id, ok := s.object(c)
	if !ok {
		return
	}
	sub := c.Param("sub")
	subID, err := strconv.ParseInt(c.Param("subid"), 10, 64)
	if _, ok := s.store.childCollection(collection, sub); !ok || err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	s.store.link(collection, id, sub, subID)
	c.Status(http.StatusNoContent)
}

func bindObject(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	data, err := io.ReadAll(c.Request.Body)
	if err == nil {
		err = json.Unmarshal(data, &body)
	}
	if err != nil || body == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "expected a JSON object"})
		return nil, false
	}
	return body, true
}
