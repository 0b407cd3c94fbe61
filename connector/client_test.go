package connector_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"

	"github.com/kbukum/docket/connector"
	"github.com/kbukum/docket/connector/connectortest"
	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/logger"
	"github.com/kbukum/docket/model"
	"github.com/kbukum/docket/observability"
	"github.com/kbukum/docket/wsse"
)

func newClient(t *testing.T, srv *connectortest.Server, opts ...connector.Option) *connector.Client {
	t.Helper()
	opts = append([]connector.Option{connector.WithLogger(logger.Nop())}, opts...)
	client, err := connector.New(srv.Config(), model.Registry(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client
}

func lastRequest(t *testing.T, srv *connectortest.Server) connectortest.Request {
	t.Helper()
	req, ok := srv.LastRequest()
	if !ok {
		t.Fatal("no request reached the server")
	}
	return req
}

func TestNew_Configuration(t *testing.T) {
	tests := []struct {
		name string
		cfg  connector.Config
	}{
		{"missing key", connector.Config{APISecret: "s"}},
		{"missing secret", connector.Config{APIKey: "k"}},
		{"bad endpoint", connector.Config{APIKey: "k", APISecret: "s", Endpoint: "not a url"}},
		{"bad vendor", connector.Config{APIKey: "k", APISecret: "s", Vendor: "two words"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := connector.New(tt.cfg, model.Registry())
			if !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
				t.Errorf("err = %v, want CONFIGURATION_ERROR", err)
			}
		})
	}

	if _, err := connector.New(connector.Config{APIKey: "k", APISecret: "s"}, nil); !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Errorf("nil registry err = %v", err)
	}
}

func TestNew_CopiesConfig(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	cfg := srv.Config()
	cfg.Headers = map[string]string{"X-Tenant": "a"}
	client, err := connector.New(cfg, model.Registry(), connector.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg.Headers["X-Tenant"] = "b"
	cfg.APIKey = "changed"

	if err := client.ReadObject(context.Background(), &model.Case{ID: 1}); apperrors.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("ReadObject err = %v, want 404", err)
	}
	req := lastRequest(t, srv)
	if got := req.Header.Get("X-Tenant"); got != "a" {
		t.Errorf("X-Tenant = %q, want a", got)
	}
	if client.Config().APIKey != connectortest.Key {
		t.Errorf("client key changed after New")
	}
}

func TestReadObject(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 42, map[string]any{"title": "T", "Status": "open"})
	client := newClient(t, srv)

	c := &model.Case{ID: 42}
	if err := client.ReadObject(context.Background(), c); err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if c.ID != 42 || c.Title != "T" || c.Status != "open" {
		t.Errorf("hydrated = %+v", c)
	}

	req := lastRequest(t, srv)
	if req.Method != http.MethodGet || req.Path != "/cases/42" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if !strings.HasPrefix(req.Header.Get(wsse.HeaderName), `UsernameToken Username="test-key"`) {
		t.Errorf("X-WSSE = %q", req.Header.Get(wsse.HeaderName))
	}
	if got := req.Header.Get("Authorization"); got != wsse.AuthorizationValue {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("docket-api-user"); got != connectortest.User {
		t.Errorf("api user header = %q", got)
	}
	if req.Header.Get(connector.RequestIDHeader) == "" {
		t.Error("missing request id")
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
}

func TestReadObject_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   apperrors.ErrorCode
	}{
		{"no content is not a read", http.StatusNoContent, "", apperrors.ErrCodeUnexpectedStatus},
		{"created is not a read", http.StatusCreated, `{}`, apperrors.ErrCodeUnexpectedStatus},
		{"not found", http.StatusNotFound, `{}`, apperrors.ErrCodeNotFound},
		{"unauthorized", http.StatusUnauthorized, `{}`, apperrors.ErrCodeUnauthorized},
		{"server error", http.StatusBadGateway, `{}`, apperrors.ErrCodeExternalService},
		{"malformed body", http.StatusOK, `not json`, apperrors.ErrCodeMalformedBody},
		{"type mismatch", http.StatusOK, `{"title":5}`, apperrors.ErrCodeHydration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := connectortest.NewServer(t, model.Registry())
			srv.Seed("cases", 1, nil)
			client := newClient(t, srv)

			srv.FailNext(tt.status, tt.body)
			err := client.ReadObject(context.Background(), &model.Case{ID: 1})
			if !apperrors.IsCode(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if tt.code != apperrors.ErrCodeMalformedBody && tt.code != apperrors.ErrCodeHydration {
				if got := apperrors.StatusOf(err); got != tt.status {
					t.Errorf("StatusOf = %d, want %d", got, tt.status)
				}
			}
		})
	}
}

func TestWriteObject_Create(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	client := newClient(t, srv)

	c := &model.Case{Title: "Intake", Status: "open", CreatedAt: "ignored"}
	written, err := client.WriteObject(context.Background(), c)
	if err != nil || !written {
		t.Fatalf("WriteObject = %v, %v", written, err)
	}
	if c.ID != 1 {
		t.Errorf("created id = %d, want 1", c.ID)
	}

	req := lastRequest(t, srv)
	if req.Method != http.MethodPost || req.Path != "/cases" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if bytes.Contains(req.Body, []byte("createdAt")) || bytes.Contains(req.Body, []byte(`"id"`)) {
		t.Errorf("read-only fields sent: %s", req.Body)
	}
	if obj, _ := srv.Object("cases", 1); obj["title"] != "Intake" {
		t.Errorf("stored = %v", obj)
	}
}

func TestWriteObject_CreateEmptyBody(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	client := newClient(t, srv)

	srv.FailNext(http.StatusNoContent, "")
	c := &model.Case{Title: "x"}
	written, err := client.WriteObject(context.Background(), c)
	if err != nil || !written {
		t.Fatalf("WriteObject = %v, %v", written, err)
	}
	if c.ID != 0 {
		t.Errorf("id = %d, want untouched", c.ID)
	}
}

func TestWriteObject_Update(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 5, map[string]any{"title": "old", "status": "open"})
	client := newClient(t, srv)

	written, err := client.WriteObject(context.Background(), &model.Case{ID: 5, Title: "new", Status: "open"})
	if err != nil || !written {
		t.Fatalf("WriteObject = %v, %v", written, err)
	}
	req := lastRequest(t, srv)
	if req.Method != http.MethodPut || req.Path != "/cases/5" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if obj, _ := srv.Object("cases", 5); obj["title"] != "new" {
		t.Errorf("stored = %v", obj)
	}
}

func TestWriteObject_NothingToSend(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	client := newClient(t, srv)

	written, err := client.WriteObject(context.Background(), &model.Party{ID: 3, Name: "Acme"})
	if err != nil || written {
		t.Fatalf("WriteObject = %v, %v, want false, nil", written, err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("%d requests sent, want none", n)
	}
}

func TestDeleteObject(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"no content", http.StatusNoContent, false},
		{"ok", http.StatusOK, false},
		{"created", http.StatusCreated, true},
		{"not found", http.StatusNotFound, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := connectortest.NewServer(t, model.Registry())
			srv.Seed("cases", 9, nil)
			client := newClient(t, srv)

			srv.FailNext(tt.status, "")
			err := client.DeleteObject(context.Background(), &model.Case{ID: 9})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && apperrors.StatusOf(err) != tt.status {
				t.Errorf("StatusOf = %d", apperrors.StatusOf(err))
			}
			if req := lastRequest(t, srv); req.Method != http.MethodDelete || req.Path != "/cases/9" {
				t.Errorf("request = %s %s", req.Method, req.Path)
			}
		})
	}
}

func TestNewEntityWithoutPath(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	client := newClient(t, srv)
	ctx := context.Background()

	errs := []error{
		client.ReadObject(ctx, &model.Case{}),
		client.DeleteObject(ctx, &model.Case{}),
		client.PerformAction(ctx, &model.Case{}, "close"),
		client.LinkEntity(ctx, &model.Case{ID: 1}, &model.Document{}),
	}
	for i, err := range errs {
		if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
			t.Errorf("call %d err = %v, want INVALID_INPUT", i, err)
		}
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("%d requests sent, want none", n)
	}
}

func TestLinkEntity(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 42, nil)
	client := newClient(t, srv)

	if err := client.LinkEntity(context.Background(), &model.Case{ID: 42}, &model.Document{ID: 7}); err != nil {
		t.Fatalf("LinkEntity: %v", err)
	}
	req := lastRequest(t, srv)
	if req.Method != "LINK" || req.Path != "/cases/42/documents/7" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if got := srv.Links("cases", 42, "documents"); len(got) != 1 || got[0] != 7 {
		t.Errorf("links = %v", got)
	}
}

func TestLinkEntity_NestedPath(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("parties", 3, nil)
	client := newClient(t, srv)

	if err := client.LinkEntity(context.Background(), &model.Party{ID: 3}, &model.Case{ID: 42}); err != nil {
		t.Fatalf("LinkEntity: %v", err)
	}
	if req := lastRequest(t, srv); req.Path != "/parties/3/matters/42" {
		t.Errorf("path = %s", req.Path)
	}
}

func TestPerformAction(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 42, nil)
	client := newClient(t, srv)

	if err := client.PerformAction(context.Background(), &model.Case{ID: 42}, "close"); err != nil {
		t.Fatalf("PerformAction: %v", err)
	}
	req := lastRequest(t, srv)
	if req.Method != "patch" || req.Path != "/cases/42/close" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if got := srv.Actions("cases", 42); len(got) != 1 || got[0] != "close" {
		t.Errorf("actions = %v", got)
	}

	if err := client.PerformAction(context.Background(), &model.Case{ID: 42}, ""); !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("empty action err = %v", err)
	}
}

func TestAssets(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("documents", 7, nil)
	srv.SetFileAsset("documents", 7, "pdf", []byte("%PDF-1.7"))
	srv.SetAsset("documents", 7, "text", "hello", "ignored")
	srv.SetAsset("documents", 7, "empty")
	srv.SetAsset("documents", 7, "broken", "***")
	client := newClient(t, srv)
	ctx := context.Background()
	doc := &model.Document{ID: 7}

	data, err := client.GetFileAssets(ctx, doc, "pdf")
	if err != nil || string(data) != "%PDF-1.7" {
		t.Errorf("GetFileAssets = %q, %v", data, err)
	}
	if req := lastRequest(t, srv); req.Path != "/documents/7/pdf" {
		t.Errorf("path = %s", req.Path)
	}

	text, err := client.GetTextAssets(ctx, doc, "text")
	if err != nil || text != "hello" {
		t.Errorf("GetTextAssets = %q, %v", text, err)
	}

	if _, err := client.GetTextAssets(ctx, doc, "empty"); !apperrors.IsCode(err, apperrors.ErrCodeMalformedBody) {
		t.Errorf("empty asset err = %v", err)
	}
	if _, err := client.GetFileAssets(ctx, doc, "broken"); !apperrors.IsCode(err, apperrors.ErrCodeMalformedBody) {
		t.Errorf("broken asset err = %v", err)
	}
	if _, err := client.GetTextAssets(ctx, doc, "missing"); !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("missing asset err = %v", err)
	}
}

func TestFindBy(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 1, map[string]any{"title": "a", "status": "open"})
	srv.Seed("cases", 2, map[string]any{"title": "b", "status": "closed"})
	srv.Seed("cases", 3, map[string]any{"title": "c", "status": "open"})
	client := newClient(t, srv)
	ctx := context.Background()

	all, err := connector.FindBy[model.Case](ctx, client, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("FindBy(nil) = %d, %v", len(all), err)
	}
	req := lastRequest(t, srv)
	if req.Path != "/cases" || len(req.Query) != 0 {
		t.Errorf("request = %s ?%v", req.Path, req.Query)
	}

	open, err := connector.FindBy[model.Case](ctx, client, map[string]string{"Status": "open"})
	if err != nil {
		t.Fatalf("FindBy: %v", err)
	}
	if len(open) != 2 || open[0].ID != 1 || open[1].ID != 3 {
		t.Errorf("FindBy(open) = %+v", open)
	}
	req = lastRequest(t, srv)
	if got := req.Query.Get("status"); got != "open" {
		t.Errorf("query = %v, want lowered key", req.Query)
	}
	if _, ok := req.Query["Status"]; ok {
		t.Errorf("original key sent: %v", req.Query)
	}
}

func TestLinkedEntities(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 42, nil)
	srv.Seed("documents", 7, map[string]any{"name": "a.pdf"})
	srv.Seed("documents", 8, map[string]any{"name": "b.pdf"})
	srv.Link("cases", 42, "documents", 8)
	srv.Link("cases", 42, "documents", 7)
	client := newClient(t, srv)
	ctx := context.Background()
	parent := &model.Case{ID: 42}

	docs, err := connector.GetLinkedEntities[model.Document](ctx, client, parent)
	if err != nil {
		t.Fatalf("GetLinkedEntities: %v", err)
	}
	if len(docs) != 2 || docs[0].Name != "b.pdf" || docs[1].Name != "a.pdf" {
		t.Errorf("linked = %+v", docs)
	}
	if req := lastRequest(t, srv); req.Path != "/cases/42/documents" {
		t.Errorf("path = %s", req.Path)
	}

	doc, err := connector.FindLinkedEntity[model.Document](ctx, client, parent, 7)
	if err != nil || doc.ID != 7 || doc.Name != "a.pdf" {
		t.Errorf("FindLinkedEntity = %+v, %v", doc, err)
	}

	_, err = connector.FindLinkedEntity[model.Document](ctx, client, parent, 99)
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) || apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("unlinked err = %v", err)
	}

	again, err := connector.GetLinkedEntities[model.Document](ctx, client, &model.Case{ID: 42, Title: "x"})
	if err != nil || len(again) != 2 {
		t.Errorf("second listing = %d, %v", len(again), err)
	}
}

func TestConnectionFailure(t *testing.T) {
	cfg := connector.Config{
		Endpoint:  "http://127.0.0.1:1/api/v1",
		APIKey:    "k",
		APISecret: "s",
		Timeout:   2 * time.Second,
	}
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "docket-test", &buf)
	client, err := connector.New(cfg, model.Registry(), connector.WithLogger(log))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = client.ReadObject(context.Background(), &model.Case{ID: 1})
	if !apperrors.IsCode(err, apperrors.ErrCodeConnectionFailed) {
		t.Errorf("err = %v, want CONNECTION_FAILED", err)
	}
	if !strings.Contains(buf.String(), `"level":"fatal"`) {
		t.Errorf("transport failure not logged at fatal level: %s", buf.String())
	}
}

func TestCancelledContext(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	client := newClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.ReadObject(ctx, &model.Case{ID: 1})
	if !apperrors.IsCode(err, apperrors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestTraceLogging(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 42, nil)

	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "trace", Format: "json"}, "docket-test", &buf)
	client := newClient(t, srv, connector.WithLogger(log))

	if err := client.ReadObject(context.Background(), &model.Case{ID: 42}); err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	out := buf.String()
	want := "Request GET " + srv.URL() + "/cases/42 / Response '200'"
	if !strings.Contains(out, want) {
		t.Errorf("log = %s, want %q", out, want)
	}
	if !strings.Contains(out, `"request_id"`) {
		t.Errorf("log lacks request id: %s", out)
	}
}

func TestSpans(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 42, nil)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	client := newClient(t, srv, connector.WithTracerProvider(tp))

	ctx := context.Background()
	_ = client.ReadObject(ctx, &model.Case{ID: 42})
	_ = client.ReadObject(ctx, &model.Case{ID: 404})

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != observability.SpanRequest {
		t.Errorf("span name = %q", spans[0].Name())
	}
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[string(semconv.HTTPRequestMethodKey)] != http.MethodGet {
		t.Errorf("method attribute = %v", attrs)
	}
	if attrs[string(observability.AttrOperation)] != "read" {
		t.Errorf("operation attribute = %v", attrs)
	}
	if spans[1].Status().Code.String() != "Error" {
		t.Errorf("failed span status = %v", spans[1].Status())
	}
}

func TestClient_Concurrent(t *testing.T) {
	srv := connectortest.NewServer(t, model.Registry())
	srv.Seed("cases", 1, map[string]any{"title": "shared"})
	client := newClient(t, srv)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &model.Case{ID: 1}
			if err := client.ReadObject(context.Background(), c); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent read: %v", err)
	}
	if n := len(srv.Requests()); n != 16 {
		t.Errorf("requests = %d, want 16", n)
	}
}
