package connector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/docket/entity"
	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/httpclient"
	"github.com/kbukum/docket/logger"
	"github.com/kbukum/docket/observability"
	"github.com/kbukum/docket/registry"
	"github.com/kbukum/docket/version"
	"github.com/kbukum/docket/wsse"
)

// Custom verbs understood by the remote API.
const (
	VerbLink   = "LINK"
	VerbAction = "patch"
)

var (
	successStatuses = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}
	readStatuses    = []int{http.StatusOK}
	deleteStatuses  = []int{http.StatusOK, http.StatusNoContent}
)

var _ API = (*Client)(nil)

// Client talks to the remote API over HTTP. It holds only immutable state
// after New and is safe for concurrent use.
type Client struct {
	cfg      Config
	registry *registry.Registry
	adapter  *httpclient.Adapter
	auth     *wsse.Authenticator
	log      *logger.Logger
	tracer   trace.Tracer

	// set by options, consumed by New
	wsseOpts   []wsse.Option
	httpOpts   []httpclient.Option
	tracerProv trace.TracerProvider
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTracerProvider sets the provider for request spans. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracerProv = tp }
}

// WithAuthOptions passes options to the WSSE authenticator.
func WithAuthOptions(opts ...wsse.Option) Option {
	return func(c *Client) { c.wsseOpts = append(c.wsseOpts, opts...) }
}

// WithHTTPOptions passes options to the transport adapter.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(c *Client) { c.httpOpts = append(c.httpOpts, opts...) }
}

// New builds a Client. Missing credentials or an invalid config fail here
// with a CONFIGURATION_ERROR, never per request.
func New(cfg Config, reg *registry.Registry, opts ...Option) (*Client, error) {
	if reg == nil {
		return nil, apperrors.Configuration("connector requires a resource registry")
	}
	cfg = cfg.clone()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, registry: reg}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetGlobalLogger()
	}
	c.log = c.log.WithComponent("connector")
	c.tracer = observability.Tracer(c.tracerProv)

	auth, err := wsse.New(cfg.APIKey, cfg.APISecret, c.wsseOpts...)
	if err != nil {
		return nil, err
	}
	c.auth = auth

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   version.UserAgent(),
	}
	if cfg.APIUser != "" {
		headers[cfg.APIUserHeader()] = cfg.APIUser
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	adapter, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.Endpoint,
		Timeout: cfg.Timeout,
		Auth:    httpclient.SignerAuth(auth),
		TLS:     cfg.TLS,
		Headers: headers,
	}, c.httpOpts...)
	if err != nil {
		return nil, apperrors.Configuration("invalid transport configuration: " + err.Error()).WithCause(err)
	}
	c.adapter = adapter
	return c, nil
}

// Registry implements API.
func (c *Client) Registry() *registry.Registry { return c.registry }

// Config returns a copy of the configuration the client was built with.
func (c *Client) Config() Config { return c.cfg.clone() }

// Close releases idle connections.
func (c *Client) Close(ctx context.Context) error {
	return c.adapter.Close(ctx)
}

// WriteObject implements API.
func (c *Client) WriteObject(ctx context.Context, e entity.Entity) (bool, error) {
	body, ok := entity.Encode(e)
	if !ok {
		c.log.WithContext(ctx).Debug("Skipping write without sendable fields",
			logger.Fields(logger.FieldKind, e.Kind()))
		return false, nil
	}

	if !entity.IsNew(e) {
		path, _ := c.objectPath(e)
		_, err := c.call(ctx, "write", httpclient.Request{
			Method: http.MethodPut,
			Path:   path,
			Body:   body,
		}, successStatuses)
		return err == nil, err
	}

	resp, err := c.call(ctx, "write", httpclient.Request{
		Method: http.MethodPost,
		Path:   c.registry.PathFor(e.Kind()),
		Body:   body,
	}, successStatuses)
	if err != nil {
		return false, err
	}
	if len(resp.Body) > 0 {
		if err := entity.Hydrate(e, resp.Body); err != nil {
			return false, err
		}
	}
	return true, nil
}

// DeleteObject implements API.
func (c *Client) DeleteObject(ctx context.Context, e entity.Entity) error {
	path, err := c.objectPath(e)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "delete", httpclient.Request{
		Method: http.MethodDelete,
		Path:   path,
	}, deleteStatuses)
	return err
}

// ReadObject implements API.
func (c *Client) ReadObject(ctx context.Context, e entity.Entity) error {
	path, err := c.objectPath(e)
	if err != nil {
		return err
	}
	resp, err := c.call(ctx, "read", httpclient.Request{
		Method: http.MethodGet,
		Path:   path,
	}, readStatuses)
	if err != nil {
		return err
	}
	return entity.Hydrate(e, resp.Body)
}

// LinkEntity implements API.
func (c *Client) LinkEntity(ctx context.Context, parent, child entity.Entity) error {
	parentPath, err := c.objectPath(parent)
	if err != nil {
		return err
	}
	if entity.IsNew(child) {
		return apperrors.InvalidInput("id", child.Kind()+" has not been created yet")
	}
	path := parentPath + "/" + c.registry.NestedPathFor(parent.Kind(), child.Kind()) + "/" + formatID(child.EntityID())
	_, err = c.call(ctx, "link", httpclient.Request{
		Method:   http.MethodGet,
		Override: VerbLink,
		Path:     path,
	}, successStatuses)
	return err
}

// PerformAction implements API.
func (c *Client) PerformAction(ctx context.Context, e entity.Entity, action string) error {
	if action == "" {
		return apperrors.InvalidInput("action", "action name is required")
	}
	path, err := c.objectPath(e)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "action", httpclient.Request{
		Method:   http.MethodGet,
		Override: VerbAction,
		Path:     path + "/" + action,
	}, successStatuses)
	return err
}

// GetFileAssets implements API.
func (c *Client) GetFileAssets(ctx context.Context, e entity.Entity, asset string) ([]byte, error) {
	encoded, err := c.fetchAsset(ctx, e, asset)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.MalformedBody("asset "+asset+" is not valid base64", err)
	}
	return data, nil
}

// GetTextAssets implements API.
func (c *Client) GetTextAssets(ctx context.Context, e entity.Entity, asset string) (string, error) {
	return c.fetchAsset(ctx, e, asset)
}

// Get implements API.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	resp, err := c.call(ctx, "find", httpclient.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	}, successStatuses)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// fetchAsset returns the first element of the JSON array served for an asset.
func (c *Client) fetchAsset(ctx context.Context, e entity.Entity, asset string) (string, error) {
	if asset == "" {
		return "", apperrors.InvalidInput("asset", "asset name is required")
	}
	path, err := c.objectPath(e)
	if err != nil {
		return "", err
	}
	resp, err := c.call(ctx, "asset", httpclient.Request{
		Method: http.MethodGet,
		Path:   path + "/" + asset,
	}, successStatuses)
	if err != nil {
		return "", err
	}

	var items []string
	if err := json.Unmarshal(resp.Body, &items); err != nil {
		return "", apperrors.MalformedBody("asset "+asset+" is not a JSON array of strings", err)
	}
	if len(items) == 0 {
		return "", apperrors.MalformedBody("asset "+asset+" is empty", nil)
	}
	return items[0], nil
}

func (c *Client) objectPath(e entity.Entity) (string, error) {
	return objectPath(c.registry, e)
}

// objectPath is the path of a persisted entity. New entities have no
// server-side path.
func objectPath(reg *registry.Registry, e entity.Entity) (string, error) {
	if entity.IsNew(e) {
		return "", apperrors.InvalidInput("id", e.Kind()+" has not been created yet")
	}
	return reg.PathFor(e.Kind()) + "/" + formatID(e.EntityID()), nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// String describes the client for logs.
func (c *Client) String() string {
	return fmt.Sprintf("connector(%s)", c.cfg.Endpoint)
}
