package connector

import (
	"context"
	"fmt"

	"github.com/kbukum/docket/component"
	"github.com/kbukum/docket/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs a Provider inside the component lifecycle. Start supplies
// the configuration and builds the client; Stop discards it.
type Component struct {
	cfg      Config
	provider *Provider
	log      *logger.Logger
}

// NewComponent wraps provider. cfg is staged on Start.
func NewComponent(cfg Config, provider *Provider, log *logger.Logger) *Component {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	cfg = cfg.clone()
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, provider: provider, log: log.WithComponent("connector")}
}

// Name implements component.Component.
func (c *Component) Name() string { return "connector" }

// Start builds the API client.
func (c *Component) Start(_ context.Context) error {
	c.provider.Configure(c.cfg)
	if _, err := c.provider.Get(); err != nil {
		return err
	}
	c.log.Debug("Connector ready", logger.Fields(logger.FieldURL, c.cfg.Endpoint))
	return nil
}

// Stop releases the client.
func (c *Component) Stop(_ context.Context) error {
	c.provider.Reset()
	return nil
}

// Health implements component.Component.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.provider.Configured() {
		h.Status = component.StatusUnhealthy
		h.Message = "not configured"
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	details := c.cfg.Endpoint
	if c.cfg.APIUser != "" {
		details += fmt.Sprintf(" user=%s", c.cfg.APIUser)
	}
	return component.Description{Name: "API Connector", Type: "connector", Details: details}
}

// API returns the running client.
func (c *Component) API() (API, error) {
	return c.provider.Get()
}
