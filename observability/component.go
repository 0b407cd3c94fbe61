package observability

import (
	"context"
	"fmt"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/docket/component"
	"github.com/kbukum/docket/logger"
)

var (
	_ component.Component   = (*TracingComponent)(nil)
	_ component.Describable = (*TracingComponent)(nil)
)

// TracingComponent owns the process tracer provider. A disabled config makes
// Start and Stop no-ops.
type TracingComponent struct {
	cfg TracerConfig
	log *logger.Logger

	mu sync.Mutex
	tp *sdktrace.TracerProvider
}

// NewTracingComponent creates the component; nothing is exported before Start.
func NewTracingComponent(cfg TracerConfig, log *logger.Logger) *TracingComponent {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &TracingComponent{cfg: cfg, log: log.WithComponent("tracing")}
}

// Name implements component.Component.
func (c *TracingComponent) Name() string { return "tracing" }

// Start installs the tracer provider.
func (c *TracingComponent) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tp != nil {
		return nil
	}
	tp, err := InitTracer(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	c.tp = tp
	return nil
}

// Stop flushes pending spans and shuts the provider down.
func (c *TracingComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tp == nil {
		return nil
	}
	err := c.tp.Shutdown(ctx)
	c.tp = nil
	if err != nil {
		return fmt.Errorf("tracer shutdown: %w", err)
	}
	return nil
}

// Health implements component.Component.
func (c *TracingComponent) Health(_ context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case !c.cfg.Enabled:
		h.Message = "disabled"
	case c.tp == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Describe implements component.Describable.
func (c *TracingComponent) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("otlp/http %s sample=%.2f", c.cfg.Endpoint, c.cfg.SampleRate)
	}
	return component.Description{Name: "Tracing", Type: "tracing", Details: details}
}
