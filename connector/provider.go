package connector

import (
	"context"
	"sync"

	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/registry"
)

// Factory builds an API from a configuration.
type Factory func(cfg Config) (API, error)

// Provider owns the one API instance of a process. The instance is built
// lazily on the first Get from the staged configuration, which that build
// consumes: after a rebuild is forced, Configure must be called again.
type Provider struct {
	mu       sync.RWMutex
	factory  Factory
	staged   *Config
	instance API
}

// NewProvider creates a provider whose default factory builds a *Client over
// reg with opts.
func NewProvider(reg *registry.Registry, opts ...Option) *Provider {
	return &Provider{
		factory: func(cfg Config) (API, error) {
			return New(cfg, reg, opts...)
		},
	}
}

// Configure stages cfg for the next build and drops the current instance.
func (p *Provider) Configure(cfg Config) {
	cfg = cfg.clone()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.staged = &cfg
	p.invalidate()
}

// SetFactory replaces the factory and drops the current instance. Tests use
// it to inject a double.
func (p *Provider) SetFactory(f Factory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factory = f
	p.invalidate()
}

// Get returns the instance, building it on first use. Without a staged
// configuration it fails with a CONFIGURATION_ERROR.
func (p *Provider) Get() (API, error) {
	p.mu.RLock()
	if p.instance != nil {
		api := p.instance
		p.mu.RUnlock()
		return api, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.instance != nil {
		return p.instance, nil
	}
	if p.staged == nil {
		return nil, apperrors.Configuration("connector used before configuration was supplied")
	}
	if p.factory == nil {
		return nil, apperrors.Configuration("connector has no factory")
	}

	api, err := p.factory(*p.staged)
	if err != nil {
		return nil, err
	}
	p.instance = api
	p.staged = nil
	return api, nil
}

// Configured reports whether an instance exists or can be built.
func (p *Provider) Configured() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.instance != nil || p.staged != nil
}

// Reset drops the instance and any staged configuration.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.staged = nil
	p.invalidate()
}

type closer interface {
	Close(ctx context.Context) error
}

// invalidate must be called with mu held.
func (p *Provider) invalidate() {
	if c, ok := p.instance.(closer); ok {
		_ = c.Close(context.Background())
	}
	p.instance = nil
}
