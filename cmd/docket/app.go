package main

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/docket/component"
	"github.com/kbukum/docket/config"
	"github.com/kbukum/docket/connector"
	"github.com/kbukum/docket/logger"
	"github.com/kbukum/docket/model"
	"github.com/kbukum/docket/observability"
	"github.com/kbukum/docket/validation"
	"github.com/kbukum/docket/version"
)

const serviceName = "docket"

type cliConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Connector connector.Config          `yaml:"connector" mapstructure:"connector"`
	Tracing   observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
}

func (c *cliConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Connector.ApplyDefaults()

	def := observability.DefaultTracerConfig(c.Name)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = def.ServiceName
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = version.Get().Short()
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = def.Endpoint
	}
}

func (c *cliConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Connector.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&c.Tracing); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	return nil
}

type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func loadConfig(opts *globalOptions) (cliConfig, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}

	var cfg cliConfig
	if err := config.LoadConfig(serviceName, &cfg, loaderOpts...); err != nil {
		return cliConfig{}, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

// app wires the components one command invocation runs on.
type app struct {
	cfg        cliConfig
	log        *logger.Logger
	components *component.Registry
	connector  *connector.Component
}

func newApp(cfg cliConfig, logOut io.Writer) (*app, error) {
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, logOut)
	logger.SetGlobalLogger(log)

	a := &app{
		cfg:        cfg,
		log:        log,
		components: component.NewRegistry(log),
	}

	provider := connector.NewProvider(model.Registry(), connector.WithLogger(log))
	a.connector = connector.NewComponent(cfg.Connector, provider, log)

	for _, c := range []component.Component{
		observability.NewTracingComponent(cfg.Tracing, log),
		a.connector,
	} {
		if err := a.components.Register(c); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// run starts the components, hands the API to fn and stops them again.
func (a *app) run(ctx context.Context, fn func(ctx context.Context, api connector.API) error) (err error) {
	if err := a.components.StartAll(ctx); err != nil {
		_ = a.components.StopAll(context.WithoutCancel(ctx))
		return err
	}
	defer func() {
		if stopErr := a.components.StopAll(context.WithoutCancel(ctx)); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	api, err := a.connector.API()
	if err != nil {
		return err
	}
	return fn(ctx, api)
}
