package connector

import (
	"github.com/kbukum/docket/config"
)

type fileConfig struct {
	Connector Config `yaml:"connector" mapstructure:"connector"`
}

// LoadConfig reads the "connector" section of the service configuration
// (config.yml, .env, DOCKET_CONNECTOR_* variables), applies defaults and
// validates it.
func LoadConfig(serviceName string, opts ...config.LoaderOption) (Config, error) {
	var fc fileConfig
	if err := config.LoadConfig(serviceName, &fc, opts...); err != nil {
		return Config{}, err
	}
	cfg := fc.Connector
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
