package connector

import (
	"fmt"
	"maps"
	"time"

	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/security"
	"github.com/kbukum/docket/validation"
)

const (
	// DefaultVendor names the remote API when no vendor is configured.
	DefaultVendor  = "docket"
	defaultTimeout = 30 * time.Second
)

// Config is the connector configuration. A Client copies it on construction;
// changing a Config afterwards has no effect on clients built from it.
type Config struct {
	// Endpoint is the API base URL. Defaults to https://sandbox.<vendor>.com/api/v1.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required,url"`
	// Vendor names the API; it prefixes the api-user header.
	Vendor string `yaml:"vendor" mapstructure:"vendor" validate:"required,alphanum"`
	// APIKey is the WSSE username.
	APIKey string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	// APISecret is the WSSE shared secret.
	APISecret string `yaml:"api_secret" mapstructure:"api_secret" validate:"required"`
	// APIUser is sent as <vendor>-api-user when set.
	APIUser string `yaml:"api_user" mapstructure:"api_user"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// TLS configures the transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Vendor == "" {
		c.Vendor = DefaultVendor
	}
	if c.Endpoint == "" {
		c.Endpoint = fmt.Sprintf("https://sandbox.%s.com/api/v1", c.Vendor)
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate reports missing credentials and malformed settings as a
// CONFIGURATION_ERROR.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return apperrors.Configuration("invalid connector configuration: " + err.Error()).WithCause(err)
	}
	if err := c.TLS.Validate(); err != nil {
		return apperrors.Configuration("invalid connector configuration: " + err.Error()).WithCause(err)
	}
	return nil
}

// APIUserHeader is the header carrying APIUser.
func (c *Config) APIUserHeader() string {
	return c.Vendor + "-api-user"
}

func (c Config) clone() Config {
	c.Headers = maps.Clone(c.Headers)
	if c.TLS != nil {
		tls := *c.TLS
		c.TLS = &tls
	}
	return c
}
