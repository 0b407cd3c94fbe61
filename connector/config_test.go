package connector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/docket/config"
	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/security"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Vendor != DefaultVendor {
		t.Errorf("Vendor = %q", cfg.Vendor)
	}
	if cfg.Endpoint != "https://sandbox.docket.com/api/v1" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}

	cfg = Config{Vendor: "acme"}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "https://sandbox.acme.com/api/v1" {
		t.Errorf("vendor endpoint = %q", cfg.Endpoint)
	}
	if cfg.APIUserHeader() != "acme-api-user" {
		t.Errorf("APIUserHeader = %q", cfg.APIUserHeader())
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{APIKey: "k", APISecret: "s"}
		c.ApplyDefaults()
		return c
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no key", func(c *Config) { c.APIKey = "" }, true},
		{"no secret", func(c *Config) { c.APISecret = "" }, true},
		{"relative endpoint", func(c *Config) { c.Endpoint = "/api" }, true},
		{"vendor with dash", func(c *Config) { c.Vendor = "a-b" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"tls without key", func(c *Config) { c.TLS = &security.TLSConfig{CertFile: "c.pem"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
				t.Errorf("code = %v, want CONFIGURATION_ERROR", err)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := Config{Headers: map[string]string{"a": "1"}, TLS: &security.TLSConfig{ServerName: "x"}}
	c := cfg.clone()
	cfg.Headers["a"] = "2"
	cfg.TLS.ServerName = "y"
	if c.Headers["a"] != "1" || c.TLS.ServerName != "x" {
		t.Errorf("clone shares state: %+v %+v", c.Headers, c.TLS)
	}
}

func TestAdaptQuery(t *testing.T) {
	if got, err := adaptQuery(nil); err != nil || got != nil {
		t.Errorf("adaptQuery(nil) = %v, %v", got, err)
	}
	if got, err := adaptQuery(map[string]string{}); err != nil || got != nil {
		t.Errorf("adaptQuery(empty) = %v, %v", got, err)
	}
	got, err := adaptQuery(map[string]string{"CaseId": "4", "status": "open", "URL": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"caseId": "4", "status": "open", "uRL": "x"}
	if len(got) != len(want) {
		t.Fatalf("adaptQuery = %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("adaptQuery[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestAdaptQuery_Collision(t *testing.T) {
	for i := 0; i < 20; i++ {
		_, err := adaptQuery(map[string]string{"Status": "open", "status": "closed"})
		if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
			t.Fatalf("expected INVALID_INPUT, got %v", err)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := "connector:\n  vendor: acme\n  api_key: from-file\n  timeout: 5s\n  headers:\n    x-tenant: t1\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCKET_CONNTEST_CONNECTOR_API_SECRET", "from-env")

	cfg, err := LoadConfig("docket", config.WithConfigFile(path), config.WithEnvPrefix("DOCKET_CONNTEST_"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIKey != "from-file" || cfg.APISecret != "from-env" {
		t.Errorf("credentials = %q/%q", cfg.APIKey, cfg.APISecret)
	}
	if cfg.Endpoint != "https://sandbox.acme.com/api/v1" || cfg.Timeout != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Headers["x-tenant"] != "t1" {
		t.Errorf("headers = %v", cfg.Headers)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("connector:\n  api_key: k\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig("docket", config.WithConfigFile(path), config.WithEnvPrefix("DOCKET_CONNTEST_MISSING_"))
	if !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Errorf("err = %v, want CONFIGURATION_ERROR", err)
	}
}
