// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Toolset selects which tools are registered with the MCP server.
type Toolset string

const (
	// ToolsetReadOnly registers retrieval, auth, and discovery tools only.
	ToolsetReadOnly Toolset = "read-only"
	// ToolsetFull additionally registers the mutating tools.
	ToolsetFull Toolset = "full"
)

// Config holds all server settings.
type Config struct {
	// WaldurBaseURL is the root of the Waldur REST API, e.g.
	// https://waldur.example.com/api/.
	WaldurBaseURL string `env:"WALDUR_BASE_URL"`

	// VerifySSL disables TLS certificate verification when false.
	VerifySSL bool `env:"VERIFY_SSL" envDefault:"true"`

	// ClientID is the public OAuth client used for the device flow.
	ClientID string `env:"CLIENT_ID"`

	// DiscoveryURL points at the OIDC discovery document. When set, the
	// device and token endpoints are resolved from it and the static
	// endpoint settings below are ignored.
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// DeviceEndpoint and TokenEndpoint are static fallbacks used when no
	// discovery URL is configured.
	DeviceEndpoint string `env:"DEVICE_ENDPOINT"`
	TokenEndpoint  string `env:"TOKEN_ENDPOINT"`

	// DataPath is the directory holding the cached OpenAPI schema.
	DataPath string `env:"MCP_DATA_PATH" envDefault:"./cache"`

	// SchemaURL is the location of the Waldur OpenAPI schema.
	SchemaURL string `env:"WALDUR_SCHEMA_URL" envDefault:"https://docs.waldur.com/latest/API/waldur-openapi-schema.yaml"`

	// Toolset selects read-only or full tool registration.
	Toolset Toolset `env:"MCP_TOOLSET" envDefault:"read-only"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	HTTPRetryAttempts int           `env:"HTTP_RETRY_ATTEMPTS" envDefault:"2"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.WaldurBaseURL = normalizeBaseURL(cfg.WaldurBaseURL)
	return cfg, nil
}

// Validate reports every missing required setting in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.WaldurBaseURL == "" {
		missing = append(missing, "WALDUR_BASE_URL")
	}
	if c.ClientID == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if c.DiscoveryURL == "" && (c.DeviceEndpoint == "" || c.TokenEndpoint == "") {
		missing = append(missing, "DISCOVERY_URL (or DEVICE_ENDPOINT and TOKEN_ENDPOINT)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Toolset != ToolsetReadOnly && c.Toolset != ToolsetFull {
		return fmt.Errorf("invalid MCP_TOOLSET %q: must be %q or %q", c.Toolset, ToolsetReadOnly, ToolsetFull)
	}
	return nil
}

// normalizeBaseURL guarantees a trailing slash so endpoint paths can be
// appended directly.
func normalizeBaseURL(u string) string {
	if u == "" {
		return u
	}
	if !strings.HasSuffix(u, "/") {
		return u + "/"
	}
	return u
}
