// Package config handles configuration loading for the submission client.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax). This allows sensitive values
// like gateway credentials to be injected at runtime.
//
// # Configuration Sections
//
//   - gateway: endpoint URL, test-in-live flag, submission timeout
//   - credentials: sender ID, password, contact email
//   - channel: vendor ID and product identification sent in ChannelRouting
//   - polling: poll cadence bounds and transient retry budget
//
// # Example Configuration
//
//	gateway:
//	  url: https://transaction-engine.tax.service.gov.uk/submission
//	  test: false
//	  timeout: 120s
//
//	credentials:
//	  senderId: ${GATEWAY_SENDER_ID}
//	  password: ${GATEWAY_PASSWORD}
//	  email: filings@example.com
//
//	channel:
//	  vendorId: "8205"
//	  product: go-govtalk
//	  version: "1.0"
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Gateway     GatewayConfig     `yaml:"gateway"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Channel     ChannelConfig     `yaml:"channel"`
	Polling     PollingConfig     `yaml:"polling"`
}

// GatewayConfig holds the submission endpoint settings
type GatewayConfig struct {
	URL string `yaml:"url"`
	// Test marks submissions test-in-live; the gateway validates but does
	// not process them.
	Test    bool          `yaml:"test"`
	Timeout time.Duration `yaml:"timeout"`
}

// CredentialsConfig holds the sender's gateway account details
type CredentialsConfig struct {
	SenderID string `yaml:"senderId"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

// ChannelConfig identifies the submitting software to the gateway
type ChannelConfig struct {
	VendorID string `yaml:"vendorId"`
	Product  string `yaml:"product"`
	Version  string `yaml:"version"`
}

// PollingConfig bounds the poll loop
type PollingConfig struct {
	// Interval is used when the gateway does not advertise one.
	Interval time.Duration `yaml:"interval"`
	// MaxPolls caps poll attempts for a single submission.
	MaxPolls int `yaml:"maxPolls"`
	// TransientRetries is the retry budget for transport failures.
	TransientRetries int `yaml:"transientRetries"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 120 * time.Second
	}
	if c.Channel.Product == "" {
		c.Channel.Product = "go-govtalk"
	}
	if c.Channel.Version == "" {
		c.Channel.Version = "1.0"
	}
	if c.Polling.Interval == 0 {
		c.Polling.Interval = 1 * time.Second
	}
	if c.Polling.MaxPolls == 0 {
		c.Polling.MaxPolls = 60
	}
	if c.Polling.TransientRetries == 0 {
		c.Polling.TransientRetries = 3
	}
}

func (c *Config) validate() error {
	if c.Gateway.URL == "" {
		return fmt.Errorf("gateway.url is required")
	}
	if c.Credentials.SenderID == "" {
		return fmt.Errorf("credentials.senderId is required")
	}
	if c.Credentials.Password == "" {
		return fmt.Errorf("credentials.password is required")
	}
	if c.Polling.MaxPolls < 1 {
		return fmt.Errorf("polling.maxPolls must be positive, got %d", c.Polling.MaxPolls)
	}
	return nil
}
