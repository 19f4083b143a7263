package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"interactbox/pkg/fileutil"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFilename       = "interactbox.yaml"
	DefaultListen         = "localhost:8765"
	DefaultAdminListen    = "localhost:8766"
	DefaultAPIHost        = "discord.com"
	DefaultAPIPort        = 443
	DefaultReadTimeout    = 30
	DefaultMaxConnections = 256
	DefaultDBPath         = "./interactions.db"
	DefaultLogLevel       = "info"

	PublicKeyHexLength = 64
)

// Environment variables that override secrets in the file.
const (
	EnvToken     = "DISCORD_TOKEN"
	EnvPublicKey = "PUBLIC_KEY"
	EnvAppID     = "APP_ID"
)

// ForbiddenTokens are placeholder credentials from example configs.
var ForbiddenTokens = map[string]bool{
	"replace-with-token": true,
	"your-bot-token":     true,
	"bot-token-here":     true,
	"token":              true,
	"changeme":           true,
}

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config is the interactbox.yaml document. Timeouts are in seconds.
type Config struct {
	Listen           string `yaml:"listen"`
	AdminListen      string `yaml:"admin_listen"`
	PublicKey        string `yaml:"public_key"`
	Token            string `yaml:"token"`
	AppID            string `yaml:"app_id"`
	APIHost          string `yaml:"api_host"`
	APIPort          int    `yaml:"api_port"`
	CAFile           string `yaml:"ca_file"`
	ReadTimeout      int    `yaml:"read_timeout"`
	MaxConnections   int    `yaml:"max_connections"`
	RateLimit        int    `yaml:"rate_limit"`
	DB               string `yaml:"db"`
	LogLevel         string `yaml:"log_level"`
	RegisterCommands *bool  `yaml:"register_commands"`
}

// LoadConfig reads path (if non-empty), applies environment overrides and
// defaults, then validates. Every problem found is reported in one error.
func LoadConfig(path string) (*Config, error) {
	config, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := config.Check(); err != nil {
		return nil, err
	}

	return config, nil
}

// ReadConfig is LoadConfig without validation, for callers that adjust the
// result before calling Check.
func ReadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	config.ApplyEnv(os.LookupEnv)
	config.ApplyDefaults()

	return &config, nil
}

// Check returns the problems from Validate as a single error, or nil.
func (c *Config) Check() error {
	if errors := c.Validate(); len(errors) > 0 {
		return fmt.Errorf("invalid configuration:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

// ApplyEnv overrides secrets with any that are set in the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if value, ok := lookup(EnvToken); ok && value != "" {
		c.Token = value
	}
	if value, ok := lookup(EnvPublicKey); ok && value != "" {
		c.PublicKey = value
	}
	if value, ok := lookup(EnvAppID); ok && value != "" {
		c.AppID = value
	}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.AdminListen == "" {
		c.AdminListen = DefaultAdminListen
	}
	if c.APIHost == "" {
		c.APIHost = DefaultAPIHost
	}
	if c.APIPort == 0 {
		c.APIPort = DefaultAPIPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.MaxConnections == 0 {
		c.MaxConnections = DefaultMaxConnections
	}
	if c.DB == "" {
		c.DB = DefaultDBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.RegisterCommands == nil {
		register := true
		c.RegisterCommands = &register
	}
}

// Validate returns every problem with the configuration. Credentials for
// registration are only required when registration is enabled.
func (c *Config) Validate() []string {
	var errors []string

	if c.PublicKey == "" {
		errors = append(errors, fmt.Sprintf("  - missing required 'public_key' (or %s)", EnvPublicKey))
	} else if err := ValidatePublicKey(c.PublicKey); err != nil {
		errors = append(errors, fmt.Sprintf("  - public_key: %v", err))
	}

	if c.ShouldRegister() {
		if c.Token == "" {
			errors = append(errors, fmt.Sprintf("  - missing required 'token' (or %s) for command registration", EnvToken))
		} else if ForbiddenTokens[strings.ToLower(c.Token)] {
			errors = append(errors, "  - token appears to be a placeholder value, replace with the real bot token")
		}
		if c.AppID == "" {
			errors = append(errors, fmt.Sprintf("  - missing required 'app_id' (or %s) for command registration", EnvAppID))
		}
	}

	if c.Listen == "" {
		errors = append(errors, "  - listen address cannot be empty")
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		errors = append(errors, fmt.Sprintf("  - api_port must be between 1 and 65535, got %d", c.APIPort))
	}

	if c.ReadTimeout < 0 {
		errors = append(errors, fmt.Sprintf("  - read_timeout must be a positive integer, got %d", c.ReadTimeout))
	}

	if c.MaxConnections < 0 {
		errors = append(errors, fmt.Sprintf("  - max_connections must be a positive integer, got %d", c.MaxConnections))
	}

	if c.RateLimit < 0 {
		errors = append(errors, fmt.Sprintf("  - rate_limit cannot be negative, got %d", c.RateLimit))
	}

	if c.LogLevel != "" && !logLevels[strings.ToLower(c.LogLevel)] {
		errors = append(errors, fmt.Sprintf("  - log_level must be one of debug, info, warn, error, got '%s'", c.LogLevel))
	}

	if c.CAFile != "" {
		if !fileutil.FileExists(c.CAFile) {
			errors = append(errors, fmt.Sprintf("  - ca_file does not exist: '%s'", c.CAFile))
		}
	}

	return errors
}

// ValidatePublicKey checks that key is 32 bytes of hex.
func ValidatePublicKey(key string) error {
	if len(key) != PublicKeyHexLength {
		return fmt.Errorf("expected %d hex characters, got %d", PublicKeyHexLength, len(key))
	}
	if _, err := hex.DecodeString(key); err != nil {
		return fmt.Errorf("not valid hex: %w", err)
	}
	return nil
}

// ShouldRegister reports whether commands are registered before serving.
func (c *Config) ShouldRegister() bool {
	return c.RegisterCommands == nil || *c.RegisterCommands
}

// ReadTimeoutDuration returns the per-read idle timeout.
func (c *Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}
