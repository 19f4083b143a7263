package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

const validKey = "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvToken, "")
	t.Setenv(EnvPublicKey, "")
	t.Setenv(EnvAppID, "")
}

func TestLoadConfig_ValidFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
listen: 127.0.0.1:9000
public_key: `+validKey+`
token: bot-token
app_id: "1234"
read_timeout: 10
rate_limit: 60
log_level: debug
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected valid config, got error: %v", err)
	}

	if config.Listen != "127.0.0.1:9000" {
		t.Errorf("Expected listen '127.0.0.1:9000', got %q", config.Listen)
	}

	if config.AppID != "1234" {
		t.Errorf("Expected app_id '1234', got %q", config.AppID)
	}

	if config.ReadTimeoutDuration() != 10*time.Second {
		t.Errorf("Expected read timeout 10s, got %v", config.ReadTimeoutDuration())
	}

	if config.RateLimit != 60 {
		t.Errorf("Expected rate_limit 60, got %d", config.RateLimit)
	}

	if !config.ShouldRegister() {
		t.Error("Expected registration to default to enabled")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
public_key: `+validKey+`
register_commands: false
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected valid config, got error: %v", err)
	}

	if config.Listen != DefaultListen {
		t.Errorf("Expected default listen %q, got %q", DefaultListen, config.Listen)
	}

	if config.APIHost != DefaultAPIHost {
		t.Errorf("Expected default api_host %q, got %q", DefaultAPIHost, config.APIHost)
	}

	if config.APIPort != DefaultAPIPort {
		t.Errorf("Expected default api_port %d, got %d", DefaultAPIPort, config.APIPort)
	}

	if config.ReadTimeout != DefaultReadTimeout {
		t.Errorf("Expected default read_timeout %d, got %d", DefaultReadTimeout, config.ReadTimeout)
	}

	if config.MaxConnections != DefaultMaxConnections {
		t.Errorf("Expected default max_connections %d, got %d", DefaultMaxConnections, config.MaxConnections)
	}

	if config.ShouldRegister() {
		t.Error("Expected registration to be disabled")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvPublicKey, validKey)
	t.Setenv(EnvAppID, "9999")

	path := writeConfig(t, `
public_key: not-a-key
token: file-token
app_id: "1234"
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected env to override invalid key, got error: %v", err)
	}

	if config.Token != "env-token" {
		t.Errorf("Expected token from env, got %q", config.Token)
	}

	if config.PublicKey != validKey {
		t.Errorf("Expected public key from env, got %q", config.PublicKey)
	}

	if config.AppID != "9999" {
		t.Errorf("Expected app_id from env, got %q", config.AppID)
	}
}

func TestLoadConfig_NoFileUsesEnv(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvPublicKey, validKey)
	t.Setenv(EnvAppID, "9999")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Expected config from env alone, got error: %v", err)
	}

	if config.Token != "env-token" {
		t.Errorf("Expected token 'env-token', got %q", config.Token)
	}
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
read_timeout: -1
max_connections: -5
log_level: loud
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for invalid config")
	}

	for _, want := range []string{"public_key", "token", "app_id", "read_timeout", "max_connections", "log_level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected read error, got: %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "listen: [unterminated")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}

	if !strings.Contains(err.Error(), "failed to parse YAML config") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

func TestValidatePublicKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", validKey, false},
		{"too short", validKey[:62], true},
		{"too long", validKey + "00", true},
		{"not hex", strings.Repeat("zz", 32), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePublicKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePublicKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CAFile(t *testing.T) {
	disabled := false
	config := Config{
		PublicKey:        validKey,
		CAFile:           filepath.Join(t.TempDir(), "missing.pem"),
		RegisterCommands: &disabled,
	}
	config.ApplyDefaults()

	errors := config.Validate()
	if len(errors) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(errors), errors)
	}

	if !strings.Contains(errors[0], "ca_file") {
		t.Errorf("Expected ca_file error, got %q", errors[0])
	}
}

func TestValidate_PlaceholderToken(t *testing.T) {
	for _, token := range []string{"changeme", "Replace-With-Token"} {
		t.Run(token, func(t *testing.T) {
			config := Config{PublicKey: validKey, Token: token, AppID: "1234"}
			config.ApplyDefaults()

			errors := config.Validate()
			if len(errors) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errors), errors)
			}

			if !strings.Contains(errors[0], "placeholder") {
				t.Errorf("Expected placeholder error, got %q", errors[0])
			}
		})
	}
}

func TestValidate_APIPortRange(t *testing.T) {
	disabled := false
	for _, port := range []int{-1, 0, 65536} {
		t.Run(strconv.Itoa(port), func(t *testing.T) {
			config := Config{Listen: DefaultListen, PublicKey: validKey, APIPort: port, RegisterCommands: &disabled}

			errors := config.Validate()
			if len(errors) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errors), errors)
			}

			if !strings.Contains(errors[0], "api_port") {
				t.Errorf("Expected api_port error, got %q", errors[0])
			}
		})
	}

	config := Config{Listen: DefaultListen, PublicKey: validKey, APIPort: 1, RegisterCommands: &disabled}
	if errors := config.Validate(); len(errors) != 0 {
		t.Errorf("Expected port 1 to be valid, got %v", errors)
	}
}
