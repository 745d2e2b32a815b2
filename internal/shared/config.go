package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Values from the environment (FLOW_*) take precedence over the file, see [ApplyEnv].
type Config struct {
	VK       VKConfig       `toml:"vk" envPrefix:"FLOW_"`
	Database DatabaseConfig `toml:"database" envPrefix:"FLOW_DATABASE_"`
	Server   ServerConfig   `toml:"server" envPrefix:"FLOW_SERVER_"`
}

// VKConfig contains the VK application and API settings.
//
// AccessToken and UserID are never written to the config file; they let a
// session be supplied from the environment instead of the session store.
type VKConfig struct {
	ClientID       string  `toml:"client_id" env:"CLIENT_ID"`
	RedirectURI    string  `toml:"redirect_uri" env:"REDIRECT_URI"`
	APIBaseURL     string  `toml:"api_base_url" env:"API_BASE_URL"`
	APIVersion     string  `toml:"api_version" env:"API_VERSION"`
	Scope          string  `toml:"scope" env:"SCOPE"`
	RateLimit      float64 `toml:"rate_limit" env:"RATE_LIMIT"`
	TimeoutSeconds int     `toml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
	AccessToken    string  `toml:"-" env:"ACCESS_TOKEN"`
	UserID         string  `toml:"-" env:"USER_ID"`
}

// Timeout returns the per-request timeout, defaulting to 30 seconds.
func (c VKConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host" env:"HOST"`
	Port int    `toml:"port" env:"PORT"`
}

// Addr returns host:port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// ApplyEnv overlays FLOW_* environment variables onto config.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
