package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./flow.db" {
			t.Errorf("expected database path ./flow.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.VK.APIBaseURL != "https://api.vk.com/method/" {
			t.Errorf("expected VK API base URL, got %s", config.VK.APIBaseURL)
		}

		if config.VK.RateLimit != 3 {
			t.Errorf("expected rate limit 3, got %v", config.VK.RateLimit)
		}

		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		if got := (VKConfig{}).Timeout(); got != 30*time.Second {
			t.Errorf("expected default timeout 30s, got %v", got)
		}
		if got := (VKConfig{TimeoutSeconds: 5}).Timeout(); got != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[vk]
client_id = "123456"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.VK.ClientID != "123456" {
			t.Errorf("expected client_id 123456, got %s", config.VK.ClientID)
		}
		if config.VK.APIVersion != "5.131" {
			t.Errorf("expected missing keys to keep defaults, got api_version %q", config.VK.APIVersion)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[vk\nclient_id ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("FLOW_CLIENT_ID", "env-client")
		t.Setenv("FLOW_ACCESS_TOKEN", "env-token")
		t.Setenv("FLOW_USER_ID", "42")
		t.Setenv("FLOW_DATABASE_PATH", ":memory:")
		t.Setenv("FLOW_SERVER_PORT", "4000")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("ApplyEnv failed: %v", err)
		}

		if config.VK.ClientID != "env-client" {
			t.Errorf("expected client id from env, got %s", config.VK.ClientID)
		}
		if config.VK.AccessToken != "env-token" || config.VK.UserID != "42" {
			t.Errorf("expected session from env, got %q/%q", config.VK.AccessToken, config.VK.UserID)
		}
		if config.Database.Path != ":memory:" {
			t.Errorf("expected database path from env, got %s", config.Database.Path)
		}
		if config.Server.Port != 4000 {
			t.Errorf("expected port 4000, got %d", config.Server.Port)
		}
		if config.VK.APIVersion != "5.131" {
			t.Errorf("unset variables should keep file values, got %s", config.VK.APIVersion)
		}
	})

	t.Run("ApplyEnv Invalid Value", func(t *testing.T) {
		t.Setenv("FLOW_SERVER_PORT", "not-a-port")

		if err := ApplyEnv(DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
