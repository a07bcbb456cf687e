package app

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/lubianat/ome-ngff-tools/pkg/errors"
)

// resetViper isolates a test from the global viper state of earlier tests.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

// TestLoadConfig verifies defaults.
func TestLoadConfig(t *testing.T) {
	resetViper(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.FetchConcurrency != DefaultFetchConcurrency {
		t.Errorf("FetchConcurrency = %d, want %d", config.FetchConcurrency, DefaultFetchConcurrency)
	}
	if config.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("HTTPTimeout = %v, want %v", config.HTTPTimeout, DefaultHTTPTimeout)
	}
	if config.Layout.Features != "data/features_new.yml" {
		t.Errorf("Layout.Features = %q, want default", config.Layout.Features)
	}
	if len(config.Layout.DefaultToolFiles) == 0 {
		t.Error("Layout.DefaultToolFiles not set to default")
	}
	if config.Server.Port != 8080 || config.Server.PathPrefix != "/api/v1" {
		t.Errorf("Server = %+v, want defaults", config.Server)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies environment variable loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	resetViper(t)
	t.Setenv("DATA_DIR", "/srv/ome-ngff-tools")
	t.Setenv("FETCH_CONCURRENCY", "2")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("FEATURES_FILE", "data/features.yml")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_CACHE_TTL", "1m")
	t.Setenv("AUTH_TOKEN", "secret")
	t.Setenv("FORMAT", "json")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.DataDir != "/srv/ome-ngff-tools" {
		t.Errorf("DataDir = %q", config.DataDir)
	}
	if config.FetchConcurrency != 2 {
		t.Errorf("FetchConcurrency = %d, want 2", config.FetchConcurrency)
	}
	if config.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", config.HTTPTimeout)
	}
	if config.Layout.Features != "data/features.yml" {
		t.Errorf("Layout.Features = %q", config.Layout.Features)
	}
	if config.Layout.Viewers != "data/viewers.yml" {
		t.Errorf("Layout.Viewers = %q, want default", config.Layout.Viewers)
	}
	if config.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", config.Server.Port)
	}
	if config.Server.CacheTTL != time.Minute {
		t.Errorf("Server.CacheTTL = %v, want 1m", config.Server.CacheTTL)
	}
	if config.AuthToken != "secret" {
		t.Errorf("AuthToken = %q", config.AuthToken)
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
}

// TestConfig_File verifies reading an explicit config file.
func TestConfig_File(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "ngffmatrix.yaml")
	content := "base_url: https://ngff.openmicroscopy.org/tools\nserver:\n  port: 7000\n  cors_origins: [https://example.org]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	viper.Set("config", path)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
	if config.BaseURL != "https://ngff.openmicroscopy.org/tools" {
		t.Errorf("BaseURL = %q", config.BaseURL)
	}
	if config.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", config.Server.Port)
	}
	if len(config.Server.CORSOrigins) != 1 || config.Server.CORSOrigins[0] != "https://example.org" {
		t.Errorf("Server.CORSOrigins = %v", config.Server.CORSOrigins)
	}
}

// TestConfig_Invalid verifies that unusable settings are rejected.
func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"zero concurrency", "FETCH_CONCURRENCY", "0"},
		{"negative timeout", "HTTP_TIMEOUT", "-1s"},
		{"port out of range", "SERVER_PORT", "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv(tt.env, tt.val)

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
			var cfgErr *errors.ConfigError
			if !stderrors.As(err, &cfgErr) {
				t.Errorf("error %v is not a ConfigError", err)
			}
		})
	}
}

// TestConfig_UpdateFromFlags verifies flag precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn"}

	config.UpdateFromFlags(true, false, true, "", "")
	if config.Format != "yaml" || config.LogLevel != "warn" || config.logLevelFromFlag {
		t.Errorf("empty flags must keep configured values: %+v", config)
	}
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}

	config.UpdateFromFlags(false, false, false, "json", "trace")
	if config.Format != "json" || config.LogLevel != "trace" || !config.logLevelFromFlag {
		t.Errorf("flags not applied: %+v", config)
	}
}
