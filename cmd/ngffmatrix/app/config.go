package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lubianat/ome-ngff-tools/internal/server"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
	"github.com/lubianat/ome-ngff-tools/pkg/sources"
)

// Default values for settings that have no natural zero value.
const (
	DefaultFetchConcurrency = 8
	DefaultHTTPTimeout      = 30 * time.Second
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Data sources
	DataDir          string
	BaseURL          string
	UseEmbedded      bool
	FetchConcurrency int
	HTTPTimeout      time.Duration
	AuthToken        string
	AuthHeader       string
	Layout           sources.Layout

	// HTTP API
	Server server.Config

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	logLevelFromFlag bool
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.ngffmatrix.yaml or ./.ngffmatrix.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ngffmatrix")
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	var layout sources.Layout
	if err := viper.Unmarshal(&layout); err != nil {
		return nil, errors.NewConfigError("layout", "invalid data layout", err)
	}

	srv := server.DefaultConfig()
	srv.Host = viper.GetString("server.host")
	srv.Port = viper.GetInt("server.port")
	srv.PathPrefix = viper.GetString("server.path_prefix")
	srv.CORSEnabled = viper.GetBool("server.cors")
	srv.CORSOrigins = viper.GetStringSlice("server.cors_origins")
	srv.AuthEnabled = viper.GetBool("server.auth")
	srv.AuthHeader = viper.GetString("server.auth_header")
	srv.APIKey = viper.GetString("server.api_key")
	srv.RateLimit = viper.GetInt("server.rate_limit")
	srv.CacheTTL = viper.GetDuration("server.cache_ttl")

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		DataDir:          viper.GetString("data_dir"),
		BaseURL:          viper.GetString("base_url"),
		UseEmbedded:      viper.GetBool("use_embedded"),
		FetchConcurrency: viper.GetInt("fetch_concurrency"),
		HTTPTimeout:      viper.GetDuration("http_timeout"),
		AuthToken:        viper.GetString("auth_token"),
		AuthHeader:       viper.GetString("auth_header"),
		Layout:           layout.WithDefaults(),

		Server: srv,

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.FetchConcurrency < 1 {
		return errors.NewConfigError("sources", "fetch_concurrency must be at least 1", nil)
	}
	if c.HTTPTimeout <= 0 {
		return errors.NewConfigError("sources", "http_timeout must be positive", nil)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewConfigError("server", "port out of range", nil)
	}
	if c.Server.CacheTTL < 0 {
		return errors.NewConfigError("server", "cache_ttl must not be negative", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
		c.logLevelFromFlag = true
	}
}

// setDefaults registers the defaults of every configuration key.
func setDefaults() {
	defaults := server.DefaultConfig()

	viper.SetDefault("fetch_concurrency", DefaultFetchConcurrency)
	viper.SetDefault("http_timeout", DefaultHTTPTimeout)

	layout := sources.DefaultLayout()
	viper.SetDefault("features_file", layout.Features)
	viper.SetDefault("viewers_file", layout.Viewers)
	viper.SetDefault("feature_ref_file", layout.FeatureRef)
	viper.SetDefault("tool_ref_file", layout.ToolRef)
	viper.SetDefault("tools_index", layout.ToolsIndex)
	viper.SetDefault("tests_index", layout.TestsIndex)

	viper.SetDefault("server.host", defaults.Host)
	viper.SetDefault("server.port", defaults.Port)
	viper.SetDefault("server.path_prefix", defaults.PathPrefix)
	viper.SetDefault("server.cors", defaults.CORSEnabled)
	viper.SetDefault("server.cors_origins", defaults.CORSOrigins)
	viper.SetDefault("server.auth", defaults.AuthEnabled)
	viper.SetDefault("server.auth_header", defaults.AuthHeader)
	viper.SetDefault("server.rate_limit", defaults.RateLimit)
	viper.SetDefault("server.cache_ttl", defaults.CacheTTL)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local does not override .env: godotenv never replaces a variable
// that is already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
