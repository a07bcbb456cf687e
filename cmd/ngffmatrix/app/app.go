// Package app provides the application context and dependency management
// for the ngffmatrix CLI: configuration, logging and the lazily created
// matrix client shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	ngfftools "github.com/lubianat/ome-ngff-tools"
	"github.com/lubianat/ome-ngff-tools/internal/server"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
)

// App represents the ngffmatrix application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client ngfftools.Client
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment, .env files and the config
// file; functional options may replace any part of it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// ServerConfig returns the HTTP API settings.
func (a *App) ServerConfig() server.Config {
	return a.config.Server
}

// Client returns the matrix client. Without options the default client is
// created once and shared. With options a new client is built from the
// configured options followed by opts.
func (a *App) Client(opts ...ngfftools.Option) (ngfftools.Client, error) {
	if len(opts) > 0 {
		client, err := ngfftools.New(append(a.clientOptions(), opts...)...)
		if err != nil {
			return nil, errors.WrapResource("create", "client", "with custom options", err)
		}
		return client, nil
	}

	a.mu.RLock()
	if a.client != nil {
		client := a.client
		a.mu.RUnlock()
		return client, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	client, err := ngfftools.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.logger.Debug().Str("source", client.Source()).Msg("Matrix client ready")

	a.client = client
	return client, nil
}

// Shutdown ends the session. The client runs no background work, so there
// is nothing to stop.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	client := a.client
	a.mu.RUnlock()

	if client != nil {
		a.logger.Debug().Str("source", client.Source()).Msg("Shutting down")
	}
	return nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []ngfftools.Option {
	opts := []ngfftools.Option{
		ngfftools.WithLayout(a.config.Layout),
		ngfftools.WithConcurrency(a.config.FetchConcurrency),
		ngfftools.WithHTTPTimeout(a.config.HTTPTimeout),
	}

	if a.config.DataDir != "" {
		opts = append(opts, ngfftools.WithDataDir(a.config.DataDir))
	}
	if a.config.BaseURL != "" {
		opts = append(opts, ngfftools.WithBaseURL(a.config.BaseURL))
		if a.config.AuthToken != "" {
			opts = append(opts, ngfftools.WithAuth(a.config.AuthToken, a.config.AuthHeader))
		}
	}
	if a.config.UseEmbedded {
		opts = append(opts, ngfftools.WithEmbedded(true))
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "must not be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom matrix client (useful for testing).
func WithClient(client ngfftools.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
