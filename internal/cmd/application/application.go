// Package application provides the application interface for ngffmatrix commands.
//
// Commands accept an Application instead of the concrete app type, so they can
// be exercised in tests with a Mock:
//
//	mock := &application.Mock{
//	    ClientFunc: func(opts ...ngfftools.Option) (ngfftools.Client, error) {
//	        return ngfftools.New(append(opts, ngfftools.WithEmbedded(true))...)
//	    },
//	}
//	cmd := matrix.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	ngfftools "github.com/lubianat/ome-ngff-tools"
	"github.com/lubianat/ome-ngff-tools/internal/server"
)

// Application provides what commands need from the CLI application.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the matrix client built from the configuration. The
	// default client is created once and reused; passing options builds a
	// fresh client with those options applied after the configured ones.
	Client(opts ...ngfftools.Option) (ngfftools.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// ServerConfig returns the HTTP server settings from the configuration.
	ServerConfig() server.Config

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// Mock is an Application backed by functions, for command tests.
type Mock struct {
	ClientFunc func(opts ...ngfftools.Option) (ngfftools.Client, error)
	LoggerFunc func() *zerolog.Logger
	Format     string
	Server     server.Config
}

// Client implements Application.
func (m *Mock) Client(opts ...ngfftools.Option) (ngfftools.Client, error) {
	if m.ClientFunc == nil {
		return ngfftools.New(append([]ngfftools.Option{ngfftools.WithEmbedded(true)}, opts...)...)
	}
	return m.ClientFunc(opts...)
}

// Logger implements Application.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc == nil {
		logger := zerolog.Nop()
		return &logger
	}
	return m.LoggerFunc()
}

// OutputFormat implements Application.
func (m *Mock) OutputFormat() string { return m.Format }

// ServerConfig implements Application.
func (m *Mock) ServerConfig() server.Config {
	if m.Server.Port == 0 {
		return server.DefaultConfig()
	}
	return m.Server
}

// Version implements Application.
func (m *Mock) Version() string { return "test" }

// Commit implements Application.
func (m *Mock) Commit() string { return "none" }

// Date implements Application.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy implements Application.
func (m *Mock) BuiltBy() string { return "test" }
