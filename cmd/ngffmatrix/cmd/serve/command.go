// Package serve provides the command that runs the HTTP JSON API.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/application"
	"github.com/lubianat/ome-ngff-tools/internal/server"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "management",
		Short:   "Serve the matrix over a JSON HTTP API",
		Long: `Start an HTTP server exposing the compatibility matrix.

Endpoints (under the path prefix, /api/v1 by default):
  GET  /health, {prefix}/health, {prefix}/ready
  GET  {prefix}/versions
  GET  {prefix}/matrix, {prefix}/matrix/{version}   ?tool=&status=&feature=
  GET  {prefix}/tools
  GET  {prefix}/tests                               ?tool=&status=&feature=
  POST {prefix}/reload    rebuild from the data source
  GET  {prefix}/stats     cache statistics

Built values are cached for --cache-ttl. With --auth, reload and stats
require the API key in the --auth-header header or as a bearer token.`,
		Example: `  ngffmatrix serve --port 3000
  ngffmatrix serve --data-dir ./ome-ngff-tools --cache-ttl 1m
  SERVER_API_KEY=secret ngffmatrix serve --auth`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := Config(cmd, app.ServerConfig())
			client, err := app.Client()
			if err != nil {
				return err
			}

			logger := app.Logger()
			srv, err := server.New(client, cfg, logger)
			if err != nil {
				return err
			}

			logger.Debug().
				Str("prefix", cfg.PathPrefix).
				Bool("cors", cfg.CORSEnabled).
				Bool("auth", cfg.AuthEnabled).
				Int("rate_limit", cfg.RateLimit).
				Dur("cache_ttl", cfg.CacheTTL).
				Msg("Server configuration")
			return srv.ListenAndServe(cmd.Context())
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("cors", defaults.CORSEnabled, "Enable CORS")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated, default all)")
	cmd.Flags().Bool("auth", defaults.AuthEnabled, "Require an API key for the admin endpoints")
	cmd.Flags().String("auth-header", defaults.AuthHeader, "Authentication header name")
	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "How long a built matrix is served from cache")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// Config overlays the flags the user set on base, so unset flags keep the
// configured values.
func Config(cmd *cobra.Command, base server.Config) server.Config {
	cfg := base
	flags := cmd.Flags()

	// These flags are defined in NewCommand, so lookups cannot fail.
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("prefix") {
		cfg.PathPrefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("cors") {
		cfg.CORSEnabled, _ = flags.GetBool("cors")
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
	}
	if flags.Changed("auth") {
		cfg.AuthEnabled, _ = flags.GetBool("auth")
	}
	if flags.Changed("auth-header") {
		cfg.AuthHeader, _ = flags.GetString("auth-header")
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout, _ = flags.GetDuration("read-timeout")
	}
	if flags.Changed("write-timeout") {
		cfg.WriteTimeout, _ = flags.GetDuration("write-timeout")
	}
	if flags.Changed("idle-timeout") {
		cfg.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	}
	return cfg
}
