package ngfftools

import (
	"net/http"
	"net/url"
	"time"

	"github.com/lubianat/ome-ngff-tools/internal/transport"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
	"github.com/lubianat/ome-ngff-tools/pkg/sources"
)

// Option is a function that configures a Client.
type Option func(*config) error

type config struct {
	reader      sources.Reader
	useEmbedded bool
	baseURL     string
	dataDir     string

	layout      *sources.Layout
	concurrency int

	httpClient *http.Client
	timeout    time.Duration
	auth       transport.Authenticator
}

func defaultConfig() *config {
	return &config{
		timeout: transport.DefaultHTTPTimeout,
		auth:    &transport.NoAuth{},
	}
}

// WithReader reads documents through r. It takes precedence over every other
// source option.
func WithReader(r sources.Reader) Option {
	return func(c *config) error {
		if r == nil {
			return errors.NewValidationError("reader", nil, "reader cannot be nil")
		}
		c.reader = r
		return nil
	}
}

// WithEmbedded reads the sample dataset compiled into the binary.
func WithEmbedded(enabled bool) Option {
	return func(c *config) error {
		c.useEmbedded = enabled
		return nil
	}
}

// WithBaseURL reads documents from a published site.
func WithBaseURL(baseURL string) Option {
	return func(c *config) error {
		if baseURL == "" {
			return nil
		}
		u, err := url.Parse(baseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.NewValidationError("base_url", baseURL, "must be an absolute http or https URL")
		}
		c.baseURL = baseURL
		return nil
	}
}

// WithDataDir reads documents from a local checkout of the data tree.
func WithDataDir(dir string) Option {
	return func(c *config) error {
		c.dataDir = dir
		return nil
	}
}

// WithLayout overrides where documents live in the data tree.
func WithLayout(layout sources.Layout) Option {
	return func(c *config) error {
		c.layout = &layout
		return nil
	}
}

// WithConcurrency sets how many documents are fetched at once.
func WithConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewValidationError("fetch_concurrency", n, "must be at least 1")
		}
		c.concurrency = n
		return nil
	}
}

// WithHTTPClient sets the HTTP client used with WithBaseURL.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithHTTPTimeout sets the timeout of remote document requests.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return errors.NewValidationError("http_timeout", d, "must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithAuth authenticates remote document requests. An empty token disables
// authentication; an empty header sends a bearer token.
func WithAuth(token, header string) Option {
	return func(c *config) error {
		c.auth = transport.AuthFor(token, header)
		return nil
	}
}
