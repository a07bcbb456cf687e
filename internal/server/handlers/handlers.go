// Package handlers provides HTTP request handlers for the matrix API.
package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	ngfftools "github.com/lubianat/ome-ngff-tools"
	"github.com/lubianat/ome-ngff-tools/internal/server/cache"
	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client    ngfftools.Client
	cache     *cache.Cache
	logger    *zerolog.Logger
	startTime time.Time
}

// New creates a new Handlers instance.
func New(client ngfftools.Client, cache *cache.Cache, logger *zerolog.Logger, startTime time.Time) *Handlers {
	return &Handlers{
		client:    client,
		cache:     cache,
		logger:    logger,
		startTime: startTime,
	}
}

// matrix returns the cached matrix, building it on a miss.
func (h *Handlers) matrix(ctx context.Context) (*matrix.Matrix, error) {
	v, cached, err := h.cache.Remember(cache.KeyMatrix, func() (any, error) {
		return h.client.Matrix(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if cached {
		h.logger.Debug().Msg("serving cached matrix")
	}
	return v.(*matrix.Matrix), nil
}

// tests returns the cached aggregation of dated test documents.
func (h *Handlers) tests(ctx context.Context) ([]matrix.Entry, error) {
	v, _, err := h.cache.Remember(cache.KeyTests, func() (any, error) {
		return h.client.Tests(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.([]matrix.Entry), nil
}
