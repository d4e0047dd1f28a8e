// Package statscache keeps the last computed product statistics in the shared cache.
package statscache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mo-amir99/coursetrack-server-go/pkg/cache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/metrics"
)

// Key is the cache entry holding the statistics of every product.
const Key = "stats:products"

// Service reads, stores and invalidates cached statistics.
// A nil *Service is valid and caches nothing.
type Service struct {
	cache  cache.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds a statistics cache service. A non-positive ttl disables caching.
func NewService(client cache.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{cache: client, ttl: ttl, logger: logger}
}

// Load decodes the cached statistics into dest and reports whether they were present.
func (s *Service) Load(ctx context.Context, dest interface{}) bool {
	if !s.enabled() {
		return false
	}

	err := cache.GetJSON(ctx, s.cache, Key, dest)
	switch {
	case err == nil:
		metrics.StatisticsCache(true)
		return true
	case errors.Is(err, cache.ErrMiss):
	default:
		s.logger.Warn("failed to read statistics cache", "error", err)
	}

	metrics.StatisticsCache(false)
	return false
}

// Store caches freshly computed statistics.
func (s *Service) Store(ctx context.Context, value interface{}) {
	if !s.enabled() {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, Key, value, s.ttl); err != nil {
		s.logger.Warn("failed to write statistics cache", "error", err)
	}
}

// Invalidate drops the cached statistics after a write that changes them.
func (s *Service) Invalidate(ctx context.Context) {
	if !s.enabled() {
		return
	}
	if err := s.cache.Delete(ctx, Key); err != nil {
		s.logger.Warn("failed to invalidate statistics cache", "error", err)
	}
}

func (s *Service) enabled() bool {
	return s != nil && s.cache != nil && s.ttl > 0
}
