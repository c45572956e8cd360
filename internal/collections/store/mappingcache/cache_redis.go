// Package mappingcache decorates a lookup store with a Redis read-through
// cache for occurrence mapping queries. Mapping lookups run on every request
// that carries a dataset key while curators change mappings rarely, so a
// short TTL removes most of the database traffic without meaningful
// staleness.
//
// The cache degrades, never fails: any Redis error falls back to the wrapped
// store.
package mappingcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store"
)

// Metrics counts cache effectiveness per entity type.
type Metrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewMetrics creates and registers the mapping cache metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Hits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collreg_mapping_cache_hits_total",
			Help: "Mapping cache hits by entity type",
		}, []string{"entity"}),
		Misses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collreg_mapping_cache_misses_total",
			Help: "Mapping cache misses by entity type",
		}, []string{"entity"}),
		Errors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collreg_mapping_cache_errors_total",
			Help: "Mapping cache degradations by entity type",
		}, []string{"entity"}),
	}
}

func (m *Metrics) hit(entity string) {
	if m != nil {
		m.Hits.WithLabelValues(entity).Inc()
	}
}

func (m *Metrics) miss(entity string) {
	if m != nil {
		m.Misses.WithLabelValues(entity).Inc()
	}
}

func (m *Metrics) degraded(entity string) {
	if m != nil {
		m.Errors.WithLabelValues(entity).Inc()
	}
}

// Cache wraps a lookup store; only FindMappings is cached, every other
// predicate passes through.
type Cache[T models.Entity] struct {
	store.Store[T]

	entity  string
	redis   redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// New wraps the given store. entity names the entity type in cache keys and
// metrics labels.
func New[T models.Entity](wrapped store.Store[T], entity string, client redis.Cmdable, ttl time.Duration, logger *slog.Logger, m *Metrics) *Cache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[T]{
		Store:   wrapped,
		entity:  entity,
		redis:   client,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

func (c *Cache[T]) FindMappings(ctx context.Context, datasetKey uuid.UUID, code, identifier string) ([]T, error) {
	key := c.cacheKey(datasetKey, code, identifier)

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var entities []T
		if err := json.Unmarshal([]byte(cached), &entities); err == nil {
			c.metrics.hit(c.entity)
			return entities, nil
		}
		// A corrupt entry behaves like a miss and gets overwritten below.
		c.logger.WarnContext(ctx, "discarding corrupt mapping cache entry", "key", key)
	case err != redis.Nil:
		c.metrics.degraded(c.entity)
		c.logger.WarnContext(ctx, "mapping cache read failed, serving from store",
			"key", key,
			"error", err.Error(),
		)
		return c.Store.FindMappings(ctx, datasetKey, code, identifier)
	}

	c.metrics.miss(c.entity)
	entities, err := c.Store.FindMappings(ctx, datasetKey, code, identifier)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entities)
	if err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.metrics.degraded(c.entity)
			c.logger.WarnContext(ctx, "mapping cache write failed",
				"key", key,
				"error", err.Error(),
			)
		}
	}
	return entities, nil
}

func (c *Cache[T]) cacheKey(datasetKey uuid.UUID, code, identifier string) string {
	normalize := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return fmt.Sprintf("collreg:mapping:%s:%s:%s:%s", c.entity, datasetKey, normalize(code), normalize(identifier))
}
