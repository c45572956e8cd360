//go:build integration

package mappingcache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store/mappingcache"
	"collreg/internal/collections/store/memory"
	"collreg/pkg/testutil/containers"
)

type MappingCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *memory.Memory[models.Institution]
	cache *mappingcache.Cache[models.Institution]
	ctx   context.Context
}

func TestMappingCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MappingCacheSuite))
}

func (s *MappingCacheSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *MappingCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.store = memory.NewInstitutions()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.cache = mappingcache.New[models.Institution](s.store, "institution", s.redis.Client, time.Minute, logger, nil)
}

func (s *MappingCacheSuite) seedMapping(datasetKey uuid.UUID) models.Institution {
	institution := models.Institution{Key: uuid.New(), Code: "I1", Name: "Institution 1"}
	s.store.Put(institution)
	s.store.AddMapping(institution.Key, models.OccurrenceMapping{DatasetKey: datasetKey, Code: "RAW"})
	return institution
}

func (s *MappingCacheSuite) TestMissThenHit() {
	datasetKey := uuid.New()
	institution := s.seedMapping(datasetKey)

	found, err := s.cache.FindMappings(s.ctx, datasetKey, "RAW", "")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(institution.Key, found[0].Key)

	// The second read must be served from the cache. Wrapping an empty store
	// proves the store is no longer consulted.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cached := mappingcache.New[models.Institution](memory.NewInstitutions(), "institution", s.redis.Client, time.Minute, logger, nil)

	found, err = cached.FindMappings(s.ctx, datasetKey, " raw ", "")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(institution.Key, found[0].Key)
}

func (s *MappingCacheSuite) TestEmptyResultsAreCached() {
	datasetKey := uuid.New()

	found, err := s.cache.FindMappings(s.ctx, datasetKey, "unmapped", "")
	s.Require().NoError(err)
	s.Empty(found)

	// A mapping added after the negative read stays invisible until the
	// entry expires.
	s.seedMapping(datasetKey)
	found, err = s.cache.FindMappings(s.ctx, datasetKey, "unmapped", "")
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *MappingCacheSuite) TestEntriesExpire() {
	datasetKey := uuid.New()
	s.seedMapping(datasetKey)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	shortLived := mappingcache.New[models.Institution](s.store, "institution", s.redis.Client, 50*time.Millisecond, logger, nil)

	found, err := shortLived.FindMappings(s.ctx, datasetKey, "RAW", "")
	s.Require().NoError(err)
	s.Require().Len(found, 1)

	s.Eventually(func() bool {
		keys, err := s.redis.Client.Keys(s.ctx, "collreg:mapping:*").Result()
		return err == nil && len(keys) == 0
	}, 2*time.Second, 50*time.Millisecond)
}

func (s *MappingCacheSuite) TestCorruptEntryIsOverwritten() {
	datasetKey := uuid.New()
	institution := s.seedMapping(datasetKey)

	key := "collreg:mapping:institution:" + datasetKey.String() + ":raw:"
	s.Require().NoError(s.redis.Client.Set(s.ctx, key, "not json", time.Minute).Err())

	found, err := s.cache.FindMappings(s.ctx, datasetKey, "RAW", "")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(institution.Key, found[0].Key)

	cached, err := s.redis.Client.Get(s.ctx, key).Result()
	s.Require().NoError(err)
	s.NotEqual("not json", cached)
}

func (s *MappingCacheSuite) TestRedisFailureFallsBackToStore() {
	datasetKey := uuid.New()
	institution := s.seedMapping(datasetKey)

	broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer broken.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	degraded := mappingcache.New[models.Institution](s.store, "institution", broken, time.Minute, logger, nil)

	found, err := degraded.FindMappings(s.ctx, datasetKey, "RAW", "")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(institution.Key, found[0].Key)
}

func (s *MappingCacheSuite) TestOtherPredicatesPassThrough() {
	institution := models.Institution{Key: uuid.New(), Code: "I1", Name: "Institution 1"}
	s.store.Put(institution)

	found, err := s.cache.FindByCode(s.ctx, "I1")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(institution.Key, found[0].Entity.Key)
}
