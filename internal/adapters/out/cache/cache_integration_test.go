package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"marketplace/internal/adapters/out/cache"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisStockCacheTestSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	client    *goredis.Client
	cache     *cache.RedisStockCache
}

func TestRedisStockCacheTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStockCacheTestSuite))
}

func (s *RedisStockCacheTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(s.ctx, "6379")
	s.Require().NoError(err)

	s.client, err = cache.Connect(s.ctx, cache.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	s.Require().NoError(err)
	s.cache = cache.NewRedisStockCache(s.client, time.Minute, nil)
}

func (s *RedisStockCacheTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RedisStockCacheTestSuite) SetupTest() {
	s.Require().NoError(s.client.FlushDB(s.ctx).Err())
}

func (s *RedisStockCacheTestSuite) snapshot() ports.DealSnapshot {
	return ports.DealSnapshot{
		ID:                 kernel.NewUUID().String(),
		ProductRef:         kernel.NewUUID().String(),
		OriginalPrice:      "20.00",
		DealPrice:          "15.00",
		DiscountPercentage: "25",
		Type:               "percentage",
		StartDate:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		MaxQuantity:        10,
		SoldQuantity:       4,
		IsActive:           true,
		Category:           "bakery",
		Tags:               []string{"fresh"},
	}
}

func (s *RedisStockCacheTestSuite) TestMissIsNotAnError() {
	_, ok, err := s.cache.Get(s.ctx, kernel.NewUUID())

	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStockCacheTestSuite) TestSetThenGet() {
	snapshot := s.snapshot()
	s.Require().NoError(s.cache.Set(s.ctx, snapshot))

	got, ok, err := s.cache.Get(s.ctx, kernel.MustUUIDFromString(snapshot.ID))

	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(snapshot, got)

	ttl, err := s.client.TTL(s.ctx, cache.Key(snapshot.ID)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisStockCacheTestSuite) TestInvalidateRemovesOnlyListedDeals() {
	kept, dropped := s.snapshot(), s.snapshot()
	s.Require().NoError(s.cache.Set(s.ctx, kept))
	s.Require().NoError(s.cache.Set(s.ctx, dropped))

	s.Require().NoError(s.cache.Invalidate(s.ctx, kernel.MustUUIDFromString(dropped.ID)))

	_, ok, err := s.cache.Get(s.ctx, kernel.MustUUIDFromString(dropped.ID))
	s.Require().NoError(err)
	s.False(ok)

	_, ok, err = s.cache.Get(s.ctx, kernel.MustUUIDFromString(kept.ID))
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStockCacheTestSuite) TestGarbageEntryIsDroppedAsMiss() {
	id := kernel.NewUUID()
	s.Require().NoError(s.client.Set(s.ctx, cache.Key(id.String()), "not json", time.Minute).Err())

	_, ok, err := s.cache.Get(s.ctx, id)

	s.Require().NoError(err)
	s.False(ok)
	exists, err := s.client.Exists(s.ctx, cache.Key(id.String())).Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *RedisStockCacheTestSuite) TestInvalidateFencesLateReadThrough() {
	fenced := s.cache.WithFence(400 * time.Millisecond)
	snapshot := s.snapshot()
	id := kernel.MustUUIDFromString(snapshot.ID)

	stale := snapshot
	stale.SoldQuantity = 3
	s.Require().NoError(fenced.Invalidate(s.ctx, id))
	s.Require().NoError(fenced.Set(s.ctx, stale))

	_, ok, err := fenced.Get(s.ctx, id)
	s.Require().NoError(err)
	s.False(ok, "a snapshot loaded before the invalidation must not be cached")

	s.Eventually(func() bool {
		if err := fenced.Set(s.ctx, snapshot); err != nil {
			return false
		}
		_, ok, err := fenced.Get(s.ctx, id)
		return err == nil && ok
	}, 5*time.Second, 100*time.Millisecond)

	got, ok, err := fenced.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(4, got.SoldQuantity)
}

func (s *RedisStockCacheTestSuite) TestFenceIsPerDeal() {
	touched, untouched := s.snapshot(), s.snapshot()

	s.Require().NoError(s.cache.Invalidate(s.ctx, kernel.MustUUIDFromString(touched.ID)))
	s.Require().NoError(s.cache.Set(s.ctx, untouched))

	_, ok, err := s.cache.Get(s.ctx, kernel.MustUUIDFromString(untouched.ID))
	s.Require().NoError(err)
	s.True(ok)
}
