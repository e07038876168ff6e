// Package cache keeps deal snapshots in Redis so that snapshot reads do not hit the database.
//
// The cache is strictly best effort. Command handlers invalidate entries after every commit
// that changes a deal, and query handlers fall back to the reader connection on any error.
// An invalidation also leaves a short-lived fence behind; while it exists Set is refused, so
// a read-through that loaded the deal before the write cannot put the old snapshot back.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultTTL bounds how stale a snapshot may get when an invalidation is lost.
	DefaultTTL = 30 * time.Second
	// DefaultFence covers the read-through window and the replica lag after a write.
	DefaultFence = 2 * time.Second

	keyPrefix   = "deal:snapshot:"
	fencePrefix = "deal:fence:"
)

// setUnlessFenced writes KEYS[1] unless the fence KEYS[2] exists. Returns 1 when written.
var setUnlessFenced = goredis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// Options selects the Redis server.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Connect opens a client and pings the server once.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// RedisStockCache stores JSON encoded deal snapshots under deal:snapshot:<id>.
type RedisStockCache struct {
	client goredis.Cmdable
	ttl    time.Duration
	fence  time.Duration
	logger *zap.Logger
}

var _ ports.StockCache = (*RedisStockCache)(nil)

// NewRedisStockCache wraps client. A non-positive ttl falls back to DefaultTTL.
func NewRedisStockCache(client goredis.Cmdable, ttl time.Duration, log *zap.Logger) *RedisStockCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStockCache{
		client: client,
		ttl:    ttl,
		fence:  DefaultFence,
		logger: logger.OrNop(log).With(zap.String("component", "stock_cache")),
	}
}

// WithFence returns a copy that fences invalidated deals for d. A non-positive d keeps the
// current fence.
func (c *RedisStockCache) WithFence(d time.Duration) *RedisStockCache {
	fenced := *c
	if d > 0 {
		fenced.fence = d
	}
	return &fenced
}

// Get returns false without an error on a miss.
func (c *RedisStockCache) Get(ctx context.Context, dealID kernel.UUID) (ports.DealSnapshot, bool, error) {
	data, err := c.client.Get(ctx, Key(dealID.String())).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ports.DealSnapshot{}, false, nil
	}
	if err != nil {
		return ports.DealSnapshot{}, false, err
	}

	var snapshot ports.DealSnapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("dropping undecodable snapshot", zap.Stringer("deal_id", dealID), zap.Error(err))
		_ = c.client.Del(ctx, Key(dealID.String())).Err()
		return ports.DealSnapshot{}, false, nil
	}
	return snapshot, true, nil
}

// Set stores snapshot unless its deal was invalidated within the fence window, in which case
// the write is skipped without an error.
func (c *RedisStockCache) Set(ctx context.Context, snapshot ports.DealSnapshot) error {
	if snapshot.ID == "" {
		return errors.New("snapshot without deal id")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	written, err := setUnlessFenced.Run(ctx, c.client,
		[]string{Key(snapshot.ID), fenceKey(snapshot.ID)},
		data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return err
	}
	if written == 0 {
		c.logger.Debug("skipped fenced snapshot", zap.String("deal_id", snapshot.ID))
	}
	return nil
}

// Invalidate deletes the snapshots of dealIDs and fences them, in one MULTI/EXEC.
func (c *RedisStockCache) Invalidate(ctx context.Context, dealIDs ...kernel.UUID) error {
	if len(dealIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(dealIDs))
	for _, id := range dealIDs {
		keys = append(keys, Key(id.String()))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, id := range dealIDs {
			pipe.Set(ctx, fenceKey(id.String()), 1, c.fence)
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.logger.Debug("invalidated deal snapshots", zap.Int("count", len(keys)))
	return nil
}

// Key is the Redis key of the snapshot of dealID.
func Key(dealID string) string {
	return keyPrefix + dealID
}

func fenceKey(dealID string) string {
	return fencePrefix + dealID
}

// NoopStockCache never hits. It is used when no Redis is configured.
type NoopStockCache struct{}

var _ ports.StockCache = NoopStockCache{}

func (NoopStockCache) Get(context.Context, kernel.UUID) (ports.DealSnapshot, bool, error) {
	return ports.DealSnapshot{}, false, nil
}

func (NoopStockCache) Set(context.Context, ports.DealSnapshot) error { return nil }

func (NoopStockCache) Invalidate(context.Context, ...kernel.UUID) error { return nil }
