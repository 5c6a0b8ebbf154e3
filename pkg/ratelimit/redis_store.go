package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sliding windows in Redis sorted sets so multiple instances
// can enforce one shared budget. Opting in trades the zero-dependency memory
// store for cross-instance accuracy; everything else about the limiter is
// unchanged.
//
// Each key maps to a sorted set whose members are individual requests scored
// by their unix-milli timestamp. Millisecond scores stay well inside float64
// integer range, so Lua arithmetic on them is exact. Eviction, check, and
// append run in a single Lua script, which gives the same per-key atomicity
// the memory store gets from its mutex.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// Atomically: evict entries older than the window start, deny when the live
// count has reached the limit, otherwise record the new request. Returns
// {allowed, count, oldestScore}.
var recordIfAllowed = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]
local ttlMs = tonumber(ARGV[5])

redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. windowStart)

local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, ttlMs)
	allowed = 1
	count = count + 1
end

local oldest = 0
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
	oldest = tonumber(first[2])
end

return {allowed, count, oldest}
`)

// NewRedisStore creates a store backed by the given Redis client. The prefix
// namespaces limiter keys within a shared database; it defaults to
// "ratelimit".
func NewRedisStore(client redis.UniversalClient, keyPrefix string) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}
	if keyPrefix == "" {
		keyPrefix = "ratelimit"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

// RecordIfAllowed implements Store.
func (s *RedisStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, time.Time, error) {
	// A unique member disambiguates requests landing on the same millisecond.
	member := fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString())

	res, err := recordIfAllowed.Run(ctx, s.client, []string{s.key(key)},
		now.UnixMilli(),
		now.Add(-window).UnixMilli(),
		limit,
		member,
		window.Milliseconds(),
	).Slice()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("ratelimit: redis record: %w", err)
	}
	if len(res) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("ratelimit: redis record: unexpected reply %v", res)
	}

	allowed := toInt64(res[0]) == 1
	count := int(toInt64(res[1]))
	oldest := millisToTime(toInt64(res[2]))

	return allowed, count, oldest, nil
}

// CountInWindow implements Store.
func (s *RedisStore) CountInWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	rkey := s.key(key)
	windowStart := fmt.Sprintf("%d", now.Add(-window).UnixMilli())

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "-inf", "("+windowStart)
	card := pipe.ZCard(ctx, rkey)
	first := pipe.ZRangeWithScores(ctx, rkey, 0, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit: redis count: %w", err)
	}

	var oldest time.Time
	if members := first.Val(); len(members) > 0 {
		oldest = millisToTime(int64(members[0].Score))
	}

	return int(card.Val()), oldest, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis delete: %w", err)
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	return s.keyPrefix + ":" + key
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case string:
		var out int64
		fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
