// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
)

// # Channel Stats Cache

// RedisStatsCache implements StatsCache using Redis.
//
// Counters are stored as a small JSON document under a per-channel key so a
// single round trip hydrates both values.
type RedisStatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new Redis-backed StatsCache.
func NewStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

/*
GetChannelStats returns the cached counters for a channel.

Description: Returns apperr.NotFound on a cache miss so callers can
distinguish "not cached" from connectivity failures.

Parameters:
  - context: context.Context
  - channelID: string

Returns:
  - *ChannelStats: Cached counters
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisStatsCache) GetChannelStats(context context.Context, channelID string) (*ChannelStats, error) {

	// Use constants for key prefix
	key := constants.RedisPrefixChannelStats + channelID

	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Channel stats")
		}
		return nil, fmt.Errorf("redis_channel_stats_get_failed: %w", err)
	}

	stats := &ChannelStats{}
	if err := json.Unmarshal(payload, stats); err != nil {
		return nil, fmt.Errorf("redis_channel_stats_decode_failed: %w", err)
	}

	return stats, nil
}

/*
SetChannelStats caches the counters for a channel with a TTL.

Parameters:
  - context: context.Context
  - channelID: string
  - stats: *ChannelStats
  - ttl: time.Duration

Returns:
  - error: Encoding or connectivity errors
*/
func (cache *RedisStatsCache) SetChannelStats(context context.Context, channelID string, stats *ChannelStats, ttl time.Duration) error {

	// Use constants for key prefix
	key := constants.RedisPrefixChannelStats + channelID

	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis_channel_stats_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_channel_stats_set_failed: %w", err)
	}

	return nil
}
