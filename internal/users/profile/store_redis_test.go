// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/users/profile"
)

// newTestStatsCache backs the cache with an in-process Redis server.
func newTestStatsCache(t *testing.T) (*profile.RedisStatsCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return profile.NewStatsCache(client), server
}

/*
TestRedisStatsCache_RoundTrip verifies counters survive the store and load.
*/
func TestRedisStatsCache_RoundTrip(t *testing.T) {
	cache, _ := newTestStatsCache(t)

	stats := &profile.ChannelStats{SubscriberCount: 42, SubscribedToCount: 7}
	require.NoError(t, cache.SetChannelStats(context.Background(), "channel-1", stats, time.Minute))

	loaded, err := cache.GetChannelStats(context.Background(), "channel-1")
	require.NoError(t, err)
	assert.Equal(t, stats, loaded)
}

/*
TestRedisStatsCache_Miss verifies an uncached channel reads as not found.
*/
func TestRedisStatsCache_Miss(t *testing.T) {
	cache, _ := newTestStatsCache(t)

	_, err := cache.GetChannelStats(context.Background(), "channel-unknown")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestRedisStatsCache_Expiry verifies entries disappear once their TTL elapses.
*/
func TestRedisStatsCache_Expiry(t *testing.T) {
	cache, server := newTestStatsCache(t)

	stats := &profile.ChannelStats{SubscriberCount: 1}
	require.NoError(t, cache.SetChannelStats(context.Background(), "channel-1", stats, time.Minute))

	server.FastForward(2 * time.Minute)

	_, err := cache.GetChannelStats(context.Background(), "channel-1")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestRedisStatsCache_KeyIsolation verifies channels never read each other's
counters.
*/
func TestRedisStatsCache_KeyIsolation(t *testing.T) {
	cache, _ := newTestStatsCache(t)

	require.NoError(t, cache.SetChannelStats(context.Background(), "channel-1",
		&profile.ChannelStats{SubscriberCount: 1}, time.Minute))
	require.NoError(t, cache.SetChannelStats(context.Background(), "channel-2",
		&profile.ChannelStats{SubscriberCount: 2}, time.Minute))

	first, err := cache.GetChannelStats(context.Background(), "channel-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.SubscriberCount)

	second, err := cache.GetChannelStats(context.Background(), "channel-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.SubscriberCount)
}
