package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return client
}

func TestNewRedisSlidingWindowValidation(t *testing.T) {
	client := newTestRedis(t)

	var tests = []struct {
		name   string
		client *redis.Client
		key    string
		window time.Duration
		limit  int
	}{
		{
			name:   "rejects nil client",
			client: nil,
			key:    "quota",
			window: time.Second,
			limit:  1,
		},
		{
			name:   "rejects empty key",
			client: client,
			key:    "",
			window: time.Second,
			limit:  1,
		},
		{
			name:   "rejects zero window",
			client: client,
			key:    "quota",
			window: 0,
			limit:  1,
		},
		{
			name:   "rejects zero limit",
			client: client,
			key:    "quota",
			window: time.Second,
			limit:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRedisSlidingWindow(tt.client, tt.key, tt.window, tt.limit)
			assert.Nil(t, r)
			assert.True(t, IsInvalidConfig(err))
		})
	}
}

func TestRedisAcquireUnderLimit(t *testing.T) {
	client := newTestRedis(t)

	r, err := NewRedisSlidingWindow(client, "quota", time.Second, 5)
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Acquire(ctx))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	n, err := r.InWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRedisAcquireBlocksUntilOldestExpires(t *testing.T) {
	const window = 300 * time.Millisecond

	client := newTestRedis(t)

	r, err := NewRedisSlidingWindow(client, "quota", window, 2)
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, r.Acquire(ctx))
	require.NoError(t, r.Acquire(ctx))
	require.NoError(t, r.Acquire(ctx))
	assert.GreaterOrEqual(t, time.Since(start), window-jitter)
}

func TestRedisAcquireNoLossNoDuplication(t *testing.T) {
	const callers = 20

	client := newTestRedis(t)

	r, err := NewRedisSlidingWindow(client, "quota", 2*time.Second, callers)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Acquire(context.Background()))
		}()
	}
	wg.Wait()

	n, err := client.ZCard(context.Background(), "quota").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(callers), n)
}

func TestRedisAcquireCancelledWhileWaiting(t *testing.T) {
	client := newTestRedis(t)

	r, err := NewRedisSlidingWindow(client, "quota", time.Second, 1)
	require.NoError(t, err)

	require.NoError(t, r.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = r.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// the denied attempt must not leave its member in the set
	n, err := client.ZCard(context.Background(), "quota").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
