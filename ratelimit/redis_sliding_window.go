package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Limiter = &RedisSlidingWindow{}

// minPoll floors the re-check interval so a waiter near the window edge does
// not hammer Redis.
const minPoll = 10 * time.Millisecond

// RedisSlidingWindow enforces one trailing-window quota shared by every
// process pointed at the same key. Admissions live in a sorted set scored by
// their millisecond timestamp, one uuid member per admission.
type RedisSlidingWindow struct {
	client *redis.Client
	key    string
	window time.Duration
	limit  int

	now    func() time.Time
	logger *zap.Logger
}

type RedisSlidingWindowOption func(*RedisSlidingWindow)

func WithRedisClock(now func() time.Time) RedisSlidingWindowOption {
	return func(r *RedisSlidingWindow) { r.now = now }
}

func WithRedisLogger(l *zap.Logger) RedisSlidingWindowOption {
	return func(r *RedisSlidingWindow) { r.logger = l }
}

func NewRedisSlidingWindow(client *redis.Client, key string, window time.Duration, limit int, opts ...RedisSlidingWindowOption) (*RedisSlidingWindow, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrInvalidConfig)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidConfig)
	}
	if window <= 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: window=%s limit=%d", ErrInvalidConfig, window, limit)
	}

	r := &RedisSlidingWindow{
		client: client,
		key:    key,
		window: window,
		limit:  limit,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *RedisSlidingWindow) Type() Type { return RedisSlidingWindowType }

// Acquire blocks until the shared window has room. Same contract as the
// in-memory limiter: one sorted-set member per completed call, none when the
// wait is aborted.
func (r *RedisSlidingWindow) Acquire(ctx context.Context) error {
	for {
		admitted, wait, err := r.tryAdmit(ctx)
		if err != nil {
			return err
		}
		if admitted {
			return nil
		}
		if wait < minPoll {
			wait = minPoll
		}

		r.logger.Debug("shared window full, waiting for capacity",
			zap.String("key", r.key),
			zap.Duration("wait", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("ratelimit: acquire aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// tryAdmit runs one expire-add-count round against the sorted set. When the
// set ends up over the limit it removes its own member again, so a denied
// attempt never consumes shared capacity, and reports how long the caller
// should wait for the oldest admission to leave the window.
func (r *RedisSlidingWindow) tryAdmit(ctx context.Context) (bool, time.Duration, error) {
	now := r.now()
	cutoff := strconv.FormatInt(now.Add(-r.window).UnixMilli(), 10)
	member := uuid.New().String()

	p := r.client.Pipeline()
	p.ZRemRangeByScore(ctx, r.key, "0", cutoff)
	p.ZAdd(ctx, r.key, redis.Z{Member: member, Score: float64(now.UnixMilli())})
	count := p.ZCard(ctx, r.key)
	p.PExpire(ctx, r.key, r.window)
	if _, err := p.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis pipeline: %w", err)
	}

	if int(count.Val()) <= r.limit {
		return true, 0, nil
	}

	if err := r.client.ZRem(ctx, r.key, member).Err(); err != nil {
		return false, 0, fmt.Errorf("ratelimit: undo admission: %w", err)
	}

	oldest, err := r.client.ZRangeWithScores(ctx, r.key, 0, 0).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: read oldest admission: %w", err)
	}
	if len(oldest) == 0 {
		// the set emptied out under us, retry immediately
		return false, 0, nil
	}

	oldestAt := time.UnixMilli(int64(oldest[0].Score))
	return false, r.window - now.Sub(oldestAt), nil
}

// InWindow reports how many admissions are currently inside the shared window.
func (r *RedisSlidingWindow) InWindow(ctx context.Context) (int, error) {
	cutoff := strconv.FormatInt(r.now().Add(-r.window).UnixMilli(), 10)
	n, err := r.client.ZCount(ctx, r.key, "("+cutoff, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: count admissions: %w", err)
	}
	return int(n), nil
}
