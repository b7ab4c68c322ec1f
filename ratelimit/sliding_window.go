package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ Limiter = &SlidingWindow{}

// admission is one granted request inside the trailing window.
type admission struct {
	id uuid.UUID
	at time.Time
}

// SlidingWindow admits at most limit callers in any trailing window interval.
//
// The window moves continuously with the clock: an admission at time T counts
// against every interval ending in (T, T+window]. All state lives in this
// process; use RedisSlidingWindow when several processes must share one quota.
type SlidingWindow struct {
	mu  sync.Mutex
	log []admission

	window time.Duration
	limit  int

	now     func() time.Time
	logger  *zap.Logger
	metrics *Metrics
}

type SlidingWindowOption func(*SlidingWindow)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) SlidingWindowOption {
	return func(s *SlidingWindow) { s.now = now }
}

func WithLogger(l *zap.Logger) SlidingWindowOption {
	return func(s *SlidingWindow) { s.logger = l }
}

func WithMetrics(m *Metrics) SlidingWindowOption {
	return func(s *SlidingWindow) { s.metrics = m }
}

// NewSlidingWindow creates an in-memory trailing-window limiter.
func NewSlidingWindow(window time.Duration, limit int, opts ...SlidingWindowOption) (*SlidingWindow, error) {
	if window <= 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: window=%s limit=%d", ErrInvalidConfig, window, limit)
	}

	s := &SlidingWindow{
		window: window,
		limit:  limit,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SlidingWindow) Type() Type { return SlidingWindowType }

// Acquire blocks until the trailing window has room, then records exactly one
// admission. The lock is never held while sleeping: a waiter computes how long
// the oldest admission needs to leave the window, releases the lock, sleeps,
// and re-checks, so other callers are not starved behind it. Wakes re-compete,
// so admission order among waiters is best-effort FIFO only.
//
// When ctx ends mid-wait the error wraps ctx.Err() and no admission is
// recorded.
func (s *SlidingWindow) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ratelimit: acquire aborted: %w", err)
	}

	start := s.now()
	for {
		s.mu.Lock()
		now := s.now()
		s.expire(now)

		if len(s.log) < s.limit {
			s.log = append(s.log, admission{id: uuid.New(), at: now})
			inWindow := len(s.log)
			s.mu.Unlock()

			if s.metrics != nil {
				s.metrics.admissions.Inc()
				s.metrics.inWindow.Set(float64(inWindow))
				s.metrics.waitSeconds.Observe(now.Sub(start).Seconds())
			}
			return nil
		}

		// after expire the oldest entry is strictly inside the window,
		// so wait is always > 0 here
		wait := s.window - now.Sub(s.log[0].at)
		s.mu.Unlock()

		s.logger.Debug("window full, waiting for capacity",
			zap.Duration("wait", wait),
			zap.Int("limit", s.limit))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("ratelimit: acquire aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// expire drops admissions that have left the trailing window. Caller holds mu.
func (s *SlidingWindow) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.log) && !s.log[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		s.log = append(s.log[:0], s.log[i:]...)
	}
}

// InWindow reports how many admissions are currently inside the window.
func (s *SlidingWindow) InWindow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(s.now())
	return len(s.log)
}
