package ratelimit

import (
	"context"
	"errors"
)

// ErrInvalidConfig is returned by limiter constructors when the window,
// limit or backing resources are unusable.
var ErrInvalidConfig = errors.New("ratelimit: invalid configuration")

// IsInvalidConfig reports whether err comes from limiter construction.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// Type identifies the limiter algorithm.
type Type uint32

const (
	SlidingWindowType Type = iota
	TokenBucketType
	RedisSlidingWindowType
)

func (t Type) String() string {
	switch t {
	case SlidingWindowType:
		return "sliding_window"
	case TokenBucketType:
		return "token_bucket"
	case RedisSlidingWindowType:
		return "redis_sliding_window"
	}
	return "unknown"
}

// Limiter grants permission to perform one rate-limited operation.
//
// Acquire blocks the caller until admission is possible or ctx ends. A nil
// return means exactly one admission was recorded; a non-nil return means the
// wait was aborted and nothing was recorded.
type Limiter interface {
	Acquire(ctx context.Context) error
	Type() Type
}
