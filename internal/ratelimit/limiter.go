package ratelimit

import (
	"context"
	"time"
)

// Clock is injected so windows can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Store counts hits for a key inside a sliding window. Hit records the
// attempt and returns the number of hits in the window including it, plus
// the time the oldest of them was made.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (count int, oldest time.Time, err error)
}

type Config struct {
	Requests int
	Window   time.Duration
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter throttles requests per client key.
type Limiter struct {
	store Store
	clock Clock
	cfg   Config
}

func New(store Store, clock Clock, cfg Config) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.Requests <= 0 {
		cfg.Requests = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Limiter{store: store, clock: clock, cfg: cfg}
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.clock.Now()
	count, oldest, err := l.store.Hit(ctx, key, now, l.cfg.Window)
	if err != nil {
		return Decision{Allowed: true}, err
	}

	if count > l.cfg.Requests {
		retry := oldest.Add(l.cfg.Window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	return Decision{Allowed: true, Remaining: l.cfg.Requests - count}, nil
}
