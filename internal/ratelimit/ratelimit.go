// Package ratelimit paces calls to the generative AI service and enforces a
// per-window request budget.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrBudgetExhausted means the per-window request budget is used up.
var ErrBudgetExhausted = errors.New("AI request budget exhausted")

const budgetWindow = 24 * time.Hour

// Limiter is a token bucket for pacing plus a daily request counter.
type Limiter struct {
	bucket *rate.Limiter
	clock  Clock
	log    *slog.Logger

	mu          sync.Mutex
	maxRequests int
	used        int
	resetTime   time.Time
	throttled   int
	waited      time.Duration
}

// Config parameterizes a Limiter. RequestsPerSecond <= 0 disables pacing and
// MaxRequests <= 0 disables the budget.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	MaxRequests       int
}

func New(cfg Config, clock Clock, log *slog.Logger) *Limiter {
	if clock == nil {
		clock = RealClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		bucket:      rate.NewLimiter(limit, burst),
		clock:       clock,
		log:         log,
		maxRequests: cfg.MaxRequests,
		resetTime:   clock.Now().Add(budgetWindow),
	}
}

// Reserve claims the next slot and returns how long the caller must wait
// before using it. Callers that reserve in order get slots in that order.
func (l *Limiter) Reserve() time.Duration {
	now := l.clock.Now()
	r := l.bucket.ReserveN(now, 1)
	if !r.OK() {
		return 0
	}
	d := r.DelayFrom(now)
	if d > 0 {
		l.mu.Lock()
		l.throttled++
		l.waited += d
		l.mu.Unlock()
	}
	return d
}

// Wait blocks on the clock until the next slot is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.Pause(ctx, l.Reserve())
}

// Pause sleeps for d on the limiter's clock.
func (l *Limiter) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if err := l.clock.Sleep(ctx, d); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// Acquire counts one request against the budget.
func (l *Limiter) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if l.maxRequests > 0 && l.used >= l.maxRequests {
		return ErrBudgetExhausted
	}
	l.used++
	l.log.Debug("AI usage", "used", l.used, "limit", l.maxRequests)
	return nil
}

// Remaining reports how many requests are left in the window, or -1 when unlimited.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	if l.maxRequests <= 0 {
		return -1
	}
	return l.maxRequests - l.used
}

// Stats is a snapshot of limiter usage.
type Stats struct {
	Used      int           `json:"used"`
	Limit     int           `json:"limit"`
	Throttled int           `json:"throttled"`
	Waited    time.Duration `json:"waited_ns"`
	ResetTime time.Time     `json:"reset_time"`
}

func (l *Limiter) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Stats{
		Used:      l.used,
		Limit:     l.maxRequests,
		Throttled: l.throttled,
		Waited:    l.waited,
		ResetTime: l.resetTime,
	}
}

// checkReset resets counters if reset time has passed. Caller holds mu.
func (l *Limiter) checkReset() {
	now := l.clock.Now()
	if now.After(l.resetTime) {
		l.log.Info("resetting AI request budget", "used", l.used, "limit", l.maxRequests)
		l.used = 0
		l.resetTime = now.Add(budgetWindow)
	}
}
