package middleware

import (
	"context"
	"log/slog"

	"supaboard/internal/platform/metrics"
	"supaboard/internal/ratelimit/models"
	"supaboard/internal/ratelimit/store/bucket"
	"supaboard/pkg/platform/circuit"
)

// BucketStore counts requests per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

// Limiter checks a primary store and fails over to an in-process store while
// the primary is erroring.
type Limiter struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type LimiterOption func(*Limiter)

func WithFallback(store BucketStore) LimiterOption {
	return func(l *Limiter) { l.fallback = store }
}

func WithBreaker(b *circuit.Breaker) LimiterOption {
	return func(l *Limiter) { l.breaker = b }
}

func WithLimiterLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) { l.metrics = m }
}

// NewLimiter builds a Limiter over primary. Without WithFallback a fresh
// in-memory store is used.
func NewLimiter(primary BucketStore, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary: primary,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fallback == nil {
		l.fallback = bucket.New()
	}
	if l.breaker == nil {
		l.breaker = circuit.New("ratelimit")
	}
	return l
}

// Check reports whether one more request under key fits limit. degraded is
// true when the answer came from the fallback store.
func (l *Limiter) Check(ctx context.Context, key string, limit models.Limit) (result *models.Result, degraded bool, err error) {
	result, err = l.primary.Allow(ctx, key, limit)
	if err != nil {
		_, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.WarnContext(ctx, "rate limit store unavailable, using in-process fallback", "error", err)
		}
		return l.fromFallback(ctx, key, limit)
	}

	usePrimary, change := l.breaker.RecordSuccess()
	if change.Closed {
		l.logger.InfoContext(ctx, "rate limit store recovered")
	}
	if !usePrimary {
		return l.fromFallback(ctx, key, limit)
	}
	return result, false, nil
}

func (l *Limiter) fromFallback(ctx context.Context, key string, limit models.Limit) (*models.Result, bool, error) {
	l.metrics.IncRateLimitDegraded()
	result, err := l.fallback.Allow(ctx, key, limit)
	return result, true, err
}
