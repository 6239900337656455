// Package middleware throttles routes per client IP.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"supaboard/internal/platform/metrics"
	"supaboard/internal/ratelimit/models"
	"supaboard/pkg/platform/httputil"
	metadata "supaboard/pkg/platform/middleware/metadata"
)

const headerStatus = "X-RateLimit-Status"

type Middleware struct {
	limiter  *Limiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMiddlewareMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(limiter *Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests of class per client IP. A store failure with no
// usable fallback lets the request through.
func (m *Middleware) RateLimit(class models.EndpointClass, limit models.Limit) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := metadata.GetClientIP(ctx)
			if ip == "" {
				ip = metadata.ClientIPFromRequest(r, nil)
			}

			result, degraded, err := m.limiter.Check(ctx, models.Key(class, ip), limit)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed", "error", err, "class", class)
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result)
			if degraded {
				w.Header().Set(headerStatus, "degraded")
			}

			if !result.Allowed {
				m.metrics.IncRateLimited(string(class))
				writeExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    fmt.Sprintf("Too many requests. Try again in %d seconds.", result.RetryAfter),
		RetryAfter: result.RetryAfter,
	})
}
