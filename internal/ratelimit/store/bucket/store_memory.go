// Package bucket keeps sliding window request counters.
package bucket

import (
	"context"
	"sync"
	"time"

	"supaboard/internal/ratelimit/models"
)

// InMemoryBucketStore is a process-local sliding window store. It backs single
// instance deployments and stands in when Redis is unreachable.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*window
	now     func() time.Time
}

// window holds one key's request times, oldest first.
type window struct {
	stamps []time.Time
	span   time.Duration
}

func New() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock overrides time.Now for tests.
func (s *InMemoryBucketStore) WithClock(now func() time.Time) *InMemoryBucketStore {
	s.now = now
	return s
}

// Allow records one request for key unless the window is already full.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit models.Limit) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.buckets[key]
	if !ok {
		w = &window{}
	}
	w.span = limit.Window
	w.stamps = prune(w.stamps, now.Add(-limit.Window))

	if len(w.stamps) >= limit.Requests {
		resetAt := now.Add(limit.Window)
		if len(w.stamps) > 0 {
			resetAt = w.stamps[0].Add(limit.Window)
			s.buckets[key] = w
		} else {
			delete(s.buckets, key)
		}
		return &models.Result{
			Allowed:    false,
			Limit:      limit.Requests,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(now, resetAt),
		}, nil
	}

	w.stamps = append(w.stamps, now)
	s.buckets[key] = w
	return &models.Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(w.stamps),
		ResetAt:   w.stamps[0].Add(limit.Window),
	}, nil
}

// Reset forgets key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Sweep drops keys whose window has fully elapsed and returns how many went.
func (s *InMemoryBucketStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, w := range s.buckets {
		w.stamps = prune(w.stamps, now.Add(-w.span))
		if len(w.stamps) == 0 {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// Len reports how many keys are tracked.
func (s *InMemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// StartCleanup sweeps idle keys every interval until ctx is cancelled.
func (s *InMemoryBucketStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// prune drops timestamps at or before cutoff. Stamps are kept in order.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}
