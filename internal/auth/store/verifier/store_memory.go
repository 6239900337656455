// Package verifier keeps PKCE code verifiers between a redirect sign-in and
// its callback, keyed by an opaque flow id.
//
// Error contract:
//   - Consume returns sentinel.ErrNotFound when the flow id is unknown or already consumed
//   - Consume returns sentinel.ErrExpired when the entry outlived its TTL
//   - Every successful Consume deletes the entry
package verifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"supaboard/pkg/platform/sentinel"
)

// DefaultTTL bounds how long a flow may stay pending.
const DefaultTTL = 10 * time.Minute

type entry struct {
	verifier  string
	expiresAt time.Time
}

// InMemoryStore holds verifiers in process memory for single-instance deployments and tests.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewInMemory constructs an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]entry), now: time.Now}
}

// WithClock overrides the store's time source.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

func (s *InMemoryStore) Save(_ context.Context, flowID, verifier string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.entries[flowID] = entry{verifier: verifier, expiresAt: now.Add(ttl)}
	return nil
}

func (s *InMemoryStore) Consume(_ context.Context, flowID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[flowID]
	if !ok {
		return "", fmt.Errorf("pkce flow %q: %w", flowID, sentinel.ErrNotFound)
	}
	delete(s.entries, flowID)
	if !s.now().Before(e.expiresAt) {
		return "", fmt.Errorf("pkce flow %q: %w", flowID, sentinel.ErrExpired)
	}
	return e.verifier, nil
}

// sweepLocked drops expired entries so abandoned flows do not accumulate.
func (s *InMemoryStore) sweepLocked(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
