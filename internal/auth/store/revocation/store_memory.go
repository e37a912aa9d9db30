// Package revocation keeps the ids of tokens that must no longer be accepted,
// each until the token itself would have expired.
package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL is a process-local revocation list.
type InMemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   Clock
}

type InMemoryOption func(*InMemoryTRL)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) InMemoryOption {
	return func(t *InMemoryTRL) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func NewInMemoryTRL(opts ...InMemoryOption) *InMemoryTRL {
	t := &InMemoryTRL{revoked: make(map[string]time.Time), clock: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.clock().Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	expiresAt, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	return t.clock().Before(expiresAt), nil
}

// DeleteExpired drops entries whose token could no longer validate anyway.
func (t *InMemoryTRL) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for jti, expiresAt := range t.revoked {
		if !now.Before(expiresAt) {
			delete(t.revoked, jti)
			n++
		}
	}
	return n, nil
}
