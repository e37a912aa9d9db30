package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"votegate/internal/otp/models"
	"votegate/pkg/platform/sentinel"
)

// InMemory is a process-local CodeStore for tests and single-instance dev.
// Codes and proofs share one lock so every operation is linearizable.
type InMemory struct {
	mu     sync.Mutex
	codes  map[string]*models.Code
	proofs map[string]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		codes:  make(map[string]*models.Code),
		proofs: make(map[string]time.Time),
	}
}

// Issue stores code in its (contact, purpose) slot, replacing any previous code.
func (s *InMemory) Issue(_ context.Context, code *models.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *code
	s.codes[code.Key()] = &stored
	return nil
}

// Redeem applies one attempt against the live code for (contact, purpose).
func (s *InMemory) Redeem(_ context.Context, contact string, purpose models.Purpose, value string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[models.Key(contact, purpose)]
	if !ok {
		return fmt.Errorf("code for %s: %w", purpose, sentinel.ErrNotFound)
	}
	return code.Redeem(value, now)
}

// Find returns a copy of the code in the (contact, purpose) slot.
func (s *InMemory) Find(_ context.Context, contact string, purpose models.Purpose) (*models.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[models.Key(contact, purpose)]
	if !ok {
		return nil, fmt.Errorf("code for %s: %w", purpose, sentinel.ErrNotFound)
	}
	out := *code
	return &out, nil
}

// DeleteExpired removes codes and proofs past their expiry. Used but unexpired codes are
// kept so a replay is still reported as already used.
func (s *InMemory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, code := range s.codes {
		if code.IsExpired(now) {
			delete(s.codes, key)
			deleted++
		}
	}
	for contact, exp := range s.proofs {
		if !now.Before(exp) {
			delete(s.proofs, contact)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemory) SaveProof(_ context.Context, proof models.Proof) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofs[proof.Contact] = proof.ExpiresAt
	return nil
}

func (s *InMemory) HasProof(_ context.Context, contact string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.proofs[contact]
	return ok && now.Before(exp), nil
}

// ConsumeProof removes a live proof; ErrNotFound when none exists.
func (s *InMemory) ConsumeProof(_ context.Context, contact string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.proofs[contact]
	if !ok || !now.Before(exp) {
		return fmt.Errorf("verification proof: %w", sentinel.ErrNotFound)
	}
	delete(s.proofs, contact)
	return nil
}
