package store

import (
	"context"
	"fmt"
	"sync"

	"votegate/internal/biometric/models"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// InMemory keeps the active and previous template per voter.
type InMemory struct {
	mu       sync.RWMutex
	active   map[id.VoterID]*models.Template
	previous map[id.VoterID]*models.Template
}

func NewInMemory() *InMemory {
	return &InMemory{
		active:   make(map[id.VoterID]*models.Template),
		previous: make(map[id.VoterID]*models.Template),
	}
}

// Activate makes t the voter's only active template, deactivating and returning the
// one it replaces (nil on first enrollment).
func (s *InMemory) Activate(_ context.Context, t *models.Template) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *t
	next.Vector = append([]float64(nil), t.Vector...)
	next.IsActive = true

	var replaced *models.Template
	if prev, ok := s.active[t.VoterID]; ok {
		prev.IsActive = false
		s.previous[t.VoterID] = prev
		out := *prev
		replaced = &out
	}
	s.active[t.VoterID] = &next
	return replaced, nil
}

func (s *InMemory) FindActive(_ context.Context, voterID id.VoterID) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.active[voterID]
	if !ok {
		return nil, fmt.Errorf("template for %s: %w", voterID, sentinel.ErrNotFound)
	}
	out := *t
	out.Vector = append([]float64(nil), t.Vector...)
	return &out, nil
}

// FindPrevious returns the template replaced by the latest re-enrollment.
func (s *InMemory) FindPrevious(_ context.Context, voterID id.VoterID) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.previous[voterID]
	if !ok {
		return nil, fmt.Errorf("previous template for %s: %w", voterID, sentinel.ErrNotFound)
	}
	out := *t
	return &out, nil
}
