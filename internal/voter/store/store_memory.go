package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// Unique field names reported through sentinel.FieldConflict.
const (
	FieldVoterID    = "voter_id"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldNationalID = "national_id_number"
)

// InMemory stores voters in process memory for tests and dev. All unique indexes are
// maintained under one lock so Create is an atomic check-and-insert.
type InMemory struct {
	mu         sync.RWMutex
	byVoterID  map[id.VoterID]*models.Voter
	email      map[string]id.VoterID
	phone      map[string]id.VoterID
	nationalID map[string]id.VoterID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byVoterID:  make(map[id.VoterID]*models.Voter),
		email:      make(map[string]id.VoterID),
		phone:      make(map[string]id.VoterID),
		nationalID: make(map[string]id.VoterID),
	}
}

func (s *InMemory) Create(_ context.Context, v *models.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byVoterID[v.VoterID]; ok {
		return sentinel.NewFieldConflict(FieldVoterID)
	}
	if _, ok := s.email[strings.ToLower(v.Email)]; ok {
		return sentinel.NewFieldConflict(FieldEmail)
	}
	if _, ok := s.phone[v.Phone]; ok {
		return sentinel.NewFieldConflict(FieldPhone)
	}
	if _, ok := s.nationalID[v.NationalID]; ok {
		return sentinel.NewFieldConflict(FieldNationalID)
	}

	stored := *v
	s.byVoterID[v.VoterID] = &stored
	s.email[strings.ToLower(v.Email)] = v.VoterID
	s.phone[v.Phone] = v.VoterID
	s.nationalID[v.NationalID] = v.VoterID
	return nil
}

func (s *InMemory) FindByVoterID(_ context.Context, voterID id.VoterID) (*models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byVoterID[voterID]
	if !ok {
		return nil, fmt.Errorf("voter %s: %w", voterID, sentinel.ErrNotFound)
	}
	out := *v
	return &out, nil
}

// FindByContact looks a voter up by email or phone.
func (s *InMemory) FindByContact(ctx context.Context, contact string) (*models.Voter, error) {
	s.mu.RLock()
	voterID, ok := s.email[strings.ToLower(contact)]
	if !ok {
		voterID, ok = s.phone[contact]
	}
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("voter with contact: %w", sentinel.ErrNotFound)
	}
	return s.FindByVoterID(ctx, voterID)
}

func (s *InMemory) ExistsVoterID(_ context.Context, voterID id.VoterID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byVoterID[voterID]
	return ok, nil
}

// Execute runs validate then mutate against the stored voter under the write lock.
// On validation failure the unmodified voter is returned with the error.
func (s *InMemory) Execute(_ context.Context, voterID id.VoterID, validate func(*models.Voter) error, mutate func(*models.Voter)) (*models.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byVoterID[voterID]
	if !ok {
		return nil, fmt.Errorf("voter %s: %w", voterID, sentinel.ErrNotFound)
	}
	working := *v
	if err := validate(&working); err != nil {
		out := *v
		return &out, err
	}
	mutate(&working)
	*v = working
	out := working
	return &out, nil
}

// Count returns the number of stored voters.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byVoterID), nil
}
