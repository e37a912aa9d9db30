package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"votegate/internal/ballot/models"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

type votePair struct {
	election uuid.UUID
	voter    id.VoterID
}

// InMemory keeps the whole ledger under one lock.
type InMemory struct {
	mu         sync.RWMutex
	elections  map[uuid.UUID]*models.Election
	order      []uuid.UUID
	candidates map[uuid.UUID]*models.Candidate
	byElection map[uuid.UUID][]uuid.UUID
	votes      map[votePair]*models.Vote
	unverified []*models.Vote
	seq        int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		elections:  make(map[uuid.UUID]*models.Election),
		candidates: make(map[uuid.UUID]*models.Candidate),
		byElection: make(map[uuid.UUID][]uuid.UUID),
		votes:      make(map[votePair]*models.Vote),
	}
}

func (s *InMemory) CreateElection(_ context.Context, e *models.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[e.ID]; ok {
		return fmt.Errorf("election %s: %w", e.ID, sentinel.ErrConflict)
	}
	cp := *e
	s.elections[e.ID] = &cp
	s.order = append(s.order, e.ID)
	return nil
}

func (s *InMemory) FindElection(_ context.Context, electionID uuid.UUID) (*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elections[electionID]
	if !ok {
		return nil, errElectionNotFound(electionID)
	}
	cp := *e
	return &cp, nil
}

// ListElections returns elections newest first.
func (s *InMemory) ListElections(_ context.Context) ([]*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Election, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		cp := *s.elections[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) ExecuteElection(_ context.Context, electionID uuid.UUID, validate func(*models.Election) error, mutate func(*models.Election)) (*models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[electionID]
	if !ok {
		return nil, errElectionNotFound(electionID)
	}
	cp := *e
	if err := validate(&cp); err != nil {
		return &cp, err
	}
	mutate(&cp)
	*e = cp
	return &cp, nil
}

func (s *InMemory) AddCandidate(_ context.Context, c *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[c.ElectionID]; !ok {
		return errElectionNotFound(c.ElectionID)
	}
	s.seq++
	cp := *c
	cp.Seq = s.seq
	c.Seq = s.seq
	s.candidates[c.ID] = &cp
	s.byElection[c.ElectionID] = append(s.byElection[c.ElectionID], c.ID)
	return nil
}

func (s *InMemory) FindCandidate(_ context.Context, candidateID uuid.UUID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[candidateID]
	if !ok {
		return nil, errCandidateNotFound(candidateID)
	}
	cp := *c
	return &cp, nil
}

// ListCandidates returns the candidates of one election in insertion order.
func (s *InMemory) ListCandidates(_ context.Context, electionID uuid.UUID) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidatesLocked(electionID), nil
}

func (s *InMemory) CandidatesFor(_ context.Context, electionIDs []uuid.UUID) (map[uuid.UUID][]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID][]*models.Candidate, len(electionIDs))
	for _, eid := range electionIDs {
		out[eid] = s.candidatesLocked(eid)
	}
	return out, nil
}

func (s *InMemory) candidatesLocked(electionID uuid.UUID) []*models.Candidate {
	ids := s.byElection[electionID]
	out := make([]*models.Candidate, 0, len(ids))
	for _, cid := range ids {
		cp := *s.candidates[cid]
		out = append(out, &cp)
	}
	return out
}

// RecordVote inserts v and, for a verified vote, bumps both counters atomically.
func (s *InMemory) RecordVote(_ context.Context, v *models.Vote) (*models.TallyUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.elections[v.ElectionID]
	if !ok {
		return nil, errElectionNotFound(v.ElectionID)
	}
	c, ok := s.candidates[v.CandidateID]
	if !ok || c.ElectionID != v.ElectionID {
		return nil, errCandidateNotFound(v.CandidateID)
	}
	cp := *v
	if !v.IsVerified {
		s.unverified = append(s.unverified, &cp)
		return &models.TallyUpdate{CandidateVotes: c.VoteCount, TotalVotes: e.TotalVotes}, nil
	}
	key := votePair{election: v.ElectionID, voter: v.VoterID}
	if _, dup := s.votes[key]; dup {
		return nil, errAlreadyVoted()
	}
	s.votes[key] = &cp

	c.VoteCount++
	e.TotalVotes++
	return &models.TallyUpdate{CandidateVotes: c.VoteCount, TotalVotes: e.TotalVotes}, nil
}

func (s *InMemory) HasVoted(_ context.Context, electionID uuid.UUID, voterID id.VoterID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.votes[votePair{election: electionID, voter: voterID}]
	return ok, nil
}

// Reconcile recomputes the counters from the recorded verified votes.
func (s *InMemory) Reconcile(_ context.Context, electionID uuid.UUID) (*models.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.elections[electionID]
	if !ok {
		return nil, errElectionNotFound(electionID)
	}
	counts := make(map[uuid.UUID]int64)
	var total int64
	for key, v := range s.votes {
		if key.election == electionID && v.IsVerified {
			counts[v.CandidateID]++
			total++
		}
	}

	rec := &models.Reconciliation{ElectionID: electionID, TotalBefore: e.TotalVotes, TotalAfter: total}
	for _, cid := range s.byElection[electionID] {
		c := s.candidates[cid]
		if c.VoteCount != counts[cid] {
			c.VoteCount = counts[cid]
			rec.Adjusted++
		}
	}
	e.TotalVotes = total
	return rec, nil
}
