// Package store persists elections, candidates and votes.
//
// Both implementations make RecordVote the single serialization point for the
// one-vote-per-election rule: the vote insert and the counter increments commit
// together, and a second verified vote for the same pair fails with
// sentinel.ErrConflict.
package store

import (
	"fmt"

	"github.com/google/uuid"

	"votegate/pkg/platform/sentinel"
)

func errElectionNotFound(electionID uuid.UUID) error {
	return fmt.Errorf("election %s: %w", electionID, sentinel.ErrNotFound)
}

func errCandidateNotFound(candidateID uuid.UUID) error {
	return fmt.Errorf("candidate %s: %w", candidateID, sentinel.ErrNotFound)
}

func errAlreadyVoted() error {
	return fmt.Errorf("vote: %w", sentinel.ErrConflict)
}
