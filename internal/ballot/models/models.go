// Package models holds elections, candidates and the ballot record.
package models

import (
	"sort"
	"time"

	"github.com/google/uuid"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

type ElectionStatus string

const (
	StatusDraft     ElectionStatus = "draft"
	StatusScheduled ElectionStatus = "scheduled"
	StatusActive    ElectionStatus = "active"
	StatusCompleted ElectionStatus = "completed"
	StatusCancelled ElectionStatus = "cancelled"
)

var transitions = map[ElectionStatus][]ElectionStatus{
	StatusDraft:     {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
}

func ParseElectionStatus(s string) (ElectionStatus, bool) {
	switch st := ElectionStatus(s); st {
	case StatusDraft, StatusScheduled, StatusActive, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Completed and cancelled are terminal.
func (s ElectionStatus) CanTransitionTo(next ElectionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Election is a voting target with a fixed window.
type Election struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      ElectionStatus `json:"status"`
	StartAt     time.Time      `json:"start_at"`
	EndAt       time.Time      `json:"end_at"`
	TotalVotes  int64          `json:"total_votes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AcceptsVotes checks the window and the status. A window that has ended wins
// over the status so a stale "active" election still reports ElectionClosed.
func (e *Election) AcceptsVotes(now time.Time) error {
	if now.After(e.EndAt) {
		return dErrors.New(dErrors.CodeInvalidState, "election has closed").
			WithReason(dErrors.ReasonElectionClosed)
	}
	if e.Status != StatusActive || now.Before(e.StartAt) {
		return dErrors.Newf(dErrors.CodeInvalidState, "election is not open for voting (status %s)", e.Status).
			WithReason(dErrors.ReasonElectionNotActive)
	}
	return nil
}

// Candidate belongs to exactly one election. Seq is the insertion order used to
// break ties in results.
type Candidate struct {
	ID         uuid.UUID `json:"id"`
	ElectionID uuid.UUID `json:"election_id"`
	Name       string    `json:"name"`
	Party      string    `json:"party,omitempty"`
	VoteCount  int64     `json:"vote_count"`
	Seq        int64     `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vote is immutable once recorded.
//
// Invariant: at most one verified vote per (ElectionID, VoterID), enforced by the store.
type Vote struct {
	ID            uuid.UUID
	ElectionID    uuid.UUID
	VoterID       id.VoterID
	CandidateID   uuid.UUID
	IPHash        string
	UserAgent     string
	Browser       string
	OS            string
	Mobile        bool
	IsVerified    bool
	VoteTimestamp time.Time
}

// TallyUpdate is the state of the counters right after a vote committed.
type TallyUpdate struct {
	CandidateVotes int64
	TotalVotes     int64
}

// Reconciliation reports what a recount changed.
type Reconciliation struct {
	ElectionID  uuid.UUID `json:"election_id"`
	TotalBefore int64     `json:"total_before"`
	TotalAfter  int64     `json:"total_after"`
	Adjusted    int       `json:"candidates_adjusted"`
}

// SortByVotes orders candidates by vote count descending, then by insertion order.
func SortByVotes(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].VoteCount != candidates[j].VoteCount {
			return candidates[i].VoteCount > candidates[j].VoteCount
		}
		return candidates[i].Seq < candidates[j].Seq
	})
}
