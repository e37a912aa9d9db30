package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"votegate/internal/ballot/models"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

type ledger interface {
	CreateElection(ctx context.Context, e *models.Election) error
	FindElection(ctx context.Context, electionID uuid.UUID) (*models.Election, error)
	ListElections(ctx context.Context) ([]*models.Election, error)
	ExecuteElection(ctx context.Context, electionID uuid.UUID, validate func(*models.Election) error, mutate func(*models.Election)) (*models.Election, error)
	AddCandidate(ctx context.Context, c *models.Candidate) error
	FindCandidate(ctx context.Context, candidateID uuid.UUID) (*models.Candidate, error)
	ListCandidates(ctx context.Context, electionID uuid.UUID) ([]*models.Candidate, error)
	CandidatesFor(ctx context.Context, electionIDs []uuid.UUID) (map[uuid.UUID][]*models.Candidate, error)
	RecordVote(ctx context.Context, v *models.Vote) (*models.TallyUpdate, error)
	HasVoted(ctx context.Context, electionID uuid.UUID, voterID id.VoterID) (bool, error)
	Reconcile(ctx context.Context, electionID uuid.UUID) (*models.Reconciliation, error)
}

// ledgerContract is the behaviour every ledger implementation must share.
// Embedders set ledger in SetupTest.
type ledgerContract struct {
	suite.Suite
	ledger ledger
}

func (s *ledgerContract) newElection(title string) *models.Election {
	now := time.Now().UTC().Truncate(time.Microsecond)
	e := &models.Election{
		ID:        uuid.New(),
		Title:     title,
		Status:    models.StatusActive,
		StartAt:   now.Add(-time.Hour),
		EndAt:     now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.ledger.CreateElection(context.Background(), e))
	return e
}

func (s *ledgerContract) newCandidate(electionID uuid.UUID, name string) *models.Candidate {
	c := &models.Candidate{
		ID:         uuid.New(),
		ElectionID: electionID,
		Name:       name,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.ledger.AddCandidate(context.Background(), c))
	return c
}

func newVote(electionID, candidateID uuid.UUID, voterID string) *models.Vote {
	return &models.Vote{
		ID:            uuid.New(),
		ElectionID:    electionID,
		CandidateID:   candidateID,
		VoterID:       id.VoterID(voterID),
		IsVerified:    true,
		VoteTimestamp: time.Now().UTC(),
	}
}

func (s *ledgerContract) TestElectionsAndCandidates() {
	ctx := context.Background()
	e1 := s.newElection("first")
	e2 := s.newElection("second")
	a := s.newCandidate(e1.ID, "a")
	b := s.newCandidate(e1.ID, "b")
	s.newCandidate(e2.ID, "c")

	s.Run("candidates keep insertion order", func() {
		cs, err := s.ledger.ListCandidates(ctx, e1.ID)
		s.Require().NoError(err)
		s.Require().Len(cs, 2)
		s.Equal(a.ID, cs[0].ID)
		s.Equal(b.ID, cs[1].ID)
		s.Less(cs[0].Seq, cs[1].Seq)
	})

	s.Run("batch load", func() {
		missing := uuid.New()
		byElection, err := s.ledger.CandidatesFor(ctx, []uuid.UUID{e1.ID, e2.ID, missing})
		s.Require().NoError(err)
		s.Len(byElection[e1.ID], 2)
		s.Len(byElection[e2.ID], 1)
		s.Empty(byElection[missing])
	})

	s.Run("list elections", func() {
		es, err := s.ledger.ListElections(ctx)
		s.Require().NoError(err)
		s.Len(es, 2)
	})

	s.Run("unknown ids", func() {
		_, err := s.ledger.FindElection(ctx, uuid.New())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.ledger.FindCandidate(ctx, uuid.New())
		s.ErrorIs(err, sentinel.ErrNotFound)
		err = s.ledger.AddCandidate(ctx, &models.Candidate{ID: uuid.New(), ElectionID: uuid.New(), Name: "x", CreatedAt: time.Now()})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("execute election", func() {
		updated, err := s.ledger.ExecuteElection(ctx, e1.ID,
			func(e *models.Election) error { return nil },
			func(e *models.Election) { e.Status = models.StatusCompleted },
		)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, updated.Status)

		found, err := s.ledger.FindElection(ctx, e1.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, found.Status)

		refuse := errors.New("refused")
		_, err = s.ledger.ExecuteElection(ctx, e1.ID,
			func(e *models.Election) error { return refuse },
			func(e *models.Election) { e.Status = models.StatusCancelled },
		)
		s.ErrorIs(err, refuse)
		found, err = s.ledger.FindElection(ctx, e1.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, found.Status)
	})
}

func (s *ledgerContract) TestRecordVote() {
	ctx := context.Background()
	e := s.newElection("general")
	c1 := s.newCandidate(e.ID, "c1")
	c2 := s.newCandidate(e.ID, "c2")

	update, err := s.ledger.RecordVote(ctx, newVote(e.ID, c1.ID, "AB12CD34"))
	s.Require().NoError(err)
	s.Equal(int64(1), update.CandidateVotes)
	s.Equal(int64(1), update.TotalVotes)

	voted, err := s.ledger.HasVoted(ctx, e.ID, "AB12CD34")
	s.Require().NoError(err)
	s.True(voted)

	s.Run("second vote in the same election is a conflict and changes nothing", func() {
		_, err := s.ledger.RecordVote(ctx, newVote(e.ID, c2.ID, "AB12CD34"))
		s.ErrorIs(err, sentinel.ErrConflict)

		found, err := s.ledger.FindElection(ctx, e.ID)
		s.Require().NoError(err)
		s.Equal(int64(1), found.TotalVotes)
		cand, err := s.ledger.FindCandidate(ctx, c2.ID)
		s.Require().NoError(err)
		s.Equal(int64(0), cand.VoteCount)
	})

	s.Run("same voter may vote in another election", func() {
		other := s.newElection("local")
		oc := s.newCandidate(other.ID, "o1")
		_, err := s.ledger.RecordVote(ctx, newVote(other.ID, oc.ID, "AB12CD34"))
		s.NoError(err)
	})

	s.Run("unverified votes neither collide nor count", func() {
		v := newVote(e.ID, c2.ID, "AB12CD34")
		v.IsVerified = false
		update, err := s.ledger.RecordVote(ctx, v)
		s.Require().NoError(err)
		s.Equal(int64(1), update.TotalVotes)
		s.Equal(int64(0), update.CandidateVotes)
	})

	s.Run("reconcile with consistent counters adjusts nothing", func() {
		rec, err := s.ledger.Reconcile(ctx, e.ID)
		s.Require().NoError(err)
		s.Equal(0, rec.Adjusted)
		s.Equal(int64(1), rec.TotalBefore)
		s.Equal(int64(1), rec.TotalAfter)
	})
}

// TestConcurrentDoubleVote: N racing votes for one (voter, election) pair yield
// exactly one success and N-1 conflicts, and the tallies count one vote.
func (s *ledgerContract) TestConcurrentDoubleVote() {
	ctx := context.Background()
	e := s.newElection("race")
	c1 := s.newCandidate(e.ID, "c1")
	c2 := s.newCandidate(e.ID, "c2")
	const attempts = 16

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			candidate := c1.ID
			if i%2 == 1 {
				candidate = c2.ID
			}
			_, err := s.ledger.RecordVote(ctx, newVote(e.ID, candidate, "RACE1234"))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(attempts-1), conflicts.Load())

	found, err := s.ledger.FindElection(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), found.TotalVotes)

	cs, err := s.ledger.ListCandidates(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), cs[0].VoteCount+cs[1].VoteCount)
}

// TestConcurrentDistinctVoters: every distinct voter is counted exactly once.
func (s *ledgerContract) TestConcurrentDistinctVoters() {
	ctx := context.Background()
	e := s.newElection("turnout")
	c := s.newCandidate(e.ID, "c")
	const voters = 24

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voterID := uuid.NewString()[:8]
			if _, err := s.ledger.RecordVote(ctx, newVote(e.ID, c.ID, voterID)); err != nil {
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Zero(failures.Load())
	found, err := s.ledger.FindElection(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(int64(voters), found.TotalVotes)
	cand, err := s.ledger.FindCandidate(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(int64(voters), cand.VoteCount)
}
