package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"votegate/internal/ballot/models"
	"votegate/internal/ballot/store"
	"votegate/internal/platform/logger"
	"votegate/internal/realtime"
	votermodels "votegate/internal/voter/models"
	voterstore "votegate/internal/voter/store"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	auditpublisher "votegate/pkg/platform/audit/publisher"
	auditmemory "votegate/pkg/platform/audit/store/memory"
	"votegate/pkg/requestcontext"
)

const (
	voterOne = id.VoterID("AB12CD34")
	voterTwo = id.VoterID("EF56GH78")
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	ledger   *store.InMemory
	voters   *voterstore.InMemory
	auditLog *auditmemory.InMemoryStore
	hub      *realtime.Hub
	service  *Service

	election *models.Election
	c1, c2   *models.Candidate
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ledger = store.NewInMemory()
	s.voters = voterstore.NewInMemory()
	s.auditLog = auditmemory.NewInMemoryStore()
	s.hub = realtime.NewHub(realtime.WithLogger(logger.Discard()))

	s.service = New(s.ledger, s.voters, "test-salt",
		WithLogger(logger.Discard()),
		WithAuditPublisher(auditpublisher.NewPublisher(s.auditLog, auditpublisher.WithLogger(logger.Discard()))),
		WithBroadcaster(s.hub),
	)

	s.addVoter(voterOne, "one@example.com", "+15550000001", true)
	s.addVoter(voterTwo, "two@example.com", "+15550000002", true)

	s.election = s.openElection("General", s.now.Add(-time.Hour), s.now.Add(time.Hour))
	cs, err := s.ledger.ListCandidates(s.ctx, s.election.ID)
	s.Require().NoError(err)
	s.c1, s.c2 = cs[0], cs[1]
}

func (s *ServiceSuite) addVoter(voterID id.VoterID, email, phone string, verified bool) {
	s.Require().NoError(s.voters.Create(s.ctx, &votermodels.Voter{
		ID:            uuid.New(),
		VoterID:       voterID,
		Email:         email,
		Phone:         phone,
		NationalID:    uuid.NewString(),
		EmailVerified: true,
		PhoneVerified: true,
		IDVerified:    true,
		FaceVerified:  verified,
		IsActive:      true,
		Status:        votermodels.StatusCompleted,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}))
}

// openElection runs the admin lifecycle: create, two candidates, schedule, activate.
func (s *ServiceSuite) openElection(title string, start, end time.Time) *models.Election {
	e, err := s.service.CreateElection(s.ctx, ElectionInput{Title: title, StartAt: start, EndAt: end}, "admin")
	s.Require().NoError(err)
	_, err = s.service.AddCandidate(s.ctx, e.ID, CandidateInput{Name: "Candidate One", Party: "Blue"}, "admin")
	s.Require().NoError(err)
	_, err = s.service.AddCandidate(s.ctx, e.ID, CandidateInput{Name: "Candidate Two", Party: "Green"}, "admin")
	s.Require().NoError(err)
	_, err = s.service.SetStatus(s.ctx, e.ID, models.StatusScheduled, "admin")
	s.Require().NoError(err)
	e, err = s.service.SetStatus(s.ctx, e.ID, models.StatusActive, "admin")
	s.Require().NoError(err)
	return e
}

func (s *ServiceSuite) ballot(voterID id.VoterID, candidate *models.Candidate) Ballot {
	return Ballot{
		VoterID:     voterID,
		ElectionID:  candidate.ElectionID,
		CandidateID: candidate.ID,
		ClientIP:    "203.0.113.7",
		UserAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	}
}

func (s *ServiceSuite) tallies(electionID uuid.UUID) (total int64, byName map[string]int64) {
	res, err := s.service.GetResults(s.ctx, electionID)
	s.Require().NoError(err)
	byName = make(map[string]int64)
	for _, c := range res.Candidates {
		byName[c.Name] = c.VoteCount
	}
	return res.TotalVotes, byName
}

func drain(c *realtime.Client) []realtime.Event {
	var events []realtime.Event
	for {
		select {
		case raw := <-c.Send:
			var ev realtime.Event
			if err := json.Unmarshal(raw, &ev); err == nil {
				events = append(events, ev)
			}
		default:
			return events
		}
	}
}

func (s *ServiceSuite) TestCastVoteAndDuplicate() {
	receipt, err := s.service.CastVote(s.ctx, s.ballot(voterOne, s.c1))
	s.Require().NoError(err)
	s.Equal(int64(1), receipt.CandidateVotes)
	s.Equal(int64(1), receipt.TotalVotes)
	s.Equal(s.now, receipt.CastAt)

	total, byName := s.tallies(s.election.ID)
	s.Equal(int64(1), total)
	s.Equal(int64(1), byName["Candidate One"])

	_, err = s.service.CastVote(s.ctx, s.ballot(voterOne, s.c2))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(dErrors.ReasonAlreadyVoted, dErrors.ReasonOf(err))

	total, byName = s.tallies(s.election.ID)
	s.Equal(int64(1), total)
	s.Equal(int64(0), byName["Candidate Two"])

	voted, err := s.service.HasVoted(s.ctx, voterOne, s.election.ID)
	s.Require().NoError(err)
	s.True(voted)
	voted, err = s.service.HasVoted(s.ctx, voterTwo, s.election.ID)
	s.Require().NoError(err)
	s.False(voted)

	events, err := s.auditLog.ListBySubject(s.ctx, voterOne.String())
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventVoteCast))
	s.Contains(actions, string(audit.EventVoteRejected))
}

func (s *ServiceSuite) TestClosedElection() {
	past := s.openElection("Past", s.now.Add(-3*time.Hour), s.now.Add(-time.Hour))
	cs, err := s.ledger.ListCandidates(s.ctx, past.ID)
	s.Require().NoError(err)

	_, err = s.service.CastVote(s.ctx, s.ballot(voterOne, cs[0]))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.Equal(dErrors.ReasonElectionClosed, dErrors.ReasonOf(err))

	voted, err := s.service.HasVoted(s.ctx, voterOne, past.ID)
	s.Require().NoError(err)
	s.False(voted)
}

func (s *ServiceSuite) TestPreconditionOrder() {
	closed := s.openElection("Closed", s.now.Add(-3*time.Hour), s.now.Add(-time.Hour))
	other := s.openElection("Other", s.now.Add(-time.Hour), s.now.Add(time.Hour))
	otherCandidates, err := s.ledger.ListCandidates(s.ctx, other.ID)
	s.Require().NoError(err)

	s.addVoter("IJ90KL12", "three@example.com", "+15550000003", false)
	_, err = s.voters.Execute(s.ctx, voterTwo, func(*votermodels.Voter) error { return nil },
		func(v *votermodels.Voter) { v.ApplyDeactivation(s.now) })
	s.Require().NoError(err)

	tests := []struct {
		name   string
		ballot Ballot
		code   dErrors.Code
		reason dErrors.Reason
	}{
		{
			"unknown election wins over everything",
			Ballot{VoterID: "ZZ99ZZ99", ElectionID: uuid.New(), CandidateID: uuid.New()},
			dErrors.CodeNotFound, dErrors.ReasonElectionNotFound,
		},
		{
			"closed window wins over unknown candidate and voter",
			Ballot{VoterID: "ZZ99ZZ99", ElectionID: closed.ID, CandidateID: uuid.New()},
			dErrors.CodeInvalidState, dErrors.ReasonElectionClosed,
		},
		{
			"candidate from another election",
			Ballot{VoterID: "ZZ99ZZ99", ElectionID: s.election.ID, CandidateID: otherCandidates[0].ID},
			dErrors.CodeNotFound, dErrors.ReasonCandidateNotFound,
		},
		{
			"unknown voter",
			Ballot{VoterID: "ZZ99ZZ99", ElectionID: s.election.ID, CandidateID: s.c1.ID},
			dErrors.CodeNotFound, dErrors.ReasonVoterNotFound,
		},
		{
			"inactive voter",
			Ballot{VoterID: voterTwo, ElectionID: s.election.ID, CandidateID: s.c1.ID},
			dErrors.CodeInvalidState, dErrors.ReasonAccountInactive,
		},
		{
			"unverified voter",
			Ballot{VoterID: "IJ90KL12", ElectionID: s.election.ID, CandidateID: s.c1.ID},
			dErrors.CodeInvalidState, dErrors.ReasonVerificationIncomplete,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CastVote(s.ctx, tt.ballot)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
			s.Equal(tt.reason, dErrors.ReasonOf(err))
		})
	}

	s.Run("missing steps are enumerated", func() {
		_, err := s.service.CastVote(s.ctx, Ballot{VoterID: "IJ90KL12", ElectionID: s.election.ID, CandidateID: s.c1.ID})
		s.Equal([]string{"face_verified"}, dErrors.DetailsOf(err))
	})

	total, _ := s.tallies(s.election.ID)
	s.Zero(total)
}

// TestConcurrentDoubleVote: N simultaneous ballots from one voter yield one
// receipt and N-1 AlreadyVoted conflicts.
func (s *ServiceSuite) TestConcurrentDoubleVote() {
	const attempts = 20
	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			candidate := s.c1
			if i%2 == 0 {
				candidate = s.c2
			}
			_, err := s.service.CastVote(s.ctx, s.ballot(voterOne, candidate))
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasReason(err, dErrors.ReasonAlreadyVoted):
				conflicts.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(attempts-1), conflicts.Load())

	total, byName := s.tallies(s.election.ID)
	s.Equal(int64(1), total)
	s.Equal(int64(1), byName["Candidate One"]+byName["Candidate Two"])
}

func (s *ServiceSuite) TestFanOut() {
	observer := realtime.NewClient("obs", realtime.RoleVoter, voterTwo.String())
	s.hub.Register(observer)
	s.hub.Join(observer, realtime.ElectionRoom(s.election.ID.String()))

	voter := realtime.NewClient("v1", realtime.RoleVoter, voterOne.String())
	s.hub.Register(voter)
	s.hub.Join(voter, realtime.VoterRoom(voterOne.String()))

	_, err := s.service.CastVote(s.ctx, s.ballot(voterOne, s.c1))
	s.Require().NoError(err)

	roomEvents := drain(observer)
	s.Require().Len(roomEvents, 1)
	s.Equal(realtime.EventVoteCast, roomEvents[0].Type)
	data, ok := roomEvents[0].Data.(map[string]any)
	s.Require().True(ok)
	s.EqualValues(1, data["total_votes"])
	s.Equal(s.c1.ID.String(), data["candidate_id"])
	s.NotContains(data, "voter_id")

	receipts := drain(voter)
	s.Require().Len(receipts, 1)
	receipt, ok := receipts[0].Data.(map[string]any)
	s.Require().True(ok)
	s.Equal(voterOne.String(), receipt["voter_id"])
}

func (s *ServiceSuite) TestResultsOrdering() {
	e := s.openElection("Ties", s.now.Add(-time.Hour), s.now.Add(time.Hour))
	cs, err := s.ledger.ListCandidates(s.ctx, e.ID)
	s.Require().NoError(err)

	_, err = s.service.CastVote(s.ctx, s.ballot(voterOne, cs[1]))
	s.Require().NoError(err)

	res, err := s.service.GetResults(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal("Candidate Two", res.Candidates[0].Name)
	s.Equal("Candidate One", res.Candidates[1].Name)

	_, err = s.service.CastVote(s.ctx, s.ballot(voterTwo, cs[0]))
	s.Require().NoError(err)
	res, err = s.service.GetResults(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal("Candidate One", res.Candidates[0].Name, "ties fall back to insertion order")
	s.Equal(int64(2), res.TotalVotes)

	_, err = s.service.GetResults(s.ctx, uuid.New())
	s.True(dErrors.HasReason(err, dErrors.ReasonElectionNotFound))
}

func (s *ServiceSuite) TestElectionAdministration() {
	s.Run("validation", func() {
		_, err := s.service.CreateElection(s.ctx, ElectionInput{Title: " ", StartAt: s.now, EndAt: s.now.Add(time.Hour)}, "admin")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.CreateElection(s.ctx, ElectionInput{Title: "x", StartAt: s.now, EndAt: s.now}, "admin")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal([]string{"end_at"}, dErrors.DetailsOf(err))
	})

	s.Run("candidates are frozen once active", func() {
		_, err := s.service.AddCandidate(s.ctx, s.election.ID, CandidateInput{Name: "Late"}, "admin")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("illegal transition", func() {
		_, err := s.service.SetStatus(s.ctx, s.election.ID, models.StatusDraft, "admin")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown election", func() {
		_, err := s.service.SetStatus(s.ctx, uuid.New(), models.StatusActive, "admin")
		s.True(dErrors.HasReason(err, dErrors.ReasonElectionNotFound))
		_, err = s.service.AddCandidate(s.ctx, uuid.New(), CandidateInput{Name: "x"}, "admin")
		s.True(dErrors.HasReason(err, dErrors.ReasonElectionNotFound))
	})

	s.Run("completing stops voting", func() {
		_, err := s.service.SetStatus(s.ctx, s.election.ID, models.StatusCompleted, "admin")
		s.Require().NoError(err)
		_, err = s.service.CastVote(s.ctx, s.ballot(voterOne, s.c1))
		s.Equal(dErrors.ReasonElectionNotActive, dErrors.ReasonOf(err))
	})

	s.Run("list and detail", func() {
		views, err := s.service.ListElections(s.ctx)
		s.Require().NoError(err)
		s.Len(views, 1)
		s.Len(views[0].Candidates, 2)

		view, err := s.service.GetElection(s.ctx, s.election.ID)
		s.Require().NoError(err)
		s.Equal("General", view.Election.Title)
	})
}

func (s *ServiceSuite) TestReconcile() {
	_, err := s.service.CastVote(s.ctx, s.ballot(voterOne, s.c1))
	s.Require().NoError(err)

	rec, err := s.service.Reconcile(s.ctx, s.election.ID, "admin")
	s.Require().NoError(err)
	s.Equal(0, rec.Adjusted)
	s.Equal(int64(1), rec.TotalAfter)

	_, err = s.service.Reconcile(s.ctx, uuid.New(), "admin")
	s.True(dErrors.HasReason(err, dErrors.ReasonElectionNotFound))
}
