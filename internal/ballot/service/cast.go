package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"votegate/internal/ballot/models"
	"votegate/internal/realtime"
	votermodels "votegate/internal/voter/models"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/device"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// Ballot is one vote request.
type Ballot struct {
	VoterID     id.VoterID
	ElectionID  uuid.UUID
	CandidateID uuid.UUID
	ClientIP    string
	UserAgent   string
}

// Receipt confirms a committed vote and carries the tallies right after it.
type Receipt struct {
	VoteID         uuid.UUID  `json:"vote_id"`
	ElectionID     uuid.UUID  `json:"election_id"`
	CandidateID    uuid.UUID  `json:"candidate_id"`
	VoterID        id.VoterID `json:"voter_id"`
	CastAt         time.Time  `json:"cast_at"`
	CandidateVotes int64      `json:"candidate_votes"`
	TotalVotes     int64      `json:"total_votes"`
}

// CastVote records b exactly once per (voter, election). Preconditions are checked
// in a fixed order and the first failure is returned: election exists, election
// open, candidate belongs to it, voter eligible. The duplicate check is the
// ledger's insert, not a prior read.
func (s *Service) CastVote(ctx context.Context, b Ballot) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "ballot.CastVote")
	defer span.End()
	span.SetAttributes(
		attribute.String("election.id", b.ElectionID.String()),
		attribute.String("voter.id", b.VoterID.String()),
	)
	start := time.Now()
	defer s.metrics.ObserveCast(start)

	now := requestcontext.Now(ctx)

	if err := s.checkPreconditions(ctx, b, now); err != nil {
		s.reject(ctx, b, err)
		return nil, err
	}

	info := device.Parse(b.UserAgent)
	vote := &models.Vote{
		ID:            uuid.New(),
		ElectionID:    b.ElectionID,
		VoterID:       b.VoterID,
		CandidateID:   b.CandidateID,
		IPHash:        s.ipHash.Sum(b.ClientIP),
		UserAgent:     b.UserAgent,
		Browser:       info.Browser,
		OS:            info.OS,
		Mobile:        info.Mobile,
		IsVerified:    true,
		VoteTimestamp: now,
	}

	update, err := s.ledger.RecordVote(ctx, vote)
	if err != nil {
		err = translateRecordErr(err)
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, "record vote failed")
		}
		s.reject(ctx, b, err)
		return nil, err
	}

	receipt := &Receipt{
		VoteID:         vote.ID,
		ElectionID:     vote.ElectionID,
		CandidateID:    vote.CandidateID,
		VoterID:        vote.VoterID,
		CastAt:         now,
		CandidateVotes: update.CandidateVotes,
		TotalVotes:     update.TotalVotes,
	}

	s.metrics.IncCast(b.ElectionID.String())
	s.logger.InfoContext(ctx, "vote recorded",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", b.ElectionID,
		"voter_id", b.VoterID,
	)
	s.emit(ctx, audit.Event{
		Subject:    b.VoterID.String(),
		Action:     string(audit.EventVoteCast),
		ElectionID: b.ElectionID.String(),
	})

	tally := map[string]any{
		"election_id":     b.ElectionID,
		"candidate_id":    b.CandidateID,
		"candidate_votes": update.CandidateVotes,
		"total_votes":     update.TotalVotes,
	}
	s.publish(realtime.Event{Type: realtime.EventVoteCast, Data: tally, At: now},
		realtime.ElectionRoom(b.ElectionID.String()), realtime.RoomAdmins)
	s.publish(realtime.Event{Type: realtime.EventVoteCast, Data: receipt, At: now},
		realtime.VoterRoom(b.VoterID.String()))

	return receipt, nil
}

func (s *Service) checkPreconditions(ctx context.Context, b Ballot, now time.Time) error {
	election, err := s.findElection(ctx, b.ElectionID)
	if err != nil {
		return err
	}
	if err := election.AcceptsVotes(now); err != nil {
		return err
	}

	candidate, err := s.ledger.FindCandidate(ctx, b.CandidateID)
	if errors.Is(err, sentinel.ErrNotFound) || (err == nil && candidate.ElectionID != b.ElectionID) {
		return dErrors.New(dErrors.CodeNotFound, "candidate not found in this election").
			WithReason(dErrors.ReasonCandidateNotFound)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	voter, err := s.voters.FindByVoterID(ctx, b.VoterID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "voter not found").WithReason(dErrors.ReasonVoterNotFound)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}
	return checkVoterEligible(voter)
}

func checkVoterEligible(v *votermodels.Voter) error {
	if !v.IsActive {
		return dErrors.New(dErrors.CodeInvalidState, "voter account is inactive").
			WithReason(dErrors.ReasonAccountInactive)
	}
	if missing := v.MissingSteps(); len(missing) > 0 {
		details := make([]string, 0, len(missing))
		for _, m := range missing {
			details = append(details, string(m))
		}
		return dErrors.New(dErrors.CodeInvalidState, "voter has not completed verification").
			WithReason(dErrors.ReasonVerificationIncomplete).
			WithDetails(details...)
	}
	return nil
}

func translateRecordErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "voter has already voted in this election").
			WithReason(dErrors.ReasonAlreadyVoted)
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "election or candidate not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vote")
	}
}

func (s *Service) reject(ctx context.Context, b Ballot, err error) {
	reason := string(dErrors.ReasonOf(err))
	if reason == "" {
		reason = string(dErrors.CodeOf(err))
	}
	s.metrics.IncRejected(reason)

	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"election_id", b.ElectionID,
		"voter_id", b.VoterID,
		"reason", reason,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		s.logger.ErrorContext(ctx, "vote failed", append(attrs, "error", err)...)
		return
	}
	s.logger.WarnContext(ctx, "vote rejected", attrs...)
	s.emit(ctx, audit.Event{
		Subject:    b.VoterID.String(),
		Action:     string(audit.EventVoteRejected),
		ElectionID: b.ElectionID.String(),
		Reason:     reason,
	})
}

// HasVoted reports whether the voter already has a verified vote in the election.
func (s *Service) HasVoted(ctx context.Context, voterID id.VoterID, electionID uuid.UUID) (bool, error) {
	if _, err := s.findElection(ctx, electionID); err != nil {
		return false, err
	}
	voted, err := s.ledger.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check vote")
	}
	return voted, nil
}

func (s *Service) findElection(ctx context.Context, electionID uuid.UUID) (*models.Election, error) {
	e, err := s.ledger.FindElection(ctx, electionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, errElectionNotFound()
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load election")
	}
	return e, nil
}

func errElectionNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "election not found").WithReason(dErrors.ReasonElectionNotFound)
}
