package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"votegate/internal/ballot/models"
	"votegate/internal/realtime"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// ElectionView is an election with its candidates in insertion order.
type ElectionView struct {
	Election   *models.Election
	Candidates []*models.Candidate
}

// Results is a tally snapshot with candidates sorted by votes.
type Results struct {
	Election   *models.Election
	Candidates []*models.Candidate
	TotalVotes int64
}

type ElectionInput struct {
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
}

type CandidateInput struct {
	Name  string
	Party string
}

// GetResults returns the current tallies, highest first, ties in insertion order.
func (s *Service) GetResults(ctx context.Context, electionID uuid.UUID) (*Results, error) {
	e, err := s.findElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.ledger.ListCandidates(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidates")
	}
	models.SortByVotes(candidates)
	return &Results{Election: e, Candidates: candidates, TotalVotes: e.TotalVotes}, nil
}

func (s *Service) ListElections(ctx context.Context) ([]ElectionView, error) {
	elections, err := s.ledger.ListElections(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list elections")
	}
	ids := make([]uuid.UUID, 0, len(elections))
	for _, e := range elections {
		ids = append(ids, e.ID)
	}
	byElection, err := s.ledger.CandidatesFor(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidates")
	}
	out := make([]ElectionView, 0, len(elections))
	for _, e := range elections {
		out = append(out, ElectionView{Election: e, Candidates: byElection[e.ID]})
	}
	return out, nil
}

func (s *Service) GetElection(ctx context.Context, electionID uuid.UUID) (*ElectionView, error) {
	e, err := s.findElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.ledger.ListCandidates(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidates")
	}
	return &ElectionView{Election: e, Candidates: candidates}, nil
}

// CreateElection adds a draft election.
func (s *Service) CreateElection(ctx context.Context, in ElectionInput, actor string) (*models.Election, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required").WithDetails("title")
	}
	if !in.EndAt.After(in.StartAt) {
		return nil, dErrors.New(dErrors.CodeValidation, "end must be after start").WithDetails("end_at")
	}

	now := requestcontext.Now(ctx)
	e := &models.Election{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusDraft,
		StartAt:     in.StartAt.UTC(),
		EndAt:       in.EndAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ledger.CreateElection(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create election")
	}
	s.electionChanged(ctx, e, actor, "created")
	return e, nil
}

// AddCandidate is allowed until the election opens.
func (s *Service) AddCandidate(ctx context.Context, electionID uuid.UUID, in CandidateInput, actor string) (*models.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required").WithDetails("name")
	}
	e, err := s.findElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if e.Status != models.StatusDraft && e.Status != models.StatusScheduled {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "candidates cannot be added to a %s election", e.Status)
	}

	c := &models.Candidate{
		ID:         uuid.New(),
		ElectionID: electionID,
		Name:       name,
		Party:      strings.TrimSpace(in.Party),
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.ledger.AddCandidate(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errElectionNotFound()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add candidate")
	}
	s.electionChanged(ctx, e, actor, "candidate_added")
	return c, nil
}

// SetStatus moves an election along draft → scheduled → active → completed, or to
// cancelled from any non-terminal state.
func (s *Service) SetStatus(ctx context.Context, electionID uuid.UUID, next models.ElectionStatus, actor string) (*models.Election, error) {
	now := requestcontext.Now(ctx)
	e, err := s.ledger.ExecuteElection(ctx, electionID,
		func(e *models.Election) error {
			if !e.Status.CanTransitionTo(next) {
				return dErrors.Newf(dErrors.CodeInvalidState, "cannot move election from %s to %s", e.Status, next)
			}
			return nil
		},
		func(e *models.Election) {
			e.Status = next
			e.UpdatedAt = now
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errElectionNotFound()
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update election")
	}
	s.electionChanged(ctx, e, actor, "status:"+string(next))
	return e, nil
}

// Reconcile recomputes the counters from the verified vote rows. Running it on a
// consistent election changes nothing.
func (s *Service) Reconcile(ctx context.Context, electionID uuid.UUID, actor string) (*models.Reconciliation, error) {
	rec, err := s.ledger.Reconcile(ctx, electionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, errElectionNotFound()
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reconcile tallies")
	}

	if rec.Adjusted > 0 || rec.TotalBefore != rec.TotalAfter {
		s.metrics.IncReconciled()
		s.logger.WarnContext(ctx, "tally drift repaired",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
			"total_before", rec.TotalBefore,
			"total_after", rec.TotalAfter,
			"candidates_adjusted", rec.Adjusted,
		)
	}
	s.emit(ctx, audit.Event{
		Subject:    electionID.String(),
		Action:     string(audit.EventTallyReconcile),
		ElectionID: electionID.String(),
		ActorID:    actor,
	})
	s.publish(realtime.Event{Type: realtime.EventElectionUpdated, Data: rec, At: requestcontext.Now(ctx)},
		realtime.ElectionRoom(electionID.String()), realtime.RoomAdmins)
	return rec, nil
}

func (s *Service) electionChanged(ctx context.Context, e *models.Election, actor, change string) {
	s.logger.InfoContext(ctx, "election changed",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", e.ID,
		"change", change,
		"actor", actor,
	)
	s.emit(ctx, audit.Event{
		Subject:    e.ID.String(),
		Action:     string(audit.EventElectionChange),
		ElectionID: e.ID.String(),
		Decision:   change,
		ActorID:    actor,
	})
	s.publish(realtime.Event{Type: realtime.EventElectionUpdated, Data: e, At: requestcontext.Now(ctx)},
		realtime.RoomPublic, realtime.ElectionRoom(e.ID.String()), realtime.RoomAdmins)
}
