// Package service implements the ballot ledger: election administration, vote
// casting and results.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"votegate/internal/ballot/metrics"
	"votegate/internal/ballot/models"
	"votegate/internal/platform/logger"
	"votegate/internal/realtime"
	votermodels "votegate/internal/voter/models"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/audit"
	"votegate/pkg/requestcontext"
)

var tracer = otel.Tracer("votegate/ballot")

// Ledger stores elections, candidates and votes. RecordVote must reject a second
// verified vote for the same (election, voter) with sentinel.ErrConflict.
type Ledger interface {
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

type VoterLookup interface {
	FindByVoterID(ctx context.Context, voterID id.VoterID) (*votermodels.Voter, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Broadcaster interface {
	Publish(event realtime.Event, rooms ...string)
}

type Service struct {
	ledger Ledger
	voters VoterLookup
	ipHash *ipHasher

	auditor     AuditPublisher
	broadcaster Broadcaster
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// New creates the ledger service. ipHashSalt keys the hash stored in place of the
// client address.
func New(ledger Ledger, voters VoterLookup, ipHashSalt string, opts ...Option) *Service {
	s := &Service{
		ledger: ledger,
		voters: voters,
		ipHash: newIPHasher(ipHashSalt),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) publish(event realtime.Event, rooms ...string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(event, rooms...)
}
