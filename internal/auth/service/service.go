// Package service implements two-phase voter login: a password check that yields a
// limited token, then a face match that exchanges it for a full token.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"votegate/internal/auth/metrics"
	"votegate/internal/auth/token"
	"votegate/internal/biometric/matcher"
	biomodels "votegate/internal/biometric/models"
	"votegate/internal/platform/logger"
	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/password"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

var tracer = otel.Tracer("votegate/auth")

// Band the face threshold is expected to fall in. Values outside it are allowed
// but logged at startup.
const (
	minRecommendedThreshold = 0.6
	maxRecommendedThreshold = 0.7
)

type VoterStore interface {
	FindByVoterID(ctx context.Context, voterID id.VoterID) (*models.Voter, error)
	Execute(ctx context.Context, voterID id.VoterID, validate func(*models.Voter) error, mutate func(*models.Voter)) (*models.Voter, error)
}

type TemplateStore interface {
	FindActive(ctx context.Context, voterID id.VoterID) (*biomodels.Template, error)
}

// TokenService signs and validates voter tokens.
type TokenService interface {
	IssueLimited(voterID id.VoterID, contact string, ttl time.Duration, now time.Time) (*token.Issued, error)
	IssueFull(voterID id.VoterID, contact, role string, ttl time.Duration, now time.Time) (*token.Issued, error)
	Validate(tokenString string, now time.Time) (*token.Claims, error)
}

// RevocationList remembers token ids that must be rejected until they expire.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Config struct {
	LimitedTokenTTL time.Duration
	FullTokenTTL    time.Duration
	// FaceThreshold is exclusive: a score must be strictly greater to pass.
	FaceThreshold  float64
	MatcherTimeout time.Duration
}

type Service struct {
	voters    VoterStore
	templates TemplateStore
	matcher   matcher.FaceMatcher
	hasher    password.Hasher
	tokens    TokenService
	trl       RevocationList
	cfg       Config

	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics

	// decoy is hashed once and verified against for unknown voter ids.
	decoyOnce sync.Once
	decoy     string
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

func New(
	voters VoterStore,
	templates TemplateStore,
	faceMatcher matcher.FaceMatcher,
	hasher password.Hasher,
	tokens TokenService,
	trl RevocationList,
	cfg Config,
	opts ...Option,
) *Service {
	if cfg.LimitedTokenTTL <= 0 {
		cfg.LimitedTokenTTL = 5 * time.Minute
	}
	if cfg.FullTokenTTL <= 0 {
		cfg.FullTokenTTL = 24 * time.Hour
	}
	if cfg.FaceThreshold <= 0 {
		cfg.FaceThreshold = 0.65
	}
	if cfg.MatcherTimeout <= 0 {
		cfg.MatcherTimeout = 5 * time.Second
	}
	s := &Service{
		voters:    voters,
		templates: templates,
		matcher:   faceMatcher,
		hasher:    hasher,
		tokens:    tokens,
		trl:       trl,
		cfg:       cfg,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.FaceThreshold < minRecommendedThreshold || cfg.FaceThreshold > maxRecommendedThreshold {
		s.logger.Warn("face match threshold outside recommended band",
			"threshold", cfg.FaceThreshold,
			"min", minRecommendedThreshold,
			"max", maxRecommendedThreshold,
		)
	}
	return s
}

// Me returns the profile of the authenticated voter.
func (s *Service) Me(ctx context.Context, voterID id.VoterID) (*models.Voter, error) {
	v, err := s.voters.FindByVoterID(ctx, voterID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "voter not found").WithReason(dErrors.ReasonVoterNotFound)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}
	return v, nil
}

// checkEligible is the gate both login phases apply to the stored voter.
func checkEligible(v *models.Voter) error {
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

// authFailure records a rejected login attempt.
func (s *Service) authFailure(ctx context.Context, voterID id.VoterID, phase, reason string) {
	s.metrics.IncLogin(phase, reason)
	s.logger.WarnContext(ctx, "login rejected",
		"request_id", requestcontext.RequestID(ctx),
		"voter_id", voterID,
		"phase", phase,
		"reason", reason,
	)
	s.emit(ctx, audit.Event{
		Subject:  voterID.String(),
		Action:   string(audit.EventAuthFailed),
		Decision: phase,
		Reason:   reason,
	})
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
