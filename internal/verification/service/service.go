// Package service drives a voter from registration through contact, document and
// biometric verification.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	biomodels "votegate/internal/biometric/models"
	"votegate/internal/biometric/matcher"
	otpmodels "votegate/internal/otp/models"
	otpservice "votegate/internal/otp/service"
	"votegate/internal/platform/logger"
	"votegate/internal/realtime"
	"votegate/internal/verification/metrics"
	"votegate/internal/voter/models"
	voterstore "votegate/internal/voter/store"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/password"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

var tracer = otel.Tracer("votegate/verification")

// VoterStore persists voters. Create enforces uniqueness of voter id, email, phone
// and national id and reports the colliding field through sentinel.FieldConflict.
type VoterStore interface {
	Create(ctx context.Context, v *models.Voter) error
	FindByVoterID(ctx context.Context, voterID id.VoterID) (*models.Voter, error)
	FindByContact(ctx context.Context, contact string) (*models.Voter, error)
	Execute(ctx context.Context, voterID id.VoterID, validate func(*models.Voter) error, mutate func(*models.Voter)) (*models.Voter, error)
}

// CodeService issues and redeems one-time codes and registration proofs.
type CodeService interface {
	Issue(ctx context.Context, contact string, channel otpmodels.Channel, purpose otpmodels.Purpose) (*otpservice.IssueResult, error)
	ReserveSend(ctx context.Context, contact string, purpose otpmodels.Purpose) error
	Redeem(ctx context.Context, contact string, purpose otpmodels.Purpose, value string) error
	SaveProof(ctx context.Context, contact string) error
	HasProof(ctx context.Context, contact string) (bool, error)
	ConsumeProof(ctx context.Context, contact string) error
}

// TemplateStore keeps the single active biometric template per voter.
type TemplateStore interface {
	Activate(ctx context.Context, t *biomodels.Template) (*biomodels.Template, error)
}

// IDGenerator produces unused public voter ids.
type IDGenerator interface {
	Generate(ctx context.Context) (id.VoterID, error)
}

// AuditPublisher records committed transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Broadcaster fans events out to realtime rooms without blocking.
type Broadcaster interface {
	Publish(event realtime.Event, rooms ...string)
}

type Config struct {
	MinimumAge     int
	MatcherTimeout time.Duration
	// CodeTTL is reported to callers whose refresh request was silently skipped.
	CodeTTL time.Duration
}

type Service struct {
	voters    VoterStore
	codes     CodeService
	templates TemplateStore
	matcher   matcher.FaceMatcher
	hasher    password.Hasher
	ids       IDGenerator
	cfg       Config

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

func New(
	voters VoterStore,
	codes CodeService,
	templates TemplateStore,
	faceMatcher matcher.FaceMatcher,
	hasher password.Hasher,
	ids IDGenerator,
	cfg Config,
	opts ...Option,
) *Service {
	if cfg.MinimumAge <= 0 {
		cfg.MinimumAge = 18
	}
	if cfg.MatcherTimeout <= 0 {
		cfg.MatcherTimeout = 5 * time.Second
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	s := &Service{
		voters:    voters,
		codes:     codes,
		templates: templates,
		matcher:   faceMatcher,
		hasher:    hasher,
		ids:       ids,
		cfg:       cfg,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetVoter returns the voter with voterID.
func (s *Service) GetVoter(ctx context.Context, voterID id.VoterID) (*models.Voter, error) {
	v, err := s.voters.FindByVoterID(ctx, voterID)
	if err != nil {
		return nil, translateVoterErr(err, "failed to load voter")
	}
	return v, nil
}

// markStep sets one verification flag and publishes the progress. Repeating a
// completed step is accepted and changes nothing.
func (s *Service) markStep(ctx context.Context, voterID id.VoterID, step models.Step, action audit.AuditEvent, actor string) (*models.Voter, error) {
	now := requestcontext.Now(ctx)
	changed, completedNow := false, false
	v, err := s.voters.Execute(ctx, voterID,
		func(v *models.Voter) error {
			if !v.IsActive {
				return errAccountInactive()
			}
			return nil
		},
		func(v *models.Voter) {
			wasCompleted := v.Status == models.StatusCompleted
			changed = v.MarkVerified(step, now)
			completedNow = changed && !wasCompleted && v.Status == models.StatusCompleted
		},
	)
	if err != nil {
		return nil, translateVoterErr(err, "failed to update verification status")
	}
	if !changed {
		return v, nil
	}

	s.metrics.IncStep(string(step))
	s.emit(ctx, audit.Event{Subject: v.VoterID.String(), Action: string(action), ActorID: actor})
	s.publishProgress(ctx, v, step, completedNow)
	return v, nil
}

func (s *Service) publishProgress(ctx context.Context, v *models.Voter, step models.Step, completedNow bool) {
	if completedNow {
		s.metrics.IncCompleted()
		s.emit(ctx, audit.Event{Subject: v.VoterID.String(), Action: string(audit.EventVoterCompleted)})
	}
	s.publish(realtime.Event{
		Type: realtime.EventVerificationProgress,
		Data: progressPayload(v, step),
		At:   requestcontext.Now(ctx),
	}, realtime.VoterRoom(v.VoterID.String()), realtime.RoomAdmins)
}

type progress struct {
	VoterID            string   `json:"voter_id"`
	Step               string   `json:"step,omitempty"`
	MissingSteps       []string `json:"missing_steps"`
	RegistrationStatus string   `json:"registration_status"`
	IsActive           bool     `json:"is_active"`
}

func progressPayload(v *models.Voter, step models.Step) progress {
	missing := make([]string, 0, 4)
	for _, m := range v.MissingSteps() {
		missing = append(missing, string(m))
	}
	return progress{
		VoterID:            v.VoterID.String(),
		Step:               string(step),
		MissingSteps:       missing,
		RegistrationStatus: string(v.Status),
		IsActive:           v.IsActive,
	}
}

// emit records an audit event. Failures are logged and never fail the operation.
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

func errAccountInactive() error {
	return dErrors.New(dErrors.CodeInvalidState, "voter account is inactive").WithReason(dErrors.ReasonAccountInactive)
}

func errVoterNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "voter not found").WithReason(dErrors.ReasonVoterNotFound)
}

// translateVoterErr maps store sentinels to domain errors. Domain errors returned by
// validate callbacks pass through unchanged.
func translateVoterErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return errVoterNotFound()
	case errors.Is(err, sentinel.ErrConflict):
		return conflictErr(sentinel.ConflictField(err))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func conflictErr(field string) error {
	var reason dErrors.Reason
	switch field {
	case voterstore.FieldEmail:
		reason = dErrors.ReasonDuplicateEmail
	case voterstore.FieldPhone:
		reason = dErrors.ReasonDuplicatePhone
	case voterstore.FieldNationalID:
		reason = dErrors.ReasonDuplicateNationalID
	case voterstore.FieldVoterID:
		reason = dErrors.ReasonDuplicateVoterID
	default:
		return dErrors.New(dErrors.CodeConflict, "voter already exists")
	}
	return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("%s is already registered", field)).
		WithReason(reason).
		WithDetails(field)
}
