package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"votegate/internal/otp/metrics"
	"votegate/internal/otp/models"
	"votegate/internal/otp/throttle"
	"votegate/internal/platform/logger"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// CodeStore holds one-time codes and registration proofs. Redeem and ConsumeProof
// must be atomic: exactly one caller can succeed for a given code or proof.
type CodeStore interface {
	Issue(ctx context.Context, code *models.Code) error
	Redeem(ctx context.Context, contact string, purpose models.Purpose, value string, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	SaveProof(ctx context.Context, proof models.Proof) error
	HasProof(ctx context.Context, contact string, now time.Time) (bool, error)
	ConsumeProof(ctx context.Context, contact string, now time.Time) error
}

// Notifier delivers a code to its contact over email or SMS.
type Notifier interface {
	SendCode(ctx context.Context, contact string, channel models.Channel, code string, purpose models.Purpose, expiresAt time.Time) error
}

// Throttle limits sends per (contact, purpose).
type Throttle interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (throttle.Result, error)
}

type Config struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
	ProofTTL    time.Duration
	SendLimit   int
	SendWindow  time.Duration
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Length:      6,
		TTL:         10 * time.Minute,
		MaxAttempts: 5,
		ProofTTL:    30 * time.Minute,
		SendLimit:   5,
		SendWindow:  15 * time.Minute,
	}
}

// IssueResult reports when the code expires and whether the notifier accepted it.
type IssueResult struct {
	ExpiresAt time.Time
	Delivered bool
}

// Service issues and redeems one-time codes.
type Service struct {
	codes    CodeStore
	notifier Notifier
	throttle Throttle
	cfg      Config
	generate func(length int) (string, error)
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

func WithThrottle(t Throttle) Option {
	return func(s *Service) {
		s.throttle = t
	}
}

// WithCodeGenerator replaces the random digit generator (tests).
func WithCodeGenerator(fn func(length int) (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.generate = fn
		}
	}
}

func New(codes CodeStore, notifier Notifier, cfg Config, opts ...Option) *Service {
	s := &Service{
		codes:    codes,
		notifier: notifier,
		cfg:      cfg,
		generate: RandomDigits,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.throttle == nil {
		s.throttle = throttle.NewInMemory()
	}
	return s
}

// Issue creates a code for (contact, purpose), replacing any outstanding one, and hands
// it to the notifier. A notifier failure leaves the code in place and is reported
// through Delivered=false.
func (s *Service) Issue(ctx context.Context, contact string, channel models.Channel, purpose models.Purpose) (*IssueResult, error) {
	now := requestcontext.Now(ctx)
	if err := s.ReserveSend(ctx, contact, purpose); err != nil {
		return nil, err
	}

	value, err := s.generate(s.cfg.Length)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}
	code := &models.Code{
		Contact:     contact,
		Purpose:     purpose,
		Value:       value,
		ExpiresAt:   now.Add(s.cfg.TTL),
		MaxAttempts: s.cfg.MaxAttempts,
		CreatedAt:   now,
	}
	if err := s.codes.Issue(ctx, code); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store code")
	}
	s.metrics.IncIssued(string(purpose))

	result := &IssueResult{ExpiresAt: code.ExpiresAt, Delivered: true}
	if err := s.notifier.SendCode(ctx, contact, channel, value, purpose, code.ExpiresAt); err != nil {
		result.Delivered = false
		s.metrics.IncDeliveryFailure(string(channel))
		s.logger.WarnContext(ctx, "code delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"contact", logger.MaskContact(contact),
			"purpose", purpose,
			"error", err,
		)
	}
	return result, nil
}

// ReserveSend takes one send from the (contact, purpose) window without issuing a
// code. Issue calls it first; callers that skip issuing still spend the same slot.
func (s *Service) ReserveSend(ctx context.Context, contact string, purpose models.Purpose) error {
	if s.cfg.SendLimit <= 0 {
		return nil
	}
	res, err := s.throttle.Allow(ctx, models.Key(contact, purpose), s.cfg.SendLimit, s.cfg.SendWindow, requestcontext.Now(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check send limit")
	}
	if !res.Allowed {
		s.metrics.IncThrottled()
		return dErrors.Newf(dErrors.CodeTooManyRequests,
			"too many codes requested; try again after %s", res.ResetAt.UTC().Format(time.RFC3339)).
			WithReason(dErrors.ReasonTooManyRequests)
	}
	return nil
}

// Redeem consumes the code for (contact, purpose). Failures carry the precise reason:
// CodeInvalid (wrong or unknown), CodeExpired or CodeAlreadyUsed.
func (s *Service) Redeem(ctx context.Context, contact string, purpose models.Purpose, value string) error {
	now := requestcontext.Now(ctx)
	err := s.codes.Redeem(ctx, contact, purpose, strings.TrimSpace(value), now)
	switch {
	case err == nil:
		s.metrics.IncRedemption("ok")
		return nil
	case errors.Is(err, sentinel.ErrExpired):
		s.metrics.IncRedemption("expired")
		return dErrors.New(dErrors.CodeValidation, "code has expired").WithReason(dErrors.ReasonCodeExpired)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.metrics.IncRedemption("used")
		return dErrors.New(dErrors.CodeValidation, "code was already used").WithReason(dErrors.ReasonCodeAlreadyUsed)
	case errors.Is(err, models.ErrMismatch), errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncRedemption("invalid")
		return dErrors.New(dErrors.CodeValidation, "code is invalid").WithReason(dErrors.ReasonCodeInvalid)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem code")
	}
}

// SaveProof records that contact was verified by a registration code.
func (s *Service) SaveProof(ctx context.Context, contact string) error {
	proof := models.Proof{Contact: contact, ExpiresAt: requestcontext.Now(ctx).Add(s.cfg.ProofTTL)}
	if err := s.codes.SaveProof(ctx, proof); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification proof")
	}
	return nil
}

// HasProof reports whether contact holds a live registration proof.
func (s *Service) HasProof(ctx context.Context, contact string) (bool, error) {
	ok, err := s.codes.HasProof(ctx, contact, requestcontext.Now(ctx))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verification proof")
	}
	return ok, nil
}

// ConsumeProof removes the proof for contact after it has been used by a registration.
func (s *Service) ConsumeProof(ctx context.Context, contact string) error {
	err := s.codes.ConsumeProof(ctx, contact, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeInvalidState, "contact is not verified").WithReason(dErrors.ReasonContactNotVerified)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume verification proof")
	}
	return nil
}

// Sweep deletes expired codes and proofs as of now.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	n, err := s.codes.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	s.metrics.AddSwept(n)
	return n, nil
}

// StartSweeper runs Sweep every interval until ctx is cancelled. Sweep failures are
// logged and retried on the next tick.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.Sweep(ctx, time.Now())
			if err != nil {
				s.logger.ErrorContext(ctx, "otp sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.DebugContext(ctx, "otp sweep", "deleted", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RandomDigits returns a uniformly random numeric code of the given length.
func RandomDigits(length int) (string, error) {
	b := make([]byte, length)
	ten := big.NewInt(10)
	for i := range b {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b[i] = byte('0' + n.Int64())
	}
	return string(b), nil
}
