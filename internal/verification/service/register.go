package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	otpmodels "votegate/internal/otp/models"
	"votegate/internal/platform/logger"
	"votegate/internal/realtime"
	"votegate/internal/voter/models"
	voterstore "votegate/internal/voter/store"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// RegistrationInput is a validated registration payload.
type RegistrationInput struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	DateOfBirth   time.Time
	NationalID    string
	Address       string
	Password      string
	EmailVerified bool
	PhoneVerified bool
}

// Register creates a pending voter. Email and phone must already be verified by
// redeemed registration codes; the proofs are consumed on success.
func (s *Service) Register(ctx context.Context, in RegistrationInput) (*models.Voter, error) {
	ctx, span := tracer.Start(ctx, "verification.Register")
	defer span.End()

	v, err := s.register(ctx, in)
	if err != nil {
		s.metrics.IncRegistration(registrationOutcome(err))
		span.SetAttributes(attribute.String("error.reason", string(dErrors.ReasonOf(err))))
		return nil, err
	}
	s.metrics.IncRegistration("ok")
	span.SetAttributes(attribute.String("voter.id", v.VoterID.String()))
	return v, nil
}

func (s *Service) register(ctx context.Context, in RegistrationInput) (*models.Voter, error) {
	now := requestcontext.Now(ctx)

	email, err := normalizeAs(in.Email, otpmodels.ChannelEmail, "email")
	if err != nil {
		return nil, err
	}
	phone, err := normalizeAs(in.Phone, otpmodels.ChannelPhone, "phone")
	if err != nil {
		return nil, err
	}
	if in.DateOfBirth.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date_of_birth is required")
	}
	if age := models.AgeOn(in.DateOfBirth, now); age < s.cfg.MinimumAge {
		return nil, dErrors.Newf(dErrors.CodeValidation, "voter must be at least %d years old", s.cfg.MinimumAge).
			WithReason(dErrors.ReasonUnderage)
	}

	var unverified []string
	if !in.EmailVerified {
		unverified = append(unverified, string(models.StepEmail))
	}
	if !in.PhoneVerified {
		unverified = append(unverified, string(models.StepPhone))
	}
	for _, c := range []struct{ step, contact string }{
		{string(models.StepEmail), email},
		{string(models.StepPhone), phone},
	} {
		if slices.Contains(unverified, c.step) {
			continue
		}
		ok, err := s.codes.HasProof(ctx, c.contact)
		if err != nil {
			return nil, err
		}
		if !ok {
			unverified = append(unverified, c.step)
		}
	}
	if len(unverified) > 0 {
		return nil, dErrors.New(dErrors.CodeInvalidState, "email and phone must be verified before registering").
			WithReason(dErrors.ReasonContactNotVerified).
			WithDetails(unverified...)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	v := &models.Voter{
		ID:            uuid.New(),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         email,
		Phone:         phone,
		NationalID:    strings.TrimSpace(in.NationalID),
		DateOfBirth:   in.DateOfBirth,
		Address:       strings.TrimSpace(in.Address),
		PasswordHash:  hash,
		EmailVerified: true,
		PhoneVerified: true,
		IsActive:      true,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.create(ctx, v); err != nil {
		return nil, err
	}

	for _, contact := range []string{email, phone} {
		if err := s.codes.ConsumeProof(ctx, contact); err != nil {
			s.logger.WarnContext(ctx, "failed to consume verification proof",
				"request_id", requestcontext.RequestID(ctx),
				"contact", logger.MaskContact(contact),
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "voter registered",
		"request_id", requestcontext.RequestID(ctx),
		"voter_id", v.VoterID,
	)
	s.emit(ctx, audit.Event{Subject: v.VoterID.String(), Action: string(audit.EventVoterRegistered)})
	s.publish(realtime.Event{
		Type: realtime.EventRegistrationCreated,
		Data: progressPayload(v, ""),
		At:   now,
	}, realtime.RoomAdmins)
	return v, nil
}

// create assigns a voter id and inserts v. A voter id collision at insert time
// (another registration took the id after the generator checked it) gets one
// fresh id before giving up.
func (s *Service) create(ctx context.Context, v *models.Voter) error {
	for attempt := 0; attempt < 2; attempt++ {
		voterID, err := s.ids.Generate(ctx)
		if err != nil {
			var de *dErrors.Error
			if errors.As(err, &de) {
				return err
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate voter id")
		}
		v.VoterID = voterID

		err = s.voters.Create(ctx, v)
		if err == nil {
			return nil
		}
		if errors.Is(err, sentinel.ErrConflict) && sentinel.ConflictField(err) == voterstore.FieldVoterID {
			continue
		}
		return translateVoterErr(err, "failed to create voter")
	}
	return dErrors.New(dErrors.CodeInternal, "could not allocate a unique voter id").
		WithReason(dErrors.ReasonGenerationExhausted)
}

func normalizeAs(raw string, want otpmodels.Channel, field string) (string, error) {
	contact, channel, err := otpmodels.NormalizeContact(raw)
	if err != nil || channel != want {
		return "", dErrors.Newf(dErrors.CodeValidation, "%s is not a valid %s", field, want).WithDetails(field)
	}
	return contact, nil
}

func registrationOutcome(err error) string {
	if r := dErrors.ReasonOf(err); r != "" {
		return string(r)
	}
	return string(dErrors.CodeOf(err))
}

