package service

import (
	"context"
	"errors"
	"time"

	otpmodels "votegate/internal/otp/models"
	"votegate/internal/platform/logger"
	"votegate/internal/voter/models"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// CodeRequestResult is what a caller learns about a code request. For refresh
// purposes it is identical whether or not the contact belongs to a voter.
type CodeRequestResult struct {
	Contact   string
	Channel   otpmodels.Channel
	Sent      bool
	Delivered bool
	ExpiresAt time.Time
}

// CodeRedemptionResult reports what a redeemed code unlocked.
type CodeRedemptionResult struct {
	Contact string
	Purpose otpmodels.Purpose
	// Voter is set when the code refreshed a flag on an existing voter.
	Voter *models.Voter
	// ProofValid is set for registration codes.
	ProofValid bool
}

// RequestContactCode issues a code for (contact, purpose) and hands it to the notifier.
//
// A registration code for a contact already bound to a voter fails with
// DuplicateContact. Refresh codes for unknown contacts spend a send slot and then
// report success without issuing anything, so neither the result nor the send
// limit tells a caller whether the contact belongs to a voter.
func (s *Service) RequestContactCode(ctx context.Context, rawContact string, purpose otpmodels.Purpose) (*CodeRequestResult, error) {
	contact, channel, err := validateContact(rawContact, purpose)
	if err != nil {
		return nil, err
	}

	_, lookupErr := s.voters.FindByContact(ctx, contact)
	exists := lookupErr == nil
	if lookupErr != nil && !errors.Is(lookupErr, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(lookupErr, dErrors.CodeInternal, "failed to look up contact")
	}

	if purpose == otpmodels.PurposeRegistration && exists {
		return nil, dErrors.New(dErrors.CodeConflict, "contact is already registered").
			WithReason(dErrors.ReasonDuplicateContact)
	}

	if purpose != otpmodels.PurposeRegistration && !exists {
		if err := s.codes.ReserveSend(ctx, contact, purpose); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "code requested for unknown contact",
			"request_id", requestcontext.RequestID(ctx),
			"contact", logger.MaskContact(contact),
			"purpose", purpose,
		)
		return &CodeRequestResult{
			Contact:   contact,
			Channel:   channel,
			Sent:      true,
			Delivered: true,
			ExpiresAt: requestcontext.Now(ctx).Add(s.cfg.CodeTTL),
		}, nil
	}

	issued, err := s.codes.Issue(ctx, contact, channel, purpose)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Subject:  logger.MaskContact(contact),
		Action:   string(audit.EventCodeIssued),
		Decision: string(purpose),
	})
	return &CodeRequestResult{
		Contact:   contact,
		Channel:   channel,
		Sent:      true,
		Delivered: issued.Delivered,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// RedeemContactCode consumes a code. A registration code leaves a proof that the
// contact is verified for a later Register call; a refresh code sets the voter's
// email or phone flag.
func (s *Service) RedeemContactCode(ctx context.Context, rawContact string, purpose otpmodels.Purpose, code string) (*CodeRedemptionResult, error) {
	contact, channel, err := validateContact(rawContact, purpose)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "code is required")
	}

	if err := s.codes.Redeem(ctx, contact, purpose, code); err != nil {
		s.emit(ctx, audit.Event{
			Subject:  logger.MaskContact(contact),
			Action:   string(audit.EventCodeRejected),
			Decision: string(purpose),
			Reason:   string(dErrors.ReasonOf(err)),
		})
		return nil, err
	}
	s.emit(ctx, audit.Event{
		Subject:  logger.MaskContact(contact),
		Action:   string(audit.EventCodeRedeemed),
		Decision: string(purpose),
	})

	if purpose == otpmodels.PurposeRegistration {
		if err := s.codes.SaveProof(ctx, contact); err != nil {
			return nil, err
		}
		return &CodeRedemptionResult{Contact: contact, Purpose: purpose, ProofValid: true}, nil
	}

	v, err := s.voters.FindByContact(ctx, contact)
	if err != nil {
		return nil, translateVoterErr(err, "failed to look up contact")
	}
	step, action := models.StepEmail, audit.EventEmailVerified
	if channel == otpmodels.ChannelPhone {
		step, action = models.StepPhone, audit.EventPhoneVerified
	}
	updated, err := s.markStep(ctx, v.VoterID, step, action, "")
	if err != nil {
		return nil, err
	}
	return &CodeRedemptionResult{Contact: contact, Purpose: purpose, Voter: updated}, nil
}

// validateContact normalizes rawContact and checks it fits purpose.
func validateContact(rawContact string, purpose otpmodels.Purpose) (string, otpmodels.Channel, error) {
	if !purpose.IsValid() {
		return "", "", dErrors.New(dErrors.CodeValidation, "purpose must be registration, email_verification or phone_verification")
	}
	contact, channel, err := otpmodels.NormalizeContact(rawContact)
	if err != nil {
		return "", "", err
	}
	if required, ok := purpose.RequiredChannel(); ok && required != channel {
		return "", "", dErrors.Newf(dErrors.CodeValidation, "%s requires a %s contact", purpose, required)
	}
	return contact, channel, nil
}
