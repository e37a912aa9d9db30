package service

import (
	"context"

	"github.com/google/uuid"

	"votegate/internal/biometric/matcher"
	biomodels "votegate/internal/biometric/models"
	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/requestcontext"
)

// EnrollResult describes a completed enrollment.
type EnrollResult struct {
	Voter    *models.Voter
	Template *biomodels.Template
	Replaced bool
}

// EnrollBiometric extracts a template from sample and makes it the voter's only
// active template, setting face_verified.
//
// caller is the voter proven by a full token, or "" when none was presented. The
// first enrollment needs no token; replacing an enrollment needs the voter's own.
func (s *Service) EnrollBiometric(ctx context.Context, voterID id.VoterID, sample biomodels.Sample, caller id.VoterID) (*EnrollResult, error) {
	ctx, span := tracer.Start(ctx, "verification.EnrollBiometric")
	defer span.End()

	v, err := s.voters.FindByVoterID(ctx, voterID)
	if err != nil {
		return nil, translateVoterErr(err, "failed to load voter")
	}
	if !v.IsActive {
		return nil, errAccountInactive()
	}
	if v.FaceVerified && caller != voterID {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "re-enrollment requires the voter's full token").
			WithReason(dErrors.ReasonTokenInvalid)
	}

	mctx, cancel := context.WithTimeout(ctx, s.cfg.MatcherTimeout)
	features, err := s.matcher.Extract(mctx, sample)
	cancel()
	if err != nil {
		s.metrics.IncEnrollment("rejected")
		return nil, matcher.ToDomainError(err)
	}

	now := requestcontext.Now(ctx)
	tpl := &biomodels.Template{
		ID:      uuid.NewString(),
		VoterID: voterID,
		Vector:  features.Vector,
		Capture: biomodels.Capture{
			Source:     sample.Source,
			Device:     sample.Device,
			Quality:    features.Quality,
			CapturedAt: now,
		},
		IsActive:  true,
		CreatedAt: now,
	}
	replaced, err := s.templates.Activate(ctx, tpl)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store biometric template")
	}

	wasFaceVerified := v.FaceVerified
	wasCompleted := v.Status == models.StatusCompleted
	updated, err := s.voters.Execute(ctx, voterID,
		func(v *models.Voter) error {
			if !v.IsActive {
				return errAccountInactive()
			}
			return nil
		},
		func(v *models.Voter) { v.AttachBiometric(tpl.ID, now) },
	)
	if err != nil {
		return nil, translateVoterErr(err, "failed to update voter")
	}

	s.metrics.IncEnrollment("ok")
	if !wasFaceVerified {
		s.metrics.IncStep(string(models.StepFace))
	}
	s.emit(ctx, audit.Event{Subject: voterID.String(), Action: string(audit.EventFaceEnrolled)})
	s.publishProgress(ctx, updated, models.StepFace, !wasCompleted && updated.Status == models.StatusCompleted)

	return &EnrollResult{Voter: updated, Template: tpl, Replaced: replaced != nil}, nil
}
