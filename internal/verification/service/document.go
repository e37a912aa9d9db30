package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"votegate/internal/realtime"
	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/requestcontext"
)

// VerifyDocument sets id_verified when the presented national id number and date of
// birth both match the voter's record.
func (s *Service) VerifyDocument(ctx context.Context, voterID id.VoterID, nationalID string, dob time.Time) (*models.Voter, error) {
	v, err := s.voters.FindByVoterID(ctx, voterID)
	if err != nil {
		return nil, translateVoterErr(err, "failed to load voter")
	}
	if !v.IsActive {
		return nil, errAccountInactive()
	}

	idMatch := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(nationalID)), []byte(v.NationalID)) == 1
	dobMatch := sameDay(dob, v.DateOfBirth)
	if !idMatch || !dobMatch {
		s.emit(ctx, audit.Event{
			Subject: voterID.String(),
			Action:  string(audit.EventAuthFailed),
			Reason:  "document_mismatch",
		})
		return nil, dErrors.New(dErrors.CodeValidation, "document details do not match the registration")
	}
	return s.markStep(ctx, voterID, models.StepID, audit.EventIDVerified, "")
}

// AdminVerifyID sets id_verified on an operator's authority.
func (s *Service) AdminVerifyID(ctx context.Context, voterID id.VoterID, actor string) (*models.Voter, error) {
	v, err := s.markStep(ctx, voterID, models.StepID, audit.EventAdminOverride, actor)
	if err != nil {
		return nil, err
	}
	s.publish(realtime.Event{
		Type: realtime.EventVoterUpdated,
		Data: progressPayload(v, models.StepID),
		At:   requestcontext.Now(ctx),
	}, realtime.RoomAdmins)
	return v, nil
}

// Deactivate soft-deletes a voter. Inactive voters cannot log in or vote.
func (s *Service) Deactivate(ctx context.Context, voterID id.VoterID, actor string) (*models.Voter, error) {
	now := requestcontext.Now(ctx)
	v, err := s.voters.Execute(ctx, voterID,
		func(v *models.Voter) error { return v.CanDeactivate() },
		func(v *models.Voter) { v.ApplyDeactivation(now) },
	)
	if err != nil {
		return nil, translateVoterErr(err, "failed to deactivate voter")
	}

	s.logger.InfoContext(ctx, "voter deactivated",
		"request_id", requestcontext.RequestID(ctx),
		"voter_id", voterID,
	)
	s.emit(ctx, audit.Event{Subject: voterID.String(), Action: string(audit.EventVoterDeactivated), ActorID: actor})
	s.publish(realtime.Event{
		Type: realtime.EventVoterUpdated,
		Data: progressPayload(v, ""),
		At:   now,
	}, realtime.RoomAdmins, realtime.VoterRoom(voterID.String()))
	return v, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
