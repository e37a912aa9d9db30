package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"votegate/internal/auth/token"
	"votegate/internal/biometric/matcher"
	biomodels "votegate/internal/biometric/models"
	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// FaceLogin is the second login phase. The limited token has already been
// validated; its id and expiry are needed to consume it.
type FaceLogin struct {
	VoterID       id.VoterID
	LimitedJTI    string
	LimitedExpiry time.Time
	Sample        biomodels.Sample
}

// FaceResult carries the full token and the confidence that earned it.
type FaceResult struct {
	TokenResult
	Confidence float64
	Voter      *models.Voter
}

// VerifyFace scores a live sample against the voter's active template. A score
// strictly above the threshold consumes the limited token and issues a full one.
// A mismatch reports the score and leaves the limited token usable.
func (s *Service) VerifyFace(ctx context.Context, in FaceLogin) (*FaceResult, error) {
	ctx, span := tracer.Start(ctx, "auth.VerifyFace")
	defer span.End()
	span.SetAttributes(attribute.String("voter.id", in.VoterID.String()))

	now := requestcontext.Now(ctx)

	v, err := s.voters.FindByVoterID(ctx, in.VoterID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token").WithReason(dErrors.ReasonTokenInvalid)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}
	if err := checkEligible(v); err != nil {
		s.authFailure(ctx, in.VoterID, token.PhaseFull, string(dErrors.ReasonOf(err)))
		return nil, err
	}

	tpl, err := s.templates.FindActive(ctx, in.VoterID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeInvalidState, "no active biometric enrollment").
			WithReason(dErrors.ReasonVerificationIncomplete).
			WithDetails(string(models.StepFace))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load biometric template")
	}

	mctx, cancel := context.WithTimeout(ctx, s.cfg.MatcherTimeout)
	score, err := s.matcher.Score(mctx, tpl.Vector, in.Sample)
	cancel()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "face matcher failed")
		s.metrics.IncLogin(token.PhaseFull, "matcher_error")
		return nil, matcher.ToDomainError(err)
	}
	s.metrics.ObserveFaceScore(score)
	span.SetAttributes(attribute.Float64("face.score", score))

	if score <= s.cfg.FaceThreshold {
		s.authFailure(ctx, in.VoterID, token.PhaseFull, string(dErrors.ReasonFaceMismatch))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "face did not match").
			WithReason(dErrors.ReasonFaceMismatch).
			WithDetails(fmt.Sprintf("confidence=%.4f", score))
	}

	if ttl := in.LimitedExpiry.Sub(now); in.LimitedJTI != "" && ttl > 0 {
		if err := s.trl.RevokeToken(ctx, in.LimitedJTI, ttl); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume limited token")
		}
	}

	issued, err := s.tokens.IssueFull(v.VoterID, v.Email, token.RoleVoter, s.cfg.FullTokenTTL, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	updated, err := s.voters.Execute(ctx, v.VoterID,
		func(*models.Voter) error { return nil },
		func(v *models.Voter) { v.RecordFaceLogin(now) },
	)
	if err != nil {
		// The token is already valid; a missed timestamp is not worth failing the login.
		s.logger.WarnContext(ctx, "failed to record face login",
			"request_id", requestcontext.RequestID(ctx),
			"voter_id", v.VoterID,
			"error", err,
		)
		updated = v
	}

	s.metrics.IncLogin(token.PhaseFull, "ok")
	s.metrics.IncIssued(token.PhaseFull)
	s.emit(ctx, audit.Event{
		Subject:  v.VoterID.String(),
		Action:   string(audit.EventLoginFace),
		Decision: fmt.Sprintf("%.4f", score),
	})
	return &FaceResult{
		TokenResult: TokenResult{
			VoterID:   v.VoterID,
			Token:     issued.Token,
			Phase:     token.PhaseFull,
			ExpiresAt: issued.ExpiresAt,
		},
		Confidence: score,
		Voter:      updated,
	}, nil
}
