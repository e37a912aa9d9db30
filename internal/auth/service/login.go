package service

import (
	"context"
	"errors"
	"time"

	"votegate/internal/auth/token"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// TokenResult is a freshly issued token.
type TokenResult struct {
	VoterID   id.VoterID
	Token     string
	Phase     string
	ExpiresAt time.Time
}

// VerifyCredentials checks the password of a fully verified, active voter and
// issues a limited token usable only for face verification.
//
// An unknown voter id and a wrong password fail identically, and both pay for a
// password verification.
func (s *Service) VerifyCredentials(ctx context.Context, voterID id.VoterID, plain string) (*TokenResult, error) {
	now := requestcontext.Now(ctx)

	v, err := s.voters.FindByVoterID(ctx, voterID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}
	if v == nil {
		s.verifyDecoy(plain)
		s.authFailure(ctx, voterID, token.PhaseLimited, "unknown_voter")
		return nil, errBadCredentials()
	}

	ok, err := s.hasher.Verify(plain, v.PasswordHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if !ok {
		s.authFailure(ctx, voterID, token.PhaseLimited, "bad_password")
		return nil, errBadCredentials()
	}

	if err := checkEligible(v); err != nil {
		s.authFailure(ctx, voterID, token.PhaseLimited, string(dErrors.ReasonOf(err)))
		return nil, err
	}

	issued, err := s.tokens.IssueLimited(v.VoterID, v.Email, s.cfg.LimitedTokenTTL, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncLogin(token.PhaseLimited, "ok")
	s.metrics.IncIssued(token.PhaseLimited)
	s.emit(ctx, audit.Event{Subject: v.VoterID.String(), Action: string(audit.EventLoginPassword)})
	s.logger.InfoContext(ctx, "password accepted",
		"request_id", requestcontext.RequestID(ctx),
		"voter_id", v.VoterID,
	)
	return &TokenResult{
		VoterID:   v.VoterID,
		Token:     issued.Token,
		Phase:     token.PhaseLimited,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

func errBadCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid voter id or password")
}

// verifyDecoy runs a password verification whose result is discarded.
func (s *Service) verifyDecoy(plain string) {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("votegate-decoy-password")
		if err != nil {
			s.logger.Error("failed to prepare decoy hash", "error", err)
			return
		}
		s.decoy = hash
	})
	if s.decoy == "" {
		return
	}
	_, _ = s.hasher.Verify(plain, s.decoy)
}
