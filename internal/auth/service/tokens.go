package service

import (
	"context"
	"time"

	"votegate/internal/auth/token"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	authmw "votegate/pkg/platform/middleware/auth"
	"votegate/pkg/requestcontext"
)

// VerifyToken validates signature, audience and expiry, then consults the
// revocation list. It satisfies authmw.TokenVerifier.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*authmw.Claims, error) {
	claims, err := s.tokens.Validate(tokenString, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked").
			WithReason(dErrors.ReasonTokenInvalid)
	}

	return &authmw.Claims{
		VoterID:   id.VoterID(claims.VoterID),
		Contact:   claims.Contact,
		Role:      claims.Role,
		Phase:     claims.Phase,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes a full token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, voterID id.VoterID, jti string, expiresAt time.Time) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token required")
	}
	ttl := expiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.metrics.IncRevoked()
	s.emit(ctx, audit.Event{Subject: voterID.String(), Action: string(audit.EventTokenRevoked), Decision: token.PhaseFull})
	s.logger.InfoContext(ctx, "voter logged out",
		"request_id", requestcontext.RequestID(ctx),
		"voter_id", voterID,
	)
	return nil
}
