package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/requestcontext"
)

// Token phases. A limited token proves the password step only.
const (
	PhaseLimited = "limited"
	PhaseFull    = "full"
)

// Claims is the verified view of a bearer token the middleware needs.
type Claims struct {
	VoterID   id.VoterID
	Contact   string
	Role      string
	Phase     string
	JTI       string
	ExpiresAt time.Time
}

// TokenVerifier validates signature, expiry and revocation of a bearer token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, reason, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","reason":"%s","error_description":"%s"}`, errCode, reason, errDesc))
}

// BearerToken extracts the token from an Authorization header, or "".
func BearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireToken admits requests carrying a valid, unrevoked token of the given phase.
// Missing or garbled headers are answered exactly like an invalid token.
func RequireToken(verifier TokenVerifier, phase string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token := BearerToken(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", string(dErrors.ReasonTokenInvalid), "Invalid or expired token")
				return
			}

			claims, err := verifier.VerifyToken(ctx, token)
			if err != nil {
				if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.ErrorContext(ctx, "failed to verify token",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "", "Failed to validate token")
					return
				}
				reason := dErrors.ReasonOf(err)
				if reason == "" {
					reason = dErrors.ReasonTokenInvalid
				}
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", string(reason), "Invalid or expired token")
				return
			}

			if claims.Phase != phase {
				logger.WarnContext(ctx, "unauthorized access - wrong token phase",
					"request_id", requestID,
					"phase", claims.Phase,
					"required", phase,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", string(dErrors.ReasonTokenInvalid), "Token not valid for this operation")
				return
			}

			ctx = requestcontext.WithVoter(ctx, claims.VoterID, claims.Role, claims.Contact)
			ctx = requestcontext.WithToken(ctx, claims.JTI, claims.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVoter admits full tokens only.
func RequireVoter(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireToken(verifier, PhaseFull, logger)
}
