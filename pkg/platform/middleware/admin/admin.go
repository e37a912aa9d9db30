package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"votegate/pkg/requestcontext"
)

// HeaderAdminToken carries the operator token on admin routes.
const HeaderAdminToken = "X-Admin-Token"

// ValidToken compares presented against expected in constant time.
// An empty expected token disables admin access entirely.
func ValidToken(expected, presented string) bool {
	if expected == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ValidToken(expectedToken, r.Header.Get(HeaderAdminToken)) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}
			ctx := requestcontext.WithVoter(r.Context(), "", "admin", "")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
