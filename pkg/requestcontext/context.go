// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free of net/http
// lets services depend on it without pulling in transport code.
//
//	voterID := requestcontext.VoterID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "votegate/pkg/domain"
)

type (
	voterIDKey     struct{}
	roleKey        struct{}
	tokenIDKey     struct{}
	tokenExpiryKey struct{}
	contactKey     struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

var (
	ContextKeyVoterID     = voterIDKey{}
	ContextKeyRole        = roleKey{}
	ContextKeyTokenID     = tokenIDKey{}
	ContextKeyTokenExpiry = tokenExpiryKey{}
	ContextKeyContact     = contactKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Authenticated voter
// -----------------------------------------------------------------------------

// VoterID returns the authenticated voter, or "" when the request is anonymous.
func VoterID(ctx context.Context) id.VoterID {
	if v, ok := ctx.Value(ContextKeyVoterID).(id.VoterID); ok {
		return v
	}
	return ""
}

// Role returns the role claim of the authenticated principal.
func Role(ctx context.Context) string {
	if r, ok := ctx.Value(ContextKeyRole).(string); ok {
		return r
	}
	return ""
}

// Contact returns the contact claim carried by the presented token.
func Contact(ctx context.Context) string {
	if c, ok := ctx.Value(ContextKeyContact).(string); ok {
		return c
	}
	return ""
}

// TokenID returns the jti of the presented token.
func TokenID(ctx context.Context) string {
	if j, ok := ctx.Value(ContextKeyTokenID).(string); ok {
		return j
	}
	return ""
}

// TokenExpiry returns the expiry of the presented token.
func TokenExpiry(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyTokenExpiry).(time.Time); ok {
		return t
	}
	return time.Time{}
}

// WithVoter injects the authenticated voter claims.
func WithVoter(ctx context.Context, voterID id.VoterID, role, contact string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyVoterID, voterID)
	ctx = context.WithValue(ctx, ContextKeyRole, role)
	ctx = context.WithValue(ctx, ContextKeyContact, contact)
	return ctx
}

// WithToken injects the presented token's identifier and expiry.
func WithToken(ctx context.Context, jti string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, ContextKeyTokenID, jti)
	return context.WithValue(ctx, ContextKeyTokenExpiry, expiresAt)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	return context.WithValue(ctx, ContextKeyUserAgent, userAgent)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now() outside HTTP requests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
