// Package token signs and validates the two voter token phases.
//
// A limited token proves the password step and is only accepted by the face
// verification endpoint. A full token is issued after a face match and unlocks
// the protected routes. The phases use distinct audiences so neither can be
// replayed where the other is expected.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

const (
	PhaseLimited = "limited"
	PhaseFull    = "full"

	RoleVoter = "voter"
)

// Claims are the voter token claims. Role is empty on limited tokens.
type Claims struct {
	VoterID string `json:"voter_id"`
	Contact string `json:"contact,omitempty"`
	Role    string `json:"role,omitempty"`
	Phase   string `json:"phase"`
	jwt.RegisteredClaims
}

// Issued is a signed token plus the values callers need to track it.
type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
}

func New(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// Audience returns the audience bound to phase.
func (s *Service) Audience(phase string) string {
	return s.issuer + ":" + phase
}

// IssueLimited signs a short-lived token carrying only the voter id and contact.
func (s *Service) IssueLimited(voterID id.VoterID, contact string, ttl time.Duration, now time.Time) (*Issued, error) {
	return s.issue(Claims{VoterID: voterID.String(), Contact: contact, Phase: PhaseLimited}, ttl, now)
}

// IssueFull signs the authoritative token.
func (s *Service) IssueFull(voterID id.VoterID, contact, role string, ttl time.Duration, now time.Time) (*Issued, error) {
	return s.issue(Claims{VoterID: voterID.String(), Contact: contact, Role: role, Phase: PhaseFull}, ttl, now)
}

func (s *Service) issue(claims Claims, ttl time.Duration, now time.Time) (*Issued, error) {
	jti := uuid.NewString()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.VoterID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		Audience:  []string{s.Audience(claims.Phase)},
		ID:        jti,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, err
	}
	// NumericDate truncates to seconds; report what the token actually carries.
	return &Issued{Token: signed, JTI: jti, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate checks signature, issuer, expiry (as of now) and that the audience
// matches the phase claimed by the token.
func (s *Service) Validate(tokenString string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errExpired()
		}
		return nil, errInvalid()
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errInvalid()
	}
	if claims.Phase != PhaseLimited && claims.Phase != PhaseFull {
		return nil, errInvalid()
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != s.Audience(claims.Phase) {
		return nil, errInvalid()
	}
	if !id.ValidVoterID(claims.VoterID) || claims.ID == "" {
		return nil, errInvalid()
	}
	return claims, nil
}

func errExpired() error {
	return dErrors.New(dErrors.CodeUnauthorized, "token has expired").WithReason(dErrors.ReasonTokenExpired)
}

func errInvalid() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid token").WithReason(dErrors.ReasonTokenInvalid)
}
