package handler

import (
	"time"

	"votegate/internal/auth/service"
	"votegate/internal/voter/models"
)

type tokenResponse struct {
	VoterID   string    `json:"voter_id"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	Phase     string    `json:"phase"`
	ExpiresAt time.Time `json:"expires_at"`
	// Next tells the client which call the token unlocks.
	Next string `json:"next,omitempty"`
}

type faceResponse struct {
	tokenResponse
	Confidence float64        `json:"confidence"`
	Voter      *voterResponse `json:"voter,omitempty"`
}

type voterResponse struct {
	VoterID            string     `json:"voter_id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Address            string     `json:"address,omitempty"`
	EmailVerified      bool       `json:"email_verified"`
	PhoneVerified      bool       `json:"phone_verified"`
	IDVerified         bool       `json:"id_verified"`
	FaceVerified       bool       `json:"face_verified"`
	IsActive           bool       `json:"is_active"`
	RegistrationStatus string     `json:"registration_status"`
	LastFaceAuthAt     *time.Time `json:"last_face_auth_at,omitempty"`
}

type logoutResponse struct {
	Revoked bool `json:"revoked"`
}

func toTokenResponse(t service.TokenResult) tokenResponse {
	return tokenResponse{
		VoterID:   t.VoterID.String(),
		Token:     t.Token,
		TokenType: "Bearer",
		Phase:     t.Phase,
		ExpiresAt: t.ExpiresAt,
	}
}

func toVoterResponse(v *models.Voter) *voterResponse {
	if v == nil {
		return nil
	}
	return &voterResponse{
		VoterID:            v.VoterID.String(),
		FirstName:          v.FirstName,
		LastName:           v.LastName,
		Email:              v.Email,
		Phone:              v.Phone,
		Address:            v.Address,
		EmailVerified:      v.EmailVerified,
		PhoneVerified:      v.PhoneVerified,
		IDVerified:         v.IDVerified,
		FaceVerified:       v.FaceVerified,
		IsActive:           v.IsActive,
		RegistrationStatus: string(v.Status),
		LastFaceAuthAt:     v.LastFaceAuthAt,
	}
}
