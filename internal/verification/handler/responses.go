package handler

import (
	"time"

	"votegate/internal/voter/models"
)

type codeRequestResponse struct {
	Contact   string    `json:"contact"`
	Channel   string    `json:"channel"`
	Sent      bool      `json:"sent"`
	Delivered bool      `json:"delivered"`
	ExpiresAt time.Time `json:"expires_at"`
}

type codeRedemptionResponse struct {
	Verified bool           `json:"verified"`
	Contact  string         `json:"contact"`
	Purpose  string         `json:"purpose"`
	Voter    *voterResponse `json:"voter,omitempty"`
}

// voterResponse is the public view of a voter; national id, date of birth and
// password hash never leave the service.
type voterResponse struct {
	VoterID            string    `json:"voter_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	EmailVerified      bool      `json:"email_verified"`
	PhoneVerified      bool      `json:"phone_verified"`
	IDVerified         bool      `json:"id_verified"`
	FaceVerified       bool      `json:"face_verified"`
	IsActive           bool      `json:"is_active"`
	RegistrationStatus string    `json:"registration_status"`
	MissingSteps       []string  `json:"missing_steps"`
	CreatedAt          time.Time `json:"created_at"`
}

type enrollResponse struct {
	VoterID            string   `json:"voter_id"`
	TemplateID         string   `json:"template_id"`
	Replaced           bool     `json:"replaced"`
	FaceVerified       bool     `json:"face_verified"`
	RegistrationStatus string   `json:"registration_status"`
	MissingSteps       []string `json:"missing_steps"`
}

func toVoterResponse(v *models.Voter) *voterResponse {
	return &voterResponse{
		VoterID:            v.VoterID.String(),
		FirstName:          v.FirstName,
		LastName:           v.LastName,
		Email:              v.Email,
		Phone:              v.Phone,
		EmailVerified:      v.EmailVerified,
		PhoneVerified:      v.PhoneVerified,
		IDVerified:         v.IDVerified,
		FaceVerified:       v.FaceVerified,
		IsActive:           v.IsActive,
		RegistrationStatus: string(v.Status),
		MissingSteps:       missingSteps(v),
		CreatedAt:          v.CreatedAt,
	}
}

func missingSteps(v *models.Voter) []string {
	out := make([]string, 0, 4)
	for _, s := range v.MissingSteps() {
		out = append(out, string(s))
	}
	return out
}
