package handler

import (
	"strings"
	"time"

	biomodels "votegate/internal/biometric/models"
	otpmodels "votegate/internal/otp/models"
	"votegate/internal/platform/validation"
	"votegate/internal/verification/service"
	id "votegate/pkg/domain"
)

// ContactCodeRequest asks for a code to be sent to an email address or phone.
type ContactCodeRequest struct {
	Contact string `json:"contact" validate:"required,max=254"`
	Purpose string `json:"purpose" validate:"omitempty,oneof=registration email_verification phone_verification"`
}

func (r *ContactCodeRequest) Validate() error {
	r.Contact = strings.TrimSpace(r.Contact)
	if r.Purpose == "" {
		r.Purpose = string(otpmodels.PurposeRegistration)
	}
	return validation.Struct(r)
}

// RedeemCodeRequest presents a received code.
type RedeemCodeRequest struct {
	Contact string `json:"contact" validate:"required,max=254"`
	Purpose string `json:"purpose" validate:"omitempty,oneof=registration email_verification phone_verification"`
	Code    string `json:"code" validate:"required,numeric,min=4,max=10"`
}

func (r *RedeemCodeRequest) Validate() error {
	r.Contact = strings.TrimSpace(r.Contact)
	r.Code = strings.TrimSpace(r.Code)
	if r.Purpose == "" {
		r.Purpose = string(otpmodels.PurposeRegistration)
	}
	return validation.Struct(r)
}

// RegisterRequest is the full registration payload.
type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Phone         string `json:"phone" validate:"required,phone"`
	DateOfBirth   string `json:"date_of_birth" validate:"required,date"`
	NationalID    string `json:"national_id_number" validate:"required,max=64"`
	Address       string `json:"address" validate:"max=500"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
}

func (r *RegisterRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = stripPhone(r.Phone)
	r.NationalID = strings.TrimSpace(r.NationalID)
	return validation.Struct(r)
}

func (r *RegisterRequest) toInput() service.RegistrationInput {
	dob, _ := time.Parse(validation.DateLayout, r.DateOfBirth)
	return service.RegistrationInput{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Phone:         r.Phone,
		DateOfBirth:   dob,
		NationalID:    r.NationalID,
		Address:       r.Address,
		Password:      r.Password,
		EmailVerified: r.EmailVerified,
		PhoneVerified: r.PhoneVerified,
	}
}

// VerifyDocumentRequest presents an identity document for comparison.
type VerifyDocumentRequest struct {
	VoterID     string `json:"voter_id" validate:"required"`
	NationalID  string `json:"national_id_number" validate:"required,max=64"`
	DateOfBirth string `json:"date_of_birth" validate:"required,date"`

	voterID id.VoterID
	dob     time.Time
}

func (r *VerifyDocumentRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	vid, err := id.ParseVoterID(r.VoterID)
	if err != nil {
		return err
	}
	r.voterID = vid
	r.dob, _ = time.Parse(validation.DateLayout, r.DateOfBirth)
	return nil
}

// EnrollFaceRequest carries a base64 encoded face image.
type EnrollFaceRequest struct {
	Image  []byte `json:"image" validate:"required"`
	Source string `json:"source" validate:"max=64"`
	Device string `json:"device" validate:"max=128"`
}

func (r *EnrollFaceRequest) Validate() error {
	return validation.Struct(r)
}

func (r *EnrollFaceRequest) sample() biomodels.Sample {
	return biomodels.Sample{Image: r.Image, Source: r.Source, Device: r.Device}
}

func stripPhone(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}
