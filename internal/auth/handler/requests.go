package handler

import (
	biomodels "votegate/internal/biometric/models"
	id "votegate/pkg/domain"
	"votegate/internal/platform/validation"
)

type LoginRequest struct {
	VoterID  string `json:"voter_id" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`

	voterID id.VoterID
}

func (r *LoginRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	vid, err := id.ParseVoterID(r.VoterID)
	if err != nil {
		return err
	}
	r.voterID = vid
	return nil
}

// VerifyFaceRequest carries a base64 encoded live capture.
type VerifyFaceRequest struct {
	Image  []byte `json:"image" validate:"required"`
	Source string `json:"source" validate:"max=64"`
	Device string `json:"device" validate:"max=128"`
}

func (r *VerifyFaceRequest) Validate() error {
	return validation.Struct(r)
}

func (r *VerifyFaceRequest) sample() biomodels.Sample {
	return biomodels.Sample{Image: r.Image, Source: r.Source, Device: r.Device}
}
