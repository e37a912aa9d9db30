package models

import (
	"time"

	"github.com/google/uuid"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

// RegistrationStatus is pending until every verification step is done.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "pending"
	StatusCompleted RegistrationStatus = "completed"
)

// Step names one of the four independent verification flags.
type Step string

const (
	StepEmail Step = "email_verified"
	StepPhone Step = "phone_verified"
	StepID    Step = "id_verified"
	StepFace  Step = "face_verified"
)

// AllSteps lists the verification steps in the order they are normally completed.
var AllSteps = []Step{StepEmail, StepPhone, StepID, StepFace}

// Voter is the identity record for a registered voter.
//
// Invariants:
//   - VoterID, Email, Phone and NationalID are each unique across all voters (enforced by the store)
//   - each flag is only set by its own verification step
//   - Status is completed iff all four flags are true
//   - voters are never deleted; IsActive=false is the soft-delete
type Voter struct {
	ID             uuid.UUID          `json:"-"`
	VoterID        id.VoterID         `json:"voter_id"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	NationalID     string             `json:"-"`
	DateOfBirth    time.Time          `json:"-"`
	Address        string             `json:"address,omitempty"`
	PasswordHash   string             `json:"-"` // Never serialize
	EmailVerified  bool               `json:"email_verified"`
	PhoneVerified  bool               `json:"phone_verified"`
	IDVerified     bool               `json:"id_verified"`
	FaceVerified   bool               `json:"face_verified"`
	IsActive       bool               `json:"is_active"`
	Status         RegistrationStatus `json:"registration_status"`
	BiometricRef   string             `json:"biometric_ref,omitempty"`
	LastFaceAuthAt *time.Time         `json:"last_face_auth_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// IsVerified reports whether a single step is complete.
func (v *Voter) IsVerified(step Step) bool {
	switch step {
	case StepEmail:
		return v.EmailVerified
	case StepPhone:
		return v.PhoneVerified
	case StepID:
		return v.IDVerified
	case StepFace:
		return v.FaceVerified
	}
	return false
}

// MissingSteps returns the verification steps not yet completed, in AllSteps order.
func (v *Voter) MissingSteps() []Step {
	var missing []Step
	for _, step := range AllSteps {
		if !v.IsVerified(step) {
			missing = append(missing, step)
		}
	}
	return missing
}

// FullyVerified is true when all four flags are set and the voter is active.
func (v *Voter) FullyVerified() bool {
	return v.IsActive && len(v.MissingSteps()) == 0
}

// MarkVerified sets the flag for step. It reports whether anything changed;
// repeating a completed step is a no-op.
func (v *Voter) MarkVerified(step Step, now time.Time) bool {
	if v.IsVerified(step) {
		return false
	}
	switch step {
	case StepEmail:
		v.EmailVerified = true
	case StepPhone:
		v.PhoneVerified = true
	case StepID:
		v.IDVerified = true
	case StepFace:
		v.FaceVerified = true
	default:
		return false
	}
	v.refreshStatus()
	v.UpdatedAt = now
	return true
}

func (v *Voter) refreshStatus() {
	if len(v.MissingSteps()) == 0 {
		v.Status = StatusCompleted
		return
	}
	v.Status = StatusPending
}

// AttachBiometric points the voter at its active template and completes face verification.
func (v *Voter) AttachBiometric(ref string, now time.Time) {
	v.BiometricRef = ref
	v.FaceVerified = true
	v.refreshStatus()
	v.UpdatedAt = now
}

// RecordFaceLogin stamps a successful biometric login.
func (v *Voter) RecordFaceLogin(now time.Time) {
	t := now
	v.LastFaceAuthAt = &t
	v.UpdatedAt = now
}

// CanDeactivate checks the voter is still active.
func (v *Voter) CanDeactivate() error {
	if !v.IsActive {
		return dErrors.New(dErrors.CodeInvalidState, "voter is already inactive").
			WithReason(dErrors.ReasonAccountInactive)
	}
	return nil
}

// ApplyDeactivation soft-deletes the voter. Must only be called after CanDeactivate returns nil.
func (v *Voter) ApplyDeactivation(now time.Time) {
	v.IsActive = false
	v.UpdatedAt = now
}

// AgeOn returns the age in whole years on the given day: the calendar year difference,
// minus one when the birthday has not yet occurred that year.
func AgeOn(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}
