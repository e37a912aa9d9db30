package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: registrations,
	// verification state changes and ballots.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers auth failures, token revocation and admin overrides.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity such as code issuance.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted after a committed transition. It is transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Subject is the voter the event concerns (public voter id, or masked contact
	// before a voter exists).
	Subject    string `json:"subject"`
	Action     string `json:"action"`
	ElectionID string `json:"election_id,omitempty"`
	Decision   string `json:"decision,omitempty"`
	Reason     string `json:"reason,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	// ActorID is set when an admin acts on a voter's behalf.
	ActorID string `json:"actor_id,omitempty"`
}

type AuditEvent string

const (
	EventCodeIssued       AuditEvent = "otp_issued"
	EventCodeRedeemed     AuditEvent = "otp_redeemed"
	EventCodeRejected     AuditEvent = "otp_rejected"
	EventVoterRegistered  AuditEvent = "voter_registered"
	EventEmailVerified    AuditEvent = "email_verified"
	EventPhoneVerified    AuditEvent = "phone_verified"
	EventIDVerified       AuditEvent = "id_verified"
	EventFaceEnrolled     AuditEvent = "face_enrolled"
	EventVoterCompleted   AuditEvent = "voter_completed"
	EventVoterDeactivated AuditEvent = "voter_deactivated"

	EventLoginPassword  AuditEvent = "login_password_accepted"
	EventLoginFace      AuditEvent = "login_face_accepted"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventTokenRevoked   AuditEvent = "token_revoked"
	EventAdminOverride  AuditEvent = "admin_override"
	EventVoteCast       AuditEvent = "vote_cast"
	EventVoteRejected   AuditEvent = "vote_rejected"
	EventElectionChange AuditEvent = "election_changed"
	EventTallyReconcile AuditEvent = "tally_reconciled"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVoterRegistered:  CategoryCompliance,
	EventEmailVerified:    CategoryCompliance,
	EventPhoneVerified:    CategoryCompliance,
	EventIDVerified:       CategoryCompliance,
	EventFaceEnrolled:     CategoryCompliance,
	EventVoterCompleted:   CategoryCompliance,
	EventVoterDeactivated: CategoryCompliance,
	EventVoteCast:         CategoryCompliance,
	EventElectionChange:   CategoryCompliance,
	EventTallyReconcile:   CategoryCompliance,

	EventCodeRejected:  CategorySecurity,
	EventAuthFailed:    CategorySecurity,
	EventTokenRevoked:  CategorySecurity,
	EventAdminOverride: CategorySecurity,
	EventVoteRejected:  CategorySecurity,

	EventCodeIssued:    CategoryOperations,
	EventCodeRedeemed:  CategoryOperations,
	EventLoginPassword: CategoryOperations,
	EventLoginFace:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists events and lists them per subject.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// Sink receives a copy of every event (e.g. a Kafka topic).
type Sink interface {
	Append(ctx context.Context, event Event) error
}
