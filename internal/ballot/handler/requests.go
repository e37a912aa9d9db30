package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"votegate/internal/ballot/models"
	"votegate/internal/ballot/service"
	"votegate/internal/platform/validation"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

// CastVoteRequest names the election and the chosen candidate. The voter comes
// from the token, never from the body.
type CastVoteRequest struct {
	ElectionID  string `json:"election_id" validate:"required"`
	CandidateID string `json:"candidate_id" validate:"required"`

	electionID  uuid.UUID
	candidateID uuid.UUID
}

func (r *CastVoteRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	eid, err := id.ParseElectionID(strings.TrimSpace(r.ElectionID))
	if err != nil {
		return err
	}
	cid, err := id.ParseCandidateID(strings.TrimSpace(r.CandidateID))
	if err != nil {
		return err
	}
	r.electionID = uuid.UUID(eid)
	r.candidateID = uuid.UUID(cid)
	return nil
}

// CreateElectionRequest uses RFC 3339 timestamps for the voting window.
type CreateElectionRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	StartAt     string `json:"start_at" validate:"required"`
	EndAt       string `json:"end_at" validate:"required"`

	startAt time.Time
	endAt   time.Time
}

func (r *CreateElectionRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if err := validation.Struct(r); err != nil {
		return err
	}
	var err error
	if r.startAt, err = time.Parse(time.RFC3339, r.StartAt); err != nil {
		return dErrors.New(dErrors.CodeValidation, "start_at must be an RFC 3339 timestamp").WithDetails("start_at")
	}
	if r.endAt, err = time.Parse(time.RFC3339, r.EndAt); err != nil {
		return dErrors.New(dErrors.CodeValidation, "end_at must be an RFC 3339 timestamp").WithDetails("end_at")
	}
	return nil
}

func (r *CreateElectionRequest) toInput() service.ElectionInput {
	return service.ElectionInput{
		Title:       r.Title,
		Description: r.Description,
		StartAt:     r.startAt,
		EndAt:       r.endAt,
	}
}

type AddCandidateRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Party string `json:"party" validate:"max=200"`
}

func (r *AddCandidateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Party = strings.TrimSpace(r.Party)
	return validation.Struct(r)
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft scheduled active completed cancelled"`

	status models.ElectionStatus
}

func (r *SetStatusRequest) Validate() error {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if err := validation.Struct(r); err != nil {
		return err
	}
	st, ok := models.ParseElectionStatus(r.Status)
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "unknown status %q", r.Status).WithDetails("status")
	}
	r.status = st
	return nil
}
