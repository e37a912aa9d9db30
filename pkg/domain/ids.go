// Package domain holds typed identifiers shared across modules.
//
// UUID-backed IDs are distinct types so an ElectionID can never be passed where a
// CandidateID is expected. Parse functions are the trust boundary: they reject empty,
// malformed and nil values with CodeInvalidInput.
package domain

import (
	"database/sql/driver"
	"strings"

	"github.com/google/uuid"

	dErrors "votegate/pkg/domain-errors"
)

type (
	ElectionID  uuid.UUID
	CandidateID uuid.UUID
	VoteID      uuid.UUID
)

func (id ElectionID) String() string  { return uuid.UUID(id).String() }
func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id VoteID) String() string      { return uuid.UUID(id).String() }

func (id ElectionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text and SQL encodings delegate to uuid.UUID, which the defined types do not inherit.

func (id ElectionID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id CandidateID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id VoteID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }

func (id *ElectionID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CandidateID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *VoteID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id ElectionID) Value() (driver.Value, error)  { return uuid.UUID(id).String(), nil }
func (id CandidateID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }
func (id VoteID) Value() (driver.Value, error)      { return uuid.UUID(id).String(), nil }

func (id *ElectionID) Scan(src any) error  { return (*uuid.UUID)(id).Scan(src) }
func (id *CandidateID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }
func (id *VoteID) Scan(src any) error      { return (*uuid.UUID)(id).Scan(src) }

func ParseElectionID(s string) (ElectionID, error) {
	u, err := parseUUID(s, "election_id")
	return ElectionID(u), err
}

func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s, "candidate_id")
	return CandidateID(u), err
}

func ParseVoteID(s string) (VoteID, error) {
	u, err := parseUUID(s, "vote_id")
	return VoteID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid id", field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be nil", field)
	}
	return u, nil
}

// VoterIDLength is the fixed length of a public voter identifier.
const VoterIDLength = 8

// VoterID is the public 8-character voter identifier: upper-case letters and digits,
// with at least one of each.
type VoterID string

func (id VoterID) String() string { return string(id) }

// ParseVoterID normalizes s to upper case and checks the identifier shape.
func ParseVoterID(s string) (VoterID, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "voter_id is required")
	}
	if !ValidVoterID(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "voter_id must be 8 letters and digits with at least one of each")
	}
	return VoterID(s), nil
}

// ValidVoterID reports whether s has the public identifier shape.
func ValidVoterID(s string) bool {
	if len(s) != VoterIDLength {
		return false
	}
	var letter, digit bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			letter = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			return false
		}
	}
	return letter && digit
}
