package realtime

import (
	"strings"
	"time"
)

// Event types broadcast to rooms.
const (
	EventRegistrationCreated  = "registration.created"
	EventVerificationProgress = "verification.progress"
	EventVoteCast             = "vote.cast"
	EventElectionUpdated      = "election.updated"
	EventVoterUpdated         = "voter.updated"
)

// Well-known rooms.
const (
	RoomPublic = "public"
	RoomVoters = "voters"
	RoomAdmins = "admins"
)

// Roles allowed to connect.
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

const electionRoomPrefix = "election:"

// VoterRoom is the private room of one voter.
func VoterRoom(voterID string) string { return "voter:" + voterID }

// AdminRoom is the private room of one admin connection.
func AdminRoom(connID string) string { return "admin:" + connID }

// ElectionRoom carries tally updates for one election.
func ElectionRoom(electionID string) string { return electionRoomPrefix + electionID }

// IsElectionRoom reports whether a client may join room explicitly.
func IsElectionRoom(room string) bool {
	return strings.HasPrefix(room, electionRoomPrefix) && len(room) > len(electionRoomPrefix)
}

// Event is one message delivered to every connection in Room.
type Event struct {
	Type string    `json:"type"`
	Room string    `json:"room"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}
