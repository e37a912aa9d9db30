package models

import (
	"time"

	id "votegate/pkg/domain"
)

// Capture describes how a sample was taken.
type Capture struct {
	Source     string    `json:"source,omitempty" bson:"source,omitempty"`
	Device     string    `json:"device,omitempty" bson:"device,omitempty"`
	Quality    float64   `json:"quality" bson:"quality"`
	CapturedAt time.Time `json:"captured_at" bson:"captured_at"`
}

// Template is an enrolled biometric template. Vector is opaque to this service;
// only the FaceMatcher interprets it.
//
// Invariant: at most one active template per voter.
type Template struct {
	ID        string     `json:"id" bson:"template_id"`
	VoterID   id.VoterID `json:"voter_id" bson:"voter_id"`
	Vector    []float64  `json:"-" bson:"vector"`
	Capture   Capture    `json:"capture" bson:"capture"`
	IsActive  bool       `json:"is_active" bson:"is_active"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// Sample is a live capture submitted for enrollment or login.
type Sample struct {
	Image  []byte `json:"image"`
	Source string `json:"source,omitempty"`
	Device string `json:"device,omitempty"`
}

// Features is what the matcher extracts from a usable sample.
type Features struct {
	Vector  []float64
	Quality float64
}
