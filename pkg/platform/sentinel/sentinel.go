package sentinel

import (
	"errors"
	"fmt"
)

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// and services translate them into domain errors at the component boundary.
//
// - ErrNotFound: record does not exist
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrExpired: a time-boxed credential is past its expiry
// - ErrAlreadyUsed: a single-use credential was already consumed
// - ErrInvalidState: record is in the wrong state for the requested mutation
// - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

// FieldConflict reports which unique field rejected a write. It matches ErrConflict.
type FieldConflict struct {
	Field string
}

func (e *FieldConflict) Error() string {
	return fmt.Sprintf("%s already exists: %v", e.Field, ErrConflict)
}

func (e *FieldConflict) Is(target error) bool { return target == ErrConflict }

// NewFieldConflict returns a conflict error for field.
func NewFieldConflict(field string) error {
	return &FieldConflict{Field: field}
}

// ConflictField extracts the colliding field name, or "" when err is not a FieldConflict.
func ConflictField(err error) string {
	var fc *FieldConflict
	if errors.As(err, &fc) {
		return fc.Field
	}
	return ""
}
