// Package domainerrors defines the error type returned across service boundaries.
//
// Services translate store sentinels and invariant failures into an *Error carrying a
// stable Code (the error kind) plus an optional Reason (the specific fault). Transport
// layers map Code to a status and render Reason and Details for machine consumers.
//
//	if err := s.voters.Create(ctx, v); err != nil {
//		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create voter")
//	}
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable machine-readable error kind.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvalidState       Code = "invalid_state"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTooManyRequests    Code = "too_many_requests"
	CodeUnavailable        Code = "service_unavailable"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
)

// Reason narrows a Code to the specific fault a client can act on.
type Reason string

const (
	ReasonDuplicateEmail         Reason = "DuplicateEmail"
	ReasonDuplicatePhone         Reason = "DuplicatePhone"
	ReasonDuplicateNationalID    Reason = "DuplicateNationalID"
	ReasonDuplicateVoterID       Reason = "DuplicateVoterID"
	ReasonDuplicateContact       Reason = "DuplicateContact"
	ReasonAlreadyVoted           Reason = "AlreadyVoted"
	ReasonElectionClosed         Reason = "ElectionClosed"
	ReasonElectionNotActive      Reason = "ElectionNotActive"
	ReasonCodeInvalid            Reason = "CodeInvalid"
	ReasonCodeExpired            Reason = "CodeExpired"
	ReasonCodeAlreadyUsed        Reason = "CodeAlreadyUsed"
	ReasonTokenExpired           Reason = "TokenExpired"
	ReasonTokenInvalid           Reason = "TokenInvalid"
	ReasonVerificationIncomplete Reason = "VerificationIncomplete"
	ReasonAccountInactive        Reason = "AccountInactive"
	ReasonSampleUnusable         Reason = "SampleUnusable"
	ReasonFaceMismatch           Reason = "FaceMismatch"
	ReasonMatcherUnavailable     Reason = "MatcherUnavailable"
	ReasonNotifierUnavailable    Reason = "NotifierUnavailable"
	ReasonGenerationExhausted    Reason = "GenerationExhausted"
	ReasonUnderage               Reason = "Underage"
	ReasonContactNotVerified     Reason = "ContactNotVerified"
	ReasonTooManyRequests        Reason = "TooManyRequests"
	ReasonVoterNotFound          Reason = "VoterNotFound"
	ReasonElectionNotFound       Reason = "ElectionNotFound"
	ReasonCandidateNotFound      Reason = "CandidateNotFound"
)

// Error is the domain error returned by services.
type Error struct {
	Code    Code
	Reason  Reason
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, and by reason when the target carries one.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// WithReason returns a copy of e carrying reason.
func (e *Error) WithReason(reason Reason) *Error {
	cp := *e
	cp.Reason = reason
	return &cp
}

// WithDetails returns a copy of e carrying details (e.g. the missing verification steps).
func (e *Error) WithDetails(details ...string) *Error {
	cp := *e
	cp.Details = append([]string(nil), details...)
	return &cp
}

// Is reports whether err is a domain error with the given code.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasReason reports whether err is a domain error carrying reason.
func HasReason(err error, reason Reason) bool {
	return ReasonOf(err) == reason
}

// CodeOf returns the code of the outermost *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ReasonOf returns the reason of the outermost *Error in err's chain.
func ReasonOf(err error) Reason {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// DetailsOf returns the details of the outermost *Error in err's chain.
func DetailsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeInvalidState:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
