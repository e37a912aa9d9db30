// Package matcher holds the FaceMatcher capability and its adapters.
//
// The service never interprets template vectors itself: Extract turns a live sample
// into features for enrollment and Score compares a sample against an enrolled
// vector, returning a similarity in [0, 1].
package matcher

import (
	"context"
	"errors"

	"votegate/internal/biometric/models"
	dErrors "votegate/pkg/domain-errors"
)

var (
	// ErrSampleUnusable means no single face of sufficient quality was found.
	ErrSampleUnusable = errors.New("biometric sample unusable")
	// ErrUnavailable means the matcher could not be reached in time.
	ErrUnavailable = errors.New("face matcher unavailable")
)

// FaceMatcher extracts and compares face features.
type FaceMatcher interface {
	Extract(ctx context.Context, sample models.Sample) (*models.Features, error)
	Score(ctx context.Context, enrolled []float64, sample models.Sample) (float64, error)
}

// ToDomainError maps FaceMatcher failures. Timeouts are retryable and never
// reported as a verification failure.
func ToDomainError(err error) error {
	switch {
	case errors.Is(err, ErrSampleUnusable):
		return dErrors.New(dErrors.CodeValidation, "no usable face found in the sample").
			WithReason(dErrors.ReasonSampleUnusable)
	case errors.Is(err, ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "face matcher unavailable, retry later").
			WithReason(dErrors.ReasonMatcherUnavailable)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "face matcher failed")
	}
}
