package runner

import (
	"errors"
	"fmt"

	"github.com/mco-dev/mco/internal/types"
)

// CancelReason identifies why a runner was cancelled.
type CancelReason string

// Cancellation reasons, per the concurrency model's three cancellation
// sources.
const (
	CancelStall        CancelReason = "stall"
	CancelHardDeadline CancelReason = "hard_deadline"
	CancelExternal     CancelReason = "external"
)

// ErrorKind maps a CancelReason onto the ErrorKind carried in the
// resulting ProviderResult.
func (r CancelReason) ErrorKind() types.ErrorKind {
	switch r {
	case CancelStall:
		return types.ErrorCancelledStall
	case CancelHardDeadline:
		return types.ErrorCancelledHard
	case CancelExternal:
		return types.ErrorCancelledExternal
	default:
		return types.ErrorInternal
	}
}

// RunnerError wraps a runner-lifecycle failure with a classification
// kind, mirroring the teacher's IngestionError/IsPolicyError pattern:
// classify by errors.As rather than string matching.
type RunnerError struct {
	Kind types.ErrorKind
	Err  error
}

func (e *RunnerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunnerError) Unwrap() error { return e.Err }

// NewCancelError wraps reason as a RunnerError, giving callers a single
// error value to classify with errors.As instead of switching on
// CancelReason directly.
func NewCancelError(reason CancelReason) error {
	return &RunnerError{Kind: reason.ErrorKind(), Err: fmt.Errorf("cancelled: %s", reason)}
}

// IsSpawnError returns true if err is a spawn failure.
func IsSpawnError(err error) bool {
	var re *RunnerError
	return errors.As(err, &re) && re.Kind == types.ErrorSpawnFailed
}

// IsStallError returns true if err resulted from stall-window cancellation.
func IsStallError(err error) bool {
	var re *RunnerError
	return errors.As(err, &re) && re.Kind == types.ErrorCancelledStall
}

// IsHardDeadlineError returns true if err resulted from hard-deadline
// cancellation.
func IsHardDeadlineError(err error) bool {
	var re *RunnerError
	return errors.As(err, &re) && re.Kind == types.ErrorCancelledHard
}

// IsExternalCancelError returns true if err resulted from an external
// (caller-issued) cancellation.
func IsExternalCancelError(err error) bool {
	var re *RunnerError
	return errors.As(err, &re) && re.Kind == types.ErrorCancelledExternal
}
