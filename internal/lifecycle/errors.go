package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPending flags a pay attempt against a request that is no longer
	// payable (already paid, cancelled, or expired).
	ErrNotPending = errors.New("payment request is not pending")
	// ErrAlreadyInFlight flags a second pay attempt while one is still being
	// processed for the same request.
	ErrAlreadyInFlight = errors.New("a payment for this request is already in flight")
)

// PartialLoadError reports that a refresh resolved some records but not all.
// The ids that failed are named so the caller can surface or retry them.
type PartialLoadError struct {
	FailedIDs []uint64
	cause     error
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("failed to load %d request(s) %v: %v", len(e.FailedIDs), e.FailedIDs, e.cause)
}

func (e *PartialLoadError) Unwrap() error {
	return e.cause
}
