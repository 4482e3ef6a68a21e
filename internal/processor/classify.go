package processor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPaymentID flags a processor response that claims success without
// returning an identifier. Treated as a hard failure, never as success.
var ErrNoPaymentID = errors.New("no payment id returned by processor")

// Reason buckets an initiation failure for the UI.
type Reason string

const (
	ReasonCancelled           Reason = "cancelled"
	ReasonInsufficientBalance Reason = "insufficient_balance"
	ReasonNetworkMismatch     Reason = "network_mismatch"
	ReasonOther               Reason = "other"
)

// InitiationError is a classified payment initiation failure with a
// user-facing message.
type InitiationError struct {
	Reason  Reason
	Message string
	cause   error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("payment initiation failed (%s): %s", e.Reason, e.Message)
}

func (e *InitiationError) Unwrap() error {
	return e.cause
}

// Classify maps raw processor failure text onto a reason and message.
// Processors report unstructured errors, so this falls back to substring
// heuristics; unmatched text passes through verbatim.
func Classify(err error) *InitiationError {
	if err == nil {
		return nil
	}
	message := err.Error()
	lowered := strings.ToLower(message)

	switch {
	case strings.Contains(lowered, "user rejected"), strings.Contains(lowered, "cancelled"):
		return &InitiationError{
			Reason:  ReasonCancelled,
			Message: "Payment was cancelled by user",
			cause:   err,
		}
	case strings.Contains(lowered, "insufficient"):
		return &InitiationError{
			Reason:  ReasonInsufficientBalance,
			Message: "Insufficient USDC balance to complete this payment",
			cause:   err,
		}
	case strings.Contains(lowered, "network"):
		return &InitiationError{
			Reason:  ReasonNetworkMismatch,
			Message: "Please switch your wallet to the expected network",
			cause:   err,
		}
	default:
		return &InitiationError{
			Reason:  ReasonOther,
			Message: message,
			cause:   err,
		}
	}
}
