package processor

import "fmt"

// Status is a payment attempt state as reported by the external processor.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var validStatuses = []Status{StatusPending, StatusCompleted, StatusFailed}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Status.
func (s Status) IsValid() bool {
	for _, candidate := range validStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can occur.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus converts raw processor output into a Status.
func ParseStatus(value string) (Status, error) {
	for _, candidate := range validStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// Attempt is one in-flight payment. Attempts are ephemeral: they live for a
// single submit/poll cycle and are never persisted. A reload re-derives state
// from the ledger record instead.
type Attempt struct {
	PaymentID       string `json:"payment_id"`
	Status          Status `json:"status"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}
