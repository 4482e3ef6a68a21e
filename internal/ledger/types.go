package ledger

import (
	"encoding/json"
	"fmt"
)

// Status tracks the lifecycle of an on-chain payment request. Ordinals match
// the contract enum and transitions are one-directional: a request never
// returns to Pending.
type Status uint8

const (
	StatusPending Status = iota
	StatusPaid
	StatusCancelled
	StatusExpired
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusPaid:      "paid",
	StatusCancelled: "cancelled",
	StatusExpired:   "expired",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// IsValid reports whether the value is a known Status.
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// MarshalJSON serializes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// StatusFromOrdinal converts a contract enum ordinal into a Status.
func StatusFromOrdinal(value uint8) (Status, error) {
	status := Status(value)
	if !status.IsValid() {
		return 0, fmt.Errorf("invalid request status ordinal %d", value)
	}
	return status, nil
}

// PaymentRequest mirrors one ledger record. The contract owns every field;
// this client only ever writes at creation time.
type PaymentRequest struct {
	ID               uint64 `json:"id"`
	Requester        string `json:"requester"`
	Payer            string `json:"payer"`
	Amount           int64  `json:"amount"`
	Description      string `json:"description"`
	CreatedAt        int64  `json:"created_at"`
	DueDate          int64  `json:"due_date,omitempty"`
	Status           Status `json:"status"`
	PaymentReference string `json:"payment_reference,omitempty"`
	Exists           bool   `json:"-"`
}
