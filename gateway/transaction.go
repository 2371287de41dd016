package gateway

import (
	"time"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	// StatusPending is the initial state: the payer has been handed to the
	// provider and no notification has arrived yet.
	StatusPending TransactionStatus = "pend"
	// StatusWaiting means the provider reported a partial or still-pending
	// payment. Further notifications are expected.
	StatusWaiting TransactionStatus = "wait"
	// StatusApproved is terminal: the payment completed.
	StatusApproved TransactionStatus = "okay"
	// StatusRefused is terminal: the payment failed, expired, errored or
	// carried an invalid signature, and the gateway hold was voided.
	StatusRefused TransactionStatus = "fail"
)

// Payer identifies who is paying. Name falls back to "Anonymous" upstream
// when the member record has none.
type Payer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Transaction is the host-owned payment record. The gateway core reads the
// identifying fields and moves Status; it never creates or deletes one.
type Transaction struct {
	// ID is the opaque stable identifier, sent to the provider as order_id.
	ID          string            `json:"id"`
	Amount      Money             `json:"amount"`
	Status      TransactionStatus `json:"status"`
	AuthExpiry  *time.Time        `json:"authExpiry,omitempty"`
	Payer       Payer             `json:"payer"`
	Description string            `json:"description,omitempty"`

	// Version is the optimistic concurrency token. Save only succeeds when
	// the stored row still carries this version; the provider retries
	// notification delivery, and the status guard alone leaves a race
	// window between load and save.
	Version int64 `json:"version"`

	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Finalized reports whether the transaction reached a terminal state.
// Terminal transactions never move again, whatever a later notification says.
func (t *Transaction) Finalized() bool {
	return t.Status == StatusApproved || t.Status == StatusRefused
}

// Approve clears any pending authorization hold and marks the payment
// completed.
func (t *Transaction) Approve() {
	t.AuthExpiry = nil
	t.Status = StatusApproved
}

// Refuse marks the payment failed.
func (t *Transaction) Refuse() {
	t.Status = StatusRefused
}
