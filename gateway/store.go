package gateway

import "context"

// TransactionStore is the persistence collaborator supplied by the host.
//
// Save must be conditional on Transaction.Version matching the stored row
// and must bump the version on success, returning ErrVersionConflict when a
// concurrent notification won the race. The notification handler relies on
// this for exclusivity; it does not hold locks of its own.
type TransactionStore interface {
	Load(ctx context.Context, id string) (*Transaction, error)
	Save(ctx context.Context, txn *Transaction) error
}

// Notifier dispatches a customer-facing message about a transaction's new
// state (email or platform message, the host decides).
type Notifier interface {
	SendNotification(ctx context.Context, txn *Transaction) error
}
